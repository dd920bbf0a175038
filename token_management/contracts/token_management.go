package contracts

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	CalculateCost(modelName string, inputToken int, outputToken int) float64
	DisplayTokens(providerName string, model string)
	GetCurrentTokenUsage() (total int, input int, output int)
	ClearToken()
}
