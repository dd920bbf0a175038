package providers

// AIProviderConfig holds the generation backend settings. Sampling defaults
// lean deterministic so repeated conversions of the same repository stay
// comparable.
type AIProviderConfig struct {
	Provider        string   `mapstructure:"provider"`
	BaseURL         string   `mapstructure:"base_url"`
	Model           string   `mapstructure:"model"`
	ApiKey          string   `mapstructure:"api_key"`
	Temperature     *float32 `mapstructure:"temperature"`
	TopP            *float32 `mapstructure:"top_p"`
	MaxOutputTokens int      `mapstructure:"max_output_tokens"`
}
