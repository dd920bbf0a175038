package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/morler/oxidize/constants/lipgloss"
)

// ConfirmPrompt asks the user to confirm an action, defaulting to no.
func ConfirmPrompt(label string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.BlueSky.Render(fmt.Sprintf("%s [y/N]: ", label)))

	response, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("error reading input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
