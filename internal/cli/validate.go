package cli

import "strings"

var validAnthropicModels = map[string]bool{
	"claude-opus-4-5":   true,
	"claude-opus-4-1":   true,
	"claude-sonnet-4-5": true,
	"claude-haiku-4-5":  true,
}

func isValidAnthropicModel(model string) bool {
	return validAnthropicModels[strings.TrimSpace(strings.ToLower(model))]
}
