package ai

import (
	"fmt"

	"github.com/spf13/viper"
)

// ResolveProvider returns the configured default AI provider.
func ResolveProvider() string {
	defaultProvider := viper.GetString("ai.default_provider")
	if defaultProvider != "" {
		return defaultProvider
	}

	// Fallback to first available provider
	providers := viper.GetStringMap("ai.providers")
	for providerName := range providers {
		return providerName
	}

	// Ultimate fallback
	return "openai"
}

// ResolveAPIKey returns the API key configured for the provider. The value in
// config may also name an environment variable holding the real key.
func ResolveAPIKey(provider string) string {
	key := viper.GetString(fmt.Sprintf("ai.providers.%s.api_key", provider))
	if key != "" {
		return resolveEnvVarKeyPointer(key)
	}

	envName := viper.GetString(fmt.Sprintf("ai.providers.%s.api_key_env", provider))
	if envName != "" {
		return resolveEnvVarKeyPointer(envName)
	}

	// Conventional environment variables as last resort
	switch provider {
	case "anthropic":
		return resolveEnvVarKeyPointer("ANTHROPIC_API_KEY")
	case "gemini-api":
		return resolveEnvVarKeyPointer("GEMINI_API_KEY")
	default:
		return resolveEnvVarKeyPointer("OPENAI_API_KEY")
	}
}
