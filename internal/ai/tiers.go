package ai

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Tier is a cost/capability level of the model collaborator. The synthesizer
// picks one per query from its complexity score.
type Tier string

const (
	// TierFast is the cheap model used for simple queries.
	TierFast Tier = "fast"
	// TierCapable is the higher-capability model used for complex queries.
	TierCapable Tier = "capable"
)

// Default models per provider and tier. Overridable via config at
// ai.providers.<provider>.models.<tier>.
var defaultModels = map[string]map[Tier]string{
	"openai": {
		TierFast:    "gpt-4o-mini",
		TierCapable: "gpt-4o",
	},
	"anthropic": {
		TierFast:    "claude-3-5-haiku-latest",
		TierCapable: "claude-sonnet-4-5",
	},
	"gemini": {
		TierFast:    "gemini-2.5-flash",
		TierCapable: "gemini-2.5-pro",
	},
	"gemini-api": {
		TierFast:    "gemini-2.5-flash",
		TierCapable: "gemini-2.5-pro",
	},
}

// TierConfig is a YAML-loadable tier table for operators who want to pin
// models without touching the main config file.
type TierConfig struct {
	Providers map[string]map[string]string `yaml:"providers"`
}

// ParseTierConfig reads a YAML tier table.
func ParseTierConfig(data []byte) (*TierConfig, error) {
	var cfg TierConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tier config: %w", err)
	}
	return &cfg, nil
}

// Models pinned by a tier file. Written once at startup, read per call.
var pinnedModels = map[string]map[Tier]string{}

// LoadTierFile reads a YAML tier table from disk and pins its models for
// the rest of the process. Pins take precedence over the main config.
func LoadTierFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tier config: %w", err)
	}
	cfg, err := ParseTierConfig(data)
	if err != nil {
		return err
	}
	ApplyTierConfig(cfg)
	return nil
}

// ApplyTierConfig pins the non-empty models of a parsed tier table.
func ApplyTierConfig(cfg *TierConfig) {
	for provider, tiers := range cfg.Providers {
		models := pinnedModels[provider]
		if models == nil {
			models = make(map[Tier]string)
			pinnedModels[provider] = models
		}
		for tier, model := range tiers {
			if model != "" {
				models[Tier(tier)] = model
			}
		}
	}
}

// resolveModel picks the model for a provider/tier pair: tier-file pins
// first, then flagless viper config, then the built-in defaults.
func resolveModel(provider string, tier Tier) string {
	if models, ok := pinnedModels[provider]; ok {
		if m, ok := models[tier]; ok {
			return m
		}
	}
	if m := viper.GetString(fmt.Sprintf("ai.providers.%s.models.%s", provider, tier)); m != "" {
		return m
	}
	if models, ok := defaultModels[provider]; ok {
		if m, ok := models[tier]; ok {
			return m
		}
	}
	return defaultModels["openai"][TierFast]
}
