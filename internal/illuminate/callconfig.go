package illuminate

import "github.com/ardenvale/illuminator-go/internal/config"

// CallConfig carries the tunable parameters of one model call. Zero values
// mean "not set" so configs can be layered; Temperature is a pointer because
// 0 is a meaningful setting.
type CallConfig struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	System      string
}

// Merge returns c with any set fields of override applied on top.
func (c CallConfig) Merge(override CallConfig) CallConfig {
	if override.Model != "" {
		c.Model = override.Model
	}
	if override.Temperature != nil {
		c.Temperature = override.Temperature
	}
	if override.MaxTokens != 0 {
		c.MaxTokens = override.MaxTokens
	}
	if override.System != "" {
		c.System = override.System
	}
	return c
}

// Resolve layers overrides over the base config, later overrides winning.
// Operation kinds layer their overrides over the global defaults, and a
// single call can layer one more on top of that.
func Resolve(base CallConfig, overrides ...CallConfig) CallConfig {
	out := base
	for _, o := range overrides {
		out = out.Merge(o)
	}
	return out
}

// DefaultsFromConfig builds the global default call configuration.
func DefaultsFromConfig(cfg *config.Config) CallConfig {
	temp := cfg.LLM.Temperature
	return CallConfig{
		Model:       cfg.LLM.Model,
		Temperature: &temp,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
}
