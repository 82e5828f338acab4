package illuminate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ardenvale/illuminator-go/internal/config"
)

func TestCallConfigMergeSetFieldsWin(t *testing.T) {
	base := CallConfig{Model: "base-model", Temperature: ptr(0.7), MaxTokens: 2048}
	merged := base.Merge(CallConfig{Model: "other-model", System: "be brief"})

	assert.Equal(t, "other-model", merged.Model)
	assert.Equal(t, "be brief", merged.System)
	assert.Equal(t, 2048, merged.MaxTokens)
	assert.Equal(t, 0.7, *merged.Temperature)
}

func TestCallConfigMergeZeroTemperatureIsSet(t *testing.T) {
	base := CallConfig{Temperature: ptr(0.7)}
	merged := base.Merge(CallConfig{Temperature: ptr(0.0)})
	assert.Equal(t, 0.0, *merged.Temperature)
}

func TestResolveLaterOverridesWin(t *testing.T) {
	base := CallConfig{Model: "base", System: "base system", MaxTokens: 100}
	out := Resolve(base,
		CallConfig{System: "kind system"},
		CallConfig{System: "call system", MaxTokens: 50},
	)

	assert.Equal(t, "base", out.Model)
	assert.Equal(t, "call system", out.System)
	assert.Equal(t, 50, out.MaxTokens)
}

func TestDefaultsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Model = "gemini-2.0-flash"
	cfg.LLM.Temperature = 0.4
	cfg.LLM.MaxTokens = 1024

	defaults := DefaultsFromConfig(cfg)
	assert.Equal(t, "gemini-2.0-flash", defaults.Model)
	assert.Equal(t, 0.4, *defaults.Temperature)
	assert.Equal(t, 1024, defaults.MaxTokens)
	assert.Empty(t, defaults.System)
}
