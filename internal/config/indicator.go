package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// IndicatorConfig holds the runtime-tunable blink pattern settings.
// It is reloaded by the config watcher while the daemon runs.
type IndicatorConfig struct {
	AdvToggleMs int `toml:"adv_toggle_ms"`
	LayerStepMs int `toml:"layer_step_ms"`
}

// DefaultIndicatorConfig returns the stock pattern timings.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		AdvToggleMs: 100,
		LayerStepMs: 400,
	}
}

// AdvToggle returns the advertising toggle period as a duration.
func (c IndicatorConfig) AdvToggle() time.Duration {
	return time.Duration(c.AdvToggleMs) * time.Millisecond
}

// LayerStep returns the layer blink half-cycle as a duration.
func (c IndicatorConfig) LayerStep() time.Duration {
	return time.Duration(c.LayerStepMs) * time.Millisecond
}

// LoadIndicatorConfig reads the [indicator] table from a TOML config file.
// Missing file or table yields the defaults; unset fields keep their defaults.
func LoadIndicatorConfig(configPath string) (IndicatorConfig, error) {
	cfg := DefaultIndicatorConfig()

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig struct {
		Indicator IndicatorConfig `toml:"indicator"`
	}
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return cfg, fmt.Errorf("parsing TOML config: %w", err)
	}

	if rawConfig.Indicator.AdvToggleMs > 0 {
		cfg.AdvToggleMs = rawConfig.Indicator.AdvToggleMs
	}
	if rawConfig.Indicator.LayerStepMs > 0 {
		cfg.LayerStepMs = rawConfig.Indicator.LayerStepMs
	}

	return cfg, nil
}
