package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testOptions mirrors the flat Options shape used by main.
type testOptions struct {
	Config string

	Port       string `toml:"server.port" env:"SERVER_PORT"`
	BridgePath string `toml:"bridge.socket_path" env:"BRIDGE_SOCKET_PATH"`
	LedName    string `toml:"indicator.led" env:"INDICATOR_LED"`
	AdvToggle  int    `toml:"indicator.adv_toggle_ms" env:"INDICATOR_ADV_TOGGLE_MS"`
	Debug      bool   `toml:"logging.debug" env:"LOGGING_DEBUG"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_TOMLValues(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"

[indicator]
led = "usr_led"
adv_toggle_ms = 150

[logging]
debug = true
`)

	opts := &testOptions{Config: path, Port: ":8090"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", opts.Port)
	}
	if opts.LedName != "usr_led" {
		t.Errorf("LedName = %q, want usr_led", opts.LedName)
	}
	if opts.AdvToggle != 150 {
		t.Errorf("AdvToggle = %d, want 150", opts.AdvToggle)
	}
	if !opts.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadConfig_EnvOverridesTOML(t *testing.T) {
	path := writeConfig(t, `
[bridge]
socket_path = "/run/from-toml.sock"
`)

	t.Setenv("DONGLED_BRIDGE_SOCKET_PATH", "/run/from-env.sock")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if opts.BridgePath != "/run/from-env.sock" {
		t.Errorf("BridgePath = %q, want env value", opts.BridgePath)
	}
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	opts := &testOptions{Config: "/nonexistent/config.toml", Port: ":8090"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if opts.Port != ":8090" {
		t.Errorf("Port = %q, want default :8090", opts.Port)
	}
}

func TestLoadConfig_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `this is { not toml`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("LoadConfig() should fail for malformed TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Port", "port"},
		{"LedName", "led-name"},
		{"BridgeSocketPath", "bridge-socket-path"},
	}

	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
led = "warn"
bridge = "error"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Modules["led"] != "warn" || cfg.Modules["bridge"] != "error" {
		t.Errorf("Modules = %v, want led=warn bridge=error", cfg.Modules)
	}

	// Missing file falls back to defaults.
	cfg = LoadLoggingConfig("/nonexistent/config.toml")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("Defaults = %q/%q, want info/text", cfg.Level, cfg.Format)
	}
}

func TestLoadIndicatorConfig(t *testing.T) {
	path := writeConfig(t, `
[indicator]
adv_toggle_ms = 80
layer_step_ms = 500
`)

	cfg, err := LoadIndicatorConfig(path)
	if err != nil {
		t.Fatalf("LoadIndicatorConfig() returned error: %v", err)
	}

	if cfg.AdvToggle() != 80*time.Millisecond {
		t.Errorf("AdvToggle() = %v, want 80ms", cfg.AdvToggle())
	}
	if cfg.LayerStep() != 500*time.Millisecond {
		t.Errorf("LayerStep() = %v, want 500ms", cfg.LayerStep())
	}
}

func TestLoadIndicatorConfig_Defaults(t *testing.T) {
	cfg, err := LoadIndicatorConfig("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadIndicatorConfig() returned error: %v", err)
	}

	want := DefaultIndicatorConfig()
	if cfg != want {
		t.Errorf("LoadIndicatorConfig() = %+v, want defaults %+v", cfg, want)
	}

	// Partial table keeps unset fields at defaults.
	path := writeConfig(t, `
[indicator]
layer_step_ms = 250
`)
	cfg, err = LoadIndicatorConfig(path)
	if err != nil {
		t.Fatalf("LoadIndicatorConfig() returned error: %v", err)
	}
	if cfg.AdvToggleMs != want.AdvToggleMs {
		t.Errorf("AdvToggleMs = %d, want default %d", cfg.AdvToggleMs, want.AdvToggleMs)
	}
	if cfg.LayerStepMs != 250 {
		t.Errorf("LayerStepMs = %d, want 250", cfg.LayerStepMs)
	}
}
