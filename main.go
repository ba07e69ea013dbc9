package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/dongled/cmd"
	"github.com/smazurov/dongled/internal/api"
	"github.com/smazurov/dongled/internal/ble"
	"github.com/smazurov/dongled/internal/bridge"
	"github.com/smazurov/dongled/internal/config"
	"github.com/smazurov/dongled/internal/events"
	"github.com/smazurov/dongled/internal/keymap"
	"github.com/smazurov/dongled/internal/led"
	"github.com/smazurov/dongled/internal/logging"
	"github.com/smazurov/dongled/internal/metrics/exporters"
	"github.com/smazurov/dongled/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Bridge settings
	BridgeSocketPath string `help:"Firmware bridge Unix socket path" default:"/run/dongled/bridge.sock" toml:"bridge.socket_path" env:"BRIDGE_SOCKET_PATH"`

	// Indicator settings
	IndicatorLed         string `help:"sysfs LED name, empty for board autodetection" default:"" toml:"indicator.led" env:"INDICATOR_LED"`
	IndicatorAdvToggleMs int    `help:"Advertising toggle period in milliseconds" default:"100" toml:"indicator.adv_toggle_ms" env:"INDICATOR_ADV_TOGGLE_MS"`
	IndicatorLayerStepMs int    `help:"Layer blink step in milliseconds" default:"400" toml:"indicator.layer_step_ms" env:"INDICATOR_LAYER_STEP_MS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLed    string `help:"LED controller logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingBridge string `help:"Bridge logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingAPI    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"led":    opts.LoggingLed,
				"bridge": opts.LoggingBridge,
				"api":    opts.LoggingAPI,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Feed log entries onto the bus for SSE streaming
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Dongle state trackers
		profile := ble.NewProfile(eventBus, logging.GetLogger("ble"))
		layers := keymap.NewState(eventBus, logging.GetLogger("keymap"))

		// Status LED
		indicator := led.New(opts.IndicatorLed, logging.GetLogger("led"))
		timings := led.DefaultTimings()
		if opts.IndicatorAdvToggleMs > 0 {
			timings.AdvertiseToggle = time.Duration(opts.IndicatorAdvToggleMs) * time.Millisecond
		}
		if opts.IndicatorLayerStepMs > 0 {
			timings.LayerStep = time.Duration(opts.IndicatorLayerStepMs) * time.Millisecond
		}
		controller := led.NewStatusController(indicator, profile, layers, eventBus, logging.GetLogger("led"), timings)

		// Firmware bridge listener
		listener := bridge.NewListener(opts.BridgeSocketPath, profile, layers, eventBus, logging.GetLogger("bridge"))

		// Hot-reload indicator timings from the config file
		watcher := config.NewConfigWatcher(opts.Config, config.LoadIndicatorConfig,
			logging.GetLogger("config"))
		watcher.OnReload(func(cfg config.IndicatorConfig) {
			logger.Info("Indicator timings reloaded",
				"adv_toggle", cfg.AdvToggle(), "layer_step", cfg.LayerStep())
			controller.SetTimings(cfg.AdvToggle(), cfg.LayerStep())
		})

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Status:            controller,
			Profile:           profile,
			Layers:            layers,
			EventBus:          eventBus,
			PrometheusHandler: exporters.HTTPHandler(),
		})

		hooks.OnStart(func() {
			if startErr := controller.Start(); startErr != nil {
				// The controller keeps running in degraded mode without a device.
				logger.Warn("Status LED degraded", "error", startErr)
			}

			if startErr := listener.Start(); startErr != nil {
				logger.Error("Failed to start bridge listener", "error", startErr)
				os.Exit(1)
			}

			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Config watcher unavailable, timings frozen", "error", startErr)
			}

			systemd.NotifyReady(logger)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping(logger)
			logger.Info("Shutting down")

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}

			listener.Stop()
			controller.Stop()
		})
	})

	// Add blink command for bench-testing an LED without the daemon
	cli.Root().AddCommand(cmd.CreateBlinkCmd())

	cli.Run()
}
