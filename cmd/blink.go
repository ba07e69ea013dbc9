package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/smazurov/dongled/internal/led"
	"github.com/smazurov/dongled/internal/logging"
	"github.com/spf13/cobra"
)

// CreateBlinkCmd creates the blink command.
func CreateBlinkCmd() *cobra.Command {
	var ledName string
	var count int
	var periodMs int
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "blink",
		Short: "Blink the status LED directly",
		Long: `Configures the status LED and runs a blink sequence without starting the daemon. ` +
			`Useful for verifying sysfs access and board detection on new hardware.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("blink")

			indicator := led.New(ledName, logger)
			if err := indicator.Configure(); err != nil {
				logger.Error("Failed to configure LED", "error", err)
				os.Exit(1)
			}

			period := time.Duration(periodMs) * time.Millisecond
			logger.Info("Blinking", "count", count, "period", period)

			for i := 0; i < count; i++ {
				if err := indicator.Set(true); err != nil {
					logger.Error("LED write failed", "error", err)
					os.Exit(1)
				}
				time.Sleep(period)
				if err := indicator.Set(false); err != nil {
					logger.Error("LED write failed", "error", err)
					os.Exit(1)
				}
				time.Sleep(period)
			}

			fmt.Println("Done")
		},
	}

	cmd.Flags().StringVar(&ledName, "led", "", "sysfs LED name, empty for board autodetection")
	cmd.Flags().IntVar(&count, "count", 3, "Number of blink cycles")
	cmd.Flags().IntVar(&periodMs, "period-ms", 200, "Half-period in milliseconds")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	return cmd
}
