package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// New creates an Indicator based on board detection.
// An explicit sysfs LED name from config overrides detection.
// Falls back to a no-op indicator when no LED is available.
func New(ledName string, logger *slog.Logger) Indicator {
	if ledName != "" {
		logger.Info("Using configured status LED", "led", ledName)
		return newSysfs(ledName)
	}

	boardModel := detectBoard()
	logger.Info("Detecting board for status LED", "board_model", boardModel)

	switch {
	case strings.Contains(boardModel, "NanoPC-T6"):
		logger.Info("Detected NanoPC-T6, using usr_led")
		return newSysfs("usr_led")

	case strings.Contains(boardModel, "Orange Pi"):
		logger.Info("Detected Orange Pi, using blue_led")
		return newSysfs("blue_led")

	case strings.Contains(boardModel, "Raspberry Pi"):
		logger.Info("Detected Raspberry Pi, using ACT")
		return newSysfs("ACT")

	default:
		logger.Info("No LED support detected, using no-op indicator", "board_model", boardModel)
		return newNoop(logger)
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	model := strings.TrimRight(string(data), "\x00")
	return model
}
