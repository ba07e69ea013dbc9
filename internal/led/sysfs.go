package led

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Indicator using the Linux sysfs LED interface.
type sysfs struct {
	name string // sysfs LED name, e.g. "usr_led"
}

// newSysfs creates a sysfs indicator for the named LED.
func newSysfs(name string) *sysfs {
	return &sysfs{name: name}
}

// Ready reports whether the LED exists in sysfs.
func (s *sysfs) Ready() bool {
	_, err := os.Stat(filepath.Join(sysfsLEDPath, s.name))
	return err == nil
}

// Configure takes manual control of the LED: disables any kernel trigger
// and starts from the off state.
func (s *sysfs) Configure() error {
	ledPath := filepath.Join(sysfsLEDPath, s.name)

	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: LED %q not found at %s", ErrDeviceUnavailable, s.name, ledPath)
	}

	triggerPath := filepath.Join(ledPath, "trigger")
	if err := os.WriteFile(triggerPath, []byte("none"), 0644); err != nil {
		return fmt.Errorf("%w: failed to set LED trigger: %v", ErrDeviceUnavailable, err)
	}

	if err := s.Set(false); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	return nil
}

// Set writes the LED brightness. A missing device is a silent no-op.
func (s *sysfs) Set(on bool) error {
	brightnessPath := filepath.Join(sysfsLEDPath, s.name, "brightness")

	if _, err := os.Stat(brightnessPath); os.IsNotExist(err) {
		return nil
	}

	value := "0"
	if on {
		value = "1"
	}

	if err := os.WriteFile(brightnessPath, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}

	return nil
}
