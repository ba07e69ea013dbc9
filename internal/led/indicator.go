package led

import "errors"

// ErrDeviceUnavailable is returned when the LED device is missing or cannot
// be configured. The daemon keeps running without visual output.
var ErrDeviceUnavailable = errors.New("indicator device unavailable")

// Indicator abstracts the single status LED.
// Set must be safe to call before Configure or when the device is gone;
// implementations turn it into a no-op.
type Indicator interface {
	// Ready reports whether the underlying device is present
	Ready() bool

	// Configure prepares the device for manual control
	Configure() error

	// Set turns the LED on or off
	Set(on bool) error
}
