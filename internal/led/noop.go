package led

import "log/slog"

// noop implements Indicator as a no-op for systems without LED support
type noop struct {
	logger *slog.Logger
}

// newNoop creates a new no-op indicator
func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Ready always reports true so the state machine runs normally.
func (n *noop) Ready() bool {
	return true
}

// Configure performs no device setup.
func (n *noop) Configure() error {
	return nil
}

// Set logs the request but performs no actual LED control
func (n *noop) Set(on bool) error {
	n.logger.Debug("LED control not available (no-op)", "on", on)
	return nil
}
