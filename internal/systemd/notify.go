// Package systemd integrates the daemon with the systemd service lifecycle.
package systemd

import (
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"
)

// NotifyReady tells systemd the daemon finished starting up.
// Outside a systemd unit (no NOTIFY_SOCKET) this is a silent no-op.
func NotifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("Failed to notify systemd readiness", "error", err)
		return
	}
	if sent {
		logger.Debug("Notified systemd readiness")
	}
}

// NotifyStopping tells systemd the daemon began shutting down.
func NotifyStopping(logger *slog.Logger) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logger.Warn("Failed to notify systemd shutdown", "error", err)
	}
}
