// Package ble tracks the connectivity state of the dongle's active BLE profile.
package ble

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/smazurov/dongled/internal/events"
)

// Profile holds the last reported state of the active BLE profile.
// Queries are lock-free atomic loads so they are safe from any goroutine.
// Updates come from a single writer (the bridge listener).
type Profile struct {
	bus       *events.Bus
	logger    *slog.Logger
	connected atomic.Bool
	open      atomic.Bool
}

// NewProfile creates a profile tracker that publishes state changes on the bus.
func NewProfile(bus *events.Bus, logger *slog.Logger) *Profile {
	return &Profile{
		bus:    bus,
		logger: logger,
	}
}

// Connected reports whether the active profile has an established link.
func (p *Profile) Connected() bool {
	return p.connected.Load()
}

// OpenForPairing reports whether the active profile is open for pairing.
func (p *Profile) OpenForPairing() bool {
	return p.open.Load()
}

// Update records a newly reported profile state and publishes a
// ProfileChangedEvent if either field actually changed.
func (p *Profile) Update(connected, open bool) {
	changed := p.connected.Swap(connected) != connected
	if p.open.Swap(open) != open {
		changed = true
	}
	if !changed {
		return
	}

	p.logger.Debug("Profile state changed", "connected", connected, "open", open)
	p.bus.Publish(events.ProfileChangedEvent{
		Connected: connected,
		Open:      open,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Reset clears the profile state, used when the bridge connection drops.
func (p *Profile) Reset() {
	p.Update(false, false)
}
