// Package keymap tracks which keyboard layers are currently active.
package keymap

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/dongled/internal/events"
)

// MaxLayers is the number of layers tracked, matching the firmware's layer mask width.
const MaxLayers = 32

// State holds the active-layer bitmask reported by the keyboard.
// Layer 0 is the base layer and is always active.
type State struct {
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.RWMutex
	layers uint32
}

// NewState creates a layer state tracker that publishes transitions on the bus.
func NewState(bus *events.Bus, logger *slog.Logger) *State {
	return &State{
		bus:    bus,
		logger: logger,
		layers: 1, // base layer
	}
}

// SetLayer records a layer activation or deactivation and publishes a
// LayerStateChangedEvent. The base layer cannot be deactivated.
func (s *State) SetLayer(layer int, active bool) {
	if layer < 0 || layer >= MaxLayers {
		s.logger.Debug("Ignoring out-of-range layer", "layer", layer)
		return
	}

	s.mu.Lock()
	bit := uint32(1) << layer
	prev := s.layers&bit != 0
	if active {
		s.layers |= bit
	} else if layer != 0 {
		s.layers &^= bit
	}
	changed := prev != (s.layers&bit != 0)
	s.mu.Unlock()

	if !changed {
		return
	}

	s.logger.Debug("Layer state changed", "layer", layer, "active", active)
	s.bus.Publish(events.LayerStateChangedEvent{
		Layer:     layer,
		Active:    active,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HighestActiveLayer returns the highest active layer number, 0 for base.
func (s *State) HighestActiveLayer() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := MaxLayers - 1; i > 0; i-- {
		if s.layers&(uint32(1)<<i) != 0 {
			return i
		}
	}
	return 0
}
