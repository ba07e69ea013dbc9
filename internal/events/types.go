package events

// Event type constants for kelindar/event.
const (
	TypeProfileChanged uint32 = iota + 1
	TypeLayerStateChanged
	TypeDongleStateChanged
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProfileChangedEvent is published whenever the dongle's active BLE profile
// changes connectivity state (connected, open for pairing, or neither).
type ProfileChangedEvent struct {
	Connected bool   `json:"connected" example:"true" doc:"Whether the active profile has an established link"`
	Open      bool   `json:"open" example:"false" doc:"Whether the active profile is open for pairing"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfileChangedEvent.
func (e ProfileChangedEvent) Type() uint32 { return TypeProfileChanged }

// LayerStateChangedEvent is published when a keymap layer is activated or
// deactivated on the keyboard.
type LayerStateChangedEvent struct {
	Layer     int    `json:"layer" example:"2" doc:"Layer number, 0 is the base layer"`
	Active    bool   `json:"active" example:"true" doc:"Whether the layer became active"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LayerStateChangedEvent.
func (e LayerStateChangedEvent) Type() uint32 { return TypeLayerStateChanged }

// DongleStateChangedEvent is published when the firmware bridge connects to
// or disconnects from the daemon.
type DongleStateChangedEvent struct {
	Attached  bool   `json:"attached" example:"true" doc:"Whether the dongle bridge is connected"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DongleStateChangedEvent.
func (e DongleStateChangedEvent) Type() uint32 { return TypeDongleStateChanged }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
