// Package bridge receives dongle status updates over a Unix socket.
//
// The firmware bridge connects and writes newline-delimited JSON status
// lines. Lines that cannot be decoded are dropped; the stream keeps going.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/smazurov/dongled/internal/ble"
	"github.com/smazurov/dongled/internal/events"
	"github.com/smazurov/dongled/internal/keymap"
	"github.com/smazurov/dongled/internal/metrics"
)

// statusLine is one JSON line from the firmware bridge.
type statusLine struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected,omitempty"`
	Open      bool   `json:"open,omitempty"`
	Layer     int    `json:"layer,omitempty"`
	Active    bool   `json:"active,omitempty"`
}

// Listener accepts firmware bridge connections on a Unix socket and feeds
// decoded status into the profile and keymap trackers.
type Listener struct {
	socketPath string
	profile    *ble.Profile
	layers     *keymap.State
	bus        *events.Bus
	logger     *slog.Logger
	listener   net.Listener
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewListener creates a bridge listener for the given socket path.
func NewListener(socketPath string, profile *ble.Profile, layers *keymap.State, bus *events.Bus, logger *slog.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())

	return &Listener{
		socketPath: socketPath,
		profile:    profile,
		layers:     layers,
		bus:        bus,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for bridge connections.
// A stale socket file from a previous run is removed first.
func (l *Listener) Start() error {
	if _, err := os.Stat(l.socketPath); err == nil {
		if rmErr := os.Remove(l.socketPath); rmErr != nil {
			return fmt.Errorf("removing stale socket file: %w", rmErr)
		}
		l.logger.Debug("Removed stale socket file", "path", l.socketPath)
	}

	listener, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("creating Unix socket listener: %w", err)
	}
	l.listener = listener

	l.logger.Info("Bridge listener started", "socket", l.socketPath)
	go l.acceptConnections()

	return nil
}

// Stop stops the listener and cleans up the socket file.
func (l *Listener) Stop() {
	l.cancel()

	if l.listener != nil {
		l.listener.Close()
	}
	os.Remove(l.socketPath)

	l.logger.Info("Bridge listener stopped")
}

// acceptConnections handles incoming bridge connections, one at a time.
// The firmware bridge maintains a single long-lived connection.
func (l *Listener) acceptConnections() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.ctx.Done():
				return
			default:
				l.logger.Warn("Error accepting bridge connection", "error", err)
				continue
			}
		}

		l.logger.Info("Dongle bridge connected", "remote", conn.RemoteAddr())
		l.publishDongleState(true)

		l.handleConnection(conn)

		// Bridge gone: no link state is trustworthy anymore.
		l.profile.Reset()
		l.publishDongleState(false)
		l.logger.Info("Dongle bridge disconnected")
	}
}

// handleConnection reads status lines until the connection closes.
func (l *Listener) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-l.ctx.Done():
			return
		default:
		}
		l.handleLine(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		l.logger.Debug("Bridge connection read error", "error", err)
	}
}

// handleLine decodes and applies a single status line.
// Malformed lines are dropped without failing the stream.
func (l *Listener) handleLine(raw []byte) {
	var line statusLine
	if err := json.Unmarshal(raw, &line); err != nil {
		l.logger.Debug("Dropping malformed bridge line", "error", err)
		metrics.RecordBridgeLine("malformed")
		return
	}

	switch line.Type {
	case "profile":
		l.profile.Update(line.Connected, line.Open)
		metrics.RecordBridgeLine("ok")
	case "layer":
		l.layers.SetLayer(line.Layer, line.Active)
		metrics.RecordBridgeLine("ok")
	default:
		l.logger.Debug("Dropping bridge line with unknown type", "type", line.Type)
		metrics.RecordBridgeLine("malformed")
	}
}

func (l *Listener) publishDongleState(attached bool) {
	l.bus.Publish(events.DongleStateChangedEvent{
		Attached:  attached,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
