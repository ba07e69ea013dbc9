package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/dongled/internal/ble"
	"github.com/smazurov/dongled/internal/events"
	"github.com/smazurov/dongled/internal/keymap"
	"github.com/smazurov/dongled/internal/led"
	"github.com/smazurov/dongled/internal/logging"
)

// stubIndicator satisfies led.Indicator without touching sysfs.
type stubIndicator struct{}

func (stubIndicator) Ready() bool      { return true }
func (stubIndicator) Configure() error { return nil }
func (stubIndicator) Set(bool) error   { return nil }

func newTestServer(t *testing.T, username, password string) (*Server, *led.StatusController) {
	t.Helper()

	logger := logging.GetLogger("test")
	bus := events.New()
	profile := ble.NewProfile(bus, logger)
	layers := keymap.NewState(bus, logger)

	timings := led.Timings{
		AdvertiseToggle: 10 * time.Millisecond,
		LayerStep:       5 * time.Millisecond,
		BootStep:        time.Millisecond,
	}
	controller := led.NewStatusController(stubIndicator{}, profile, layers, bus, logger, timings)

	s := NewServer(&Options{
		AuthUsername: username,
		AuthPassword: password,
		Status:       controller,
		Profile:      profile,
		Layers:       layers,
		EventBus:     bus,
	})
	s.startedAt = time.Now()
	return s, controller
}

func TestHealthEndpoint_NoAuthRequired(t *testing.T) {
	s, _ := newTestServer(t, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d, want 200", rec.Code)
	}
}

func TestStatusEndpoint_RequiresAuth(t *testing.T) {
	s, _ := newTestServer(t, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/status without credentials = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("Expected WWW-Authenticate challenge header")
	}
}

func TestStatusEndpoint_ReportsControllerState(t *testing.T) {
	s, _ := newTestServer(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var body StatusData
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode status body: %v", err)
	}

	if body.Mode != "off" {
		t.Errorf("Mode = %q, want off before any profile events", body.Mode)
	}
	if body.HighestLayer != 0 {
		t.Errorf("HighestLayer = %d, want 0", body.HighestLayer)
	}
	if body.DongleAttached {
		t.Error("DongleAttached = true before any bridge connection")
	}
}

func TestStatusEndpoint_AcceptsBasicAuth(t *testing.T) {
	s, _ := newTestServer(t, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/status with credentials = %d, want 200", rec.Code)
	}
}

func TestStatusEndpoint_RejectsBadPassword(t *testing.T) {
	s, _ := newTestServer(t, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/status with bad password = %d, want 401", rec.Code)
	}
}

func TestBlinkEndpoint_QueuesSequence(t *testing.T) {
	s, controller := newTestServer(t, "", "")
	if err := controller.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	defer controller.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/leds/blink",
		strings.NewReader(`{"count": 2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/leds/blink = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Queued bool `json:"queued"`
		Count  int  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode blink body: %v", err)
	}
	if !body.Queued || body.Count != 2 {
		t.Errorf("Blink response = %+v, want queued with count 2", body)
	}

	// The worker picks up the request shortly after.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if controller.BlinkActive() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("Blink sequence never became active")
}

func TestBlinkEndpoint_RejectsZeroCount(t *testing.T) {
	s, _ := newTestServer(t, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/leds/blink",
		strings.NewReader(`{"count": 0}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST /api/leds/blink count=0 = %d, want 422", rec.Code)
	}
}
