package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// StatusData is the daemon status snapshot.
type StatusData struct {
	Mode           string `json:"mode" example:"connected" doc:"Display mode: off, advertising, or connected"`
	BlinkActive    bool   `json:"blink_active" example:"false" doc:"Whether a layer blink sequence currently owns the LED"`
	LedOn          bool   `json:"led_on" example:"true" doc:"Last commanded LED value"`
	Connected      bool   `json:"connected" example:"true" doc:"Whether the active BLE profile has an established link"`
	OpenForPairing bool   `json:"open_for_pairing" example:"false" doc:"Whether the active BLE profile is open for pairing"`
	HighestLayer   int    `json:"highest_layer" example:"0" doc:"Highest active keymap layer, 0 is base"`
	DongleAttached bool   `json:"dongle_attached" example:"true" doc:"Whether the firmware bridge is connected"`
	UptimeSeconds  int64  `json:"uptime_seconds" example:"3600" doc:"Seconds since the API server started"`
}

// StatusResponse wraps StatusData for Huma.
type StatusResponse struct {
	Body StatusData
}

// registerStatusRoutes registers the status snapshot endpoint.
func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Current display mode, LED state, and BLE profile connectivity",
		Tags:        []string{"status"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		resp := &StatusResponse{}
		resp.Body = StatusData{
			Mode:           s.options.Status.Mode().String(),
			BlinkActive:    s.options.Status.BlinkActive(),
			LedOn:          s.options.Status.LedOn(),
			Connected:      s.options.Profile.Connected(),
			OpenForPairing: s.options.Profile.OpenForPairing(),
			HighestLayer:   s.options.Layers.HighestActiveLayer(),
			DongleAttached: s.dongleAttached.Load(),
			UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		}
		return resp, nil
	})
}
