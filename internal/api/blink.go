package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// BlinkRequest asks the controller to run a test blink sequence.
type BlinkRequest struct {
	Body struct {
		Count int `json:"count" minimum:"1" maximum:"16" example:"3" doc:"Number of blink cycles"`
	}
}

// BlinkResponse acknowledges a queued blink sequence.
type BlinkResponse struct {
	Body struct {
		Queued bool `json:"queued" example:"true" doc:"Whether the blink request was accepted"`
		Count  int  `json:"count" example:"3" doc:"Cycle count that will run"`
	}
}

// registerBlinkRoutes registers the manual blink trigger endpoint.
func (s *Server) registerBlinkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "trigger-blink",
		Method:      http.MethodPost,
		Path:        "/api/leds/blink",
		Summary:     "Blink",
		Description: "Queue a blink sequence on the status LED. Requests issued while one is already pending collapse into the most recent count.",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(ctx context.Context, input *BlinkRequest) (*BlinkResponse, error) {
		s.options.Status.RequestLayerBlink(input.Body.Count)
		s.logger.Debug("Manual blink requested", "count", input.Body.Count)

		resp := &BlinkResponse{}
		resp.Body.Queued = true
		resp.Body.Count = input.Body.Count
		return resp, nil
	})
}
