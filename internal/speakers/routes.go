package speakers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/sonos-gateway-go/internal/api"
	"github.com/strefethen/sonos-gateway-go/internal/apperrors"
)

// PlayRequest is the body for POST /v1/speakers/{speaker_id}/play.
type PlayRequest struct {
	TrackURL string `json:"track_url"`
}

// RegisterRoutes wires speaker routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/speakers", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		speakers := service.ListSpeakers(r.Context())
		// Best-effort discovery: an unreachable backend looks like an empty
		// list, so this endpoint always answers 200.
		return api.ListResponse(w, r, http.StatusOK, "speakers", speakers, nil)
	}))

	router.Method(http.MethodGet, "/v1/speakers/{speaker_id}/state", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		speakerID := chi.URLParam(r, "speaker_id")
		state := service.GetState(r.Context(), speakerID)
		return api.SingleResponse(w, r, http.StatusOK, "state", state)
	}))

	router.Method(http.MethodPost, "/v1/speakers/{speaker_id}/play", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		speakerID := chi.URLParam(r, "speaker_id")

		var req PlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if req.TrackURL == "" {
			return apperrors.NewValidationError("track_url is required", nil)
		}

		result, eventID := service.PlayTrack(r.Context(), speakerID, req.TrackURL, api.GetRequestID(r))

		payload := map[string]any{
			"success": result.Success,
			"message": result.Message,
		}
		if eventID != "" {
			payload["event_id"] = eventID
		}
		return api.ActionResponse(w, r, http.StatusOK, payload)
	}))
}
