package history

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/sonos-gateway-go/internal/api"
	"github.com/strefethen/sonos-gateway-go/internal/apperrors"
)

// RegisterRoutes wires playback history routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/history", api.Handler(queryEvents(service)))
	router.Method(http.MethodGet, "/v1/history/{event_id}", api.Handler(getEvent(service)))
}

// queryEvents retrieves play events with optional filters.
// GET /v1/history
func queryEvents(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		filters, err := parseQueryFilters(r)
		if err != nil {
			return err
		}

		events, total, hasMore, err := service.QueryEvents(filters)
		if err != nil {
			return apperrors.NewInternalError("Failed to query play history")
		}

		formatted := make([]map[string]any, 0, len(events))
		for _, event := range events {
			formatted = append(formatted, formatEvent(&event))
		}

		pagination := &api.Pagination{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: hasMore,
		}
		return api.ListResponse(w, r, http.StatusOK, "events", formatted, pagination)
	}
}

// getEvent retrieves a single play event by ID.
// GET /v1/history/{event_id}
func getEvent(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		eventID := chi.URLParam(r, "event_id")

		event, err := service.GetEvent(eventID)
		if err != nil {
			var notFoundErr *EventNotFoundError
			if errors.As(err, &notFoundErr) {
				return apperrors.NewAppError(apperrors.ErrorCodeEventNotFound, "Event not found", 404, map[string]any{
					"event_id": eventID,
				})
			}
			return apperrors.NewInternalError("Failed to get play event")
		}

		return api.SingleResponse(w, r, http.StatusOK, "event", formatEvent(event))
	}
}

func parseQueryFilters(r *http.Request) (EventQueryFilters, error) {
	filters := EventQueryFilters{
		Limit:  DefaultQueryLimit,
		Offset: 0,
	}

	query := r.URL.Query()

	if speakerID := query.Get("speaker_id"); speakerID != "" {
		filters.SpeakerID = &speakerID
	}

	if successStr := query.Get("success"); successStr != "" {
		success, err := strconv.ParseBool(successStr)
		if err != nil {
			return filters, apperrors.NewValidationError("invalid success filter, must be true or false", map[string]any{
				"success": successStr,
			})
		}
		filters.Success = &success
	}

	if from := query.Get("from"); from != "" {
		if _, err := time.Parse(time.RFC3339, from); err != nil {
			return filters, apperrors.NewValidationError("invalid 'from' datetime format, expected ISO 8601", map[string]any{"from": from})
		}
		filters.StartDate = &from
	}

	if to := query.Get("to"); to != "" {
		if _, err := time.Parse(time.RFC3339, to); err != nil {
			return filters, apperrors.NewValidationError("invalid 'to' datetime format, expected ISO 8601", map[string]any{"to": to})
		}
		filters.EndDate = &to
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > MaxQueryLimit {
			return filters, apperrors.NewValidationError("invalid limit, must be between 1 and 1000", map[string]any{
				"limit": limitStr,
			})
		}
		filters.Limit = limit
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filters, apperrors.NewValidationError("invalid offset, must be >= 0", map[string]any{
				"offset": offsetStr,
			})
		}
		filters.Offset = offset
	}

	return filters, nil
}

func formatEvent(event *PlayEvent) map[string]any {
	result := map[string]any{
		"event_id":      event.EventID,
		"timestamp":     event.Timestamp.UTC().Format(time.RFC3339),
		"speaker_id":    event.SpeakerID,
		"track_url":     event.TrackURL,
		"transport_uri": event.TransportURI,
		"strategy":      event.Strategy,
		"success":       event.Success,
		"message":       event.Message,
	}
	if event.RequestID != nil {
		result["request_id"] = *event.RequestID
	}
	return result
}
