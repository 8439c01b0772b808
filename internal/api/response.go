package api

import (
	"encoding/json"
	"net/http"

	"github.com/strefethen/sonos-gateway-go/internal/apperrors"
)

// Pagination carries standard pagination metadata for list responses.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// WriteJSON sends a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteError serializes an AppError as {"request_id": "...", "error": {...}}.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.EnsureAppError(err)
	_ = WriteJSON(w, appErr.StatusCode, map[string]any{
		"request_id": GetRequestID(r),
		"error":      appErr.ErrorBody(),
	})
}

// SingleResponse writes a single resource under a dynamic key.
// Example: SingleResponse(w, r, 200, "state", state)
// Produces: {"request_id": "...", "state": {...}}
func SingleResponse(w http.ResponseWriter, r *http.Request, status int, key string, resource any) error {
	return WriteJSON(w, status, map[string]any{
		"request_id": GetRequestID(r),
		key:          resource,
	})
}

// ListResponse writes a collection under a dynamic key with optional pagination.
func ListResponse(w http.ResponseWriter, r *http.Request, status int, key string, items any, pagination *Pagination) error {
	resp := map[string]any{
		"request_id": GetRequestID(r),
		key:          items,
	}
	if pagination != nil {
		resp["pagination"] = pagination
	}
	return WriteJSON(w, status, resp)
}

// ActionResponse writes a response for non-CRUD action endpoints.
func ActionResponse(w http.ResponseWriter, r *http.Request, status int, result any) error {
	return WriteJSON(w, status, map[string]any{
		"request_id": GetRequestID(r),
		"result":     result,
	})
}
