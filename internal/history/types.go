package history

import (
	"database/sql"
	"time"
)

// PlayEvent is one recorded play attempt against the control API.
type PlayEvent struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	SpeakerID    string    `json:"speaker_id"`
	TrackURL     string    `json:"track_url"`
	TransportURI string    `json:"transport_uri"`
	Strategy     string    `json:"strategy"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	RequestID    *string   `json:"request_id,omitempty"`
}

// WriteEventInput contains the fields for recording a new play event.
type WriteEventInput struct {
	SpeakerID    string
	TrackURL     string
	TransportURI string
	Strategy     string
	Success      bool
	Message      string
	RequestID    *string
}

// EventQueryFilters contains optional filters for querying play events.
type EventQueryFilters struct {
	SpeakerID *string
	Success   *bool
	StartDate *string // RFC 3339
	EndDate   *string // RFC 3339
	Limit     int
	Offset    int
}

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}
