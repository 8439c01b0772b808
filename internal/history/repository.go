package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository handles database access for play events. Reads and writes go
// through separate connections for SQLite WAL concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new history Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

// InsertEvent records a play attempt. Generates the event ID and timestamp.
func (r *Repository) InsertEvent(input WriteEventInput) (*PlayEvent, error) {
	eventID := uuid.New().String()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	_, err := r.writer.Exec(`
		INSERT INTO play_history (event_id, timestamp, speaker_id, track_url, transport_uri, strategy, success, message, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, eventID, timestamp, input.SpeakerID, input.TrackURL, input.TransportURI, input.Strategy, boolToInt(input.Success), input.Message, input.RequestID)
	if err != nil {
		return nil, err
	}

	return r.GetEvent(eventID)
}

// GetEvent retrieves a single event by ID. Returns nil, nil if not found.
func (r *Repository) GetEvent(eventID string) (*PlayEvent, error) {
	row := r.reader.QueryRow(`
		SELECT event_id, timestamp, speaker_id, track_url, transport_uri, strategy, success, message, request_id
		FROM play_history
		WHERE event_id = ?
	`, eventID)

	event, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// QueryEvents retrieves events matching filters, newest first, with the
// total count for pagination.
func (r *Repository) QueryEvents(filters EventQueryFilters) ([]PlayEvent, int, error) {
	whereClause, args := buildWhereClause(filters)

	var total int
	if err := r.reader.QueryRow("SELECT COUNT(*) FROM play_history "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	query := `
		SELECT event_id, timestamp, speaker_id, track_url, transport_uri, strategy, success, message, request_id
		FROM play_history
		` + whereClause + `
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.reader.Query(query, append(args, limit, filters.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []PlayEvent{}
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// Prune deletes events older than the cutoff. Returns rows deleted.
func (r *Repository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.writer.Exec(`
		DELETE FROM play_history
		WHERE timestamp < ?
	`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func buildWhereClause(filters EventQueryFilters) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filters.SpeakerID != nil {
		conditions = append(conditions, "speaker_id = ?")
		args = append(args, *filters.SpeakerID)
	}
	if filters.Success != nil {
		conditions = append(conditions, "success = ?")
		args = append(args, boolToInt(*filters.Success))
	}
	if filters.StartDate != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filters.EndDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanEvent(scan func(dest ...any) error) (*PlayEvent, error) {
	var event PlayEvent
	var timestamp string
	var success int
	var requestID sql.NullString

	err := scan(
		&event.EventID,
		&timestamp,
		&event.SpeakerID,
		&event.TrackURL,
		&event.TransportURI,
		&event.Strategy,
		&success,
		&event.Message,
		&requestID,
	)
	if err != nil {
		return nil, err
	}

	event.Timestamp, err = time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return nil, err
	}
	event.Success = success != 0
	if requestID.Valid {
		event.RequestID = &requestID.String
	}
	return &event, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
