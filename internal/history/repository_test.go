package history

import (
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-gateway-go/internal/db"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	dbPair, err := db.Init(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { dbPair.Close() })

	return NewRepository(dbPair)
}

func TestRepository_InsertEvent(t *testing.T) {
	repo := setupTestRepo(t)

	requestID := "req-123"
	input := WriteEventInput{
		SpeakerID:    "Living Room",
		TrackURL:     "http://host/api/v8/audio/Test%2FSong.mp3",
		TransportURI: "x-file-cifs://192.168.0.6/mp3/Test/Song.mp3",
		Strategy:     "share",
		Success:      true,
		Message:      "Track started playing on Sonos",
		RequestID:    &requestID,
	}

	event, err := repo.InsertEvent(input)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.NotEmpty(t, event.EventID)
	require.Equal(t, "Living Room", event.SpeakerID)
	require.Equal(t, "x-file-cifs://192.168.0.6/mp3/Test/Song.mp3", event.TransportURI)
	require.Equal(t, "share", event.Strategy)
	require.True(t, event.Success)
	require.NotNil(t, event.RequestID)
	require.Equal(t, "req-123", *event.RequestID)
	require.False(t, event.Timestamp.IsZero())
}

func TestRepository_InsertEvent_Failure(t *testing.T) {
	repo := setupTestRepo(t)

	event, err := repo.InsertEvent(WriteEventInput{
		SpeakerID:    "Attic",
		TrackURL:     "http://host/audio/x.mp3",
		TransportURI: "x-file-cifs://192.168.0.6/mp3/x.mp3",
		Strategy:     "share",
		Success:      false,
		Message:      "HTTP error 404: room not found",
	})
	require.NoError(t, err)
	require.False(t, event.Success)
	require.Contains(t, event.Message, "404")
	require.Nil(t, event.RequestID)
}

func TestRepository_GetEvent_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	event, err := repo.GetEvent("nonexistent-id")
	require.NoError(t, err)
	require.Nil(t, event)
}

func TestRepository_QueryEvents_Filters(t *testing.T) {
	repo := setupTestRepo(t)

	insert := func(speaker string, success bool) {
		t.Helper()
		_, err := repo.InsertEvent(WriteEventInput{
			SpeakerID:    speaker,
			TrackURL:     "http://host/audio/x.mp3",
			TransportURI: "x-file-cifs://192.168.0.6/mp3/x.mp3",
			Strategy:     "share",
			Success:      success,
			Message:      "m",
		})
		require.NoError(t, err)
	}

	insert("Kitchen", true)
	insert("Kitchen", false)
	insert("Bedroom", true)

	kitchen := "Kitchen"
	events, total, err := repo.QueryEvents(EventQueryFilters{SpeakerID: &kitchen})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, events, 2)

	failed := false
	events, total, err = repo.QueryEvents(EventQueryFilters{Success: &failed})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, events, 1)
	require.Equal(t, "Kitchen", events[0].SpeakerID)

	events, total, err = repo.QueryEvents(EventQueryFilters{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, events, 3)
}

func TestRepository_QueryEvents_Pagination(t *testing.T) {
	repo := setupTestRepo(t)

	for i := 0; i < 5; i++ {
		_, err := repo.InsertEvent(WriteEventInput{
			SpeakerID:    "Kitchen",
			TrackURL:     "http://host/audio/x.mp3",
			TransportURI: "uri",
			Strategy:     "clip",
			Success:      true,
			Message:      "m",
		})
		require.NoError(t, err)
	}

	events, total, err := repo.QueryEvents(EventQueryFilters{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, events, 2)

	events, _, err = repo.QueryEvents(EventQueryFilters{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestRepository_Prune(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.InsertEvent(WriteEventInput{
		SpeakerID:    "Kitchen",
		TrackURL:     "http://host/audio/x.mp3",
		TransportURI: "uri",
		Strategy:     "share",
		Success:      true,
		Message:      "m",
	})
	require.NoError(t, err)

	// Cutoff in the past keeps the fresh row.
	deleted, err := repo.Prune(time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, deleted)

	// Cutoff in the future removes it.
	deleted, err = repo.Prune(time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, total, err := repo.QueryEvents(EventQueryFilters{})
	require.NoError(t, err)
	require.Zero(t, total)
}
