package speakers

import (
	"context"
	"log"

	"github.com/strefethen/sonos-gateway-go/internal/gateway"
	"github.com/strefethen/sonos-gateway-go/internal/history"
)

// PlayRecorder persists play attempts. Decoupled by interface so routes can
// be tested without a database.
type PlayRecorder interface {
	RecordEvent(input history.WriteEventInput) (*history.PlayEvent, error)
}

// Service exposes the gateway operations to the HTTP layer and records
// play attempts in the history log.
type Service struct {
	gw       *gateway.Client
	recorder PlayRecorder
	logger   *log.Logger
}

// NewService creates a speakers service. recorder may be nil to disable
// history recording.
func NewService(gw *gateway.Client, recorder PlayRecorder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{gw: gw, recorder: recorder, logger: logger}
}

// ListSpeakers returns the speakers known to the control API, possibly empty.
func (s *Service) ListSpeakers(ctx context.Context) []gateway.Speaker {
	return s.gw.ListSpeakers(ctx)
}

// GetState returns the playback state snapshot for one speaker.
func (s *Service) GetState(ctx context.Context, speakerID string) gateway.PlaybackState {
	return s.gw.GetState(ctx, speakerID)
}

// PlayTrack submits a track to a speaker and records the attempt. History
// recording is best effort: a failed insert is logged, never surfaced.
// Returns the gateway result and the recorded event ID when available.
func (s *Service) PlayTrack(ctx context.Context, speakerID, trackURL, requestID string) (gateway.Result, string) {
	result := s.gw.PlayTrack(ctx, speakerID, trackURL)

	if s.recorder == nil {
		return result, ""
	}

	input := history.WriteEventInput{
		SpeakerID:    speakerID,
		TrackURL:     trackURL,
		TransportURI: s.gw.TransportURI(trackURL),
		Strategy:     string(s.gw.Strategy()),
		Success:      result.Success,
		Message:      result.Message,
	}
	if requestID != "" {
		input.RequestID = &requestID
	}

	event, err := s.recorder.RecordEvent(input)
	if err != nil {
		s.logger.Printf("failed to record play event for %q: %v", speakerID, err)
		return result, ""
	}
	return result, event.EventID
}
