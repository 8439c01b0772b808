package statestream

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/strefethen/sonos-gateway-go/internal/gateway"
)

// StateSource provides playback state snapshots; satisfied by gateway.Client.
type StateSource interface {
	GetState(ctx context.Context, speakerID string) gateway.PlaybackState
}

// Streamer pushes playback state snapshots to WebSocket clients. Each
// connection gets its own poll loop; there is no shared state between
// connections beyond the source.
type Streamer struct {
	source       StateSource
	pushInterval time.Duration
	logger       *log.Logger
	upgrader     websocket.Upgrader
}

// NewStreamer creates a Streamer polling the source at pushInterval.
func NewStreamer(source StateSource, pushInterval time.Duration, logger *log.Logger) *Streamer {
	if logger == nil {
		logger = log.Default()
	}
	return &Streamer{
		source:       source,
		pushInterval: pushInterval,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway runs on a trusted LAN without browser origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes wires the state stream route to the router.
func RegisterRoutes(router chi.Router, streamer *Streamer) {
	router.Get("/v1/speakers/{speaker_id}/state/stream", streamer.handleStream)
}

func (s *Streamer) handleStream(w http.ResponseWriter, r *http.Request) {
	speakerID := chi.URLParam(r, "speaker_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Printf("state stream upgrade failed for %q: %v", speakerID, err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		// Drain client frames so close frames and pings are processed.
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	// Push the current state immediately, then on every tick.
	if err := s.push(r.Context(), conn, speakerID); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := s.push(r.Context(), conn, speakerID); err != nil {
				return
			}
		}
	}
}

func (s *Streamer) push(ctx context.Context, conn *websocket.Conn, speakerID string) error {
	state := s.source.GetState(ctx, speakerID)
	if err := conn.WriteJSON(state); err != nil {
		s.logger.Printf("state stream write for %q failed: %v", speakerID, err)
		return err
	}
	return nil
}
