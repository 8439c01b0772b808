package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// PlaybackStrategy selects how PlayTrack submits a track to the control API.
type PlaybackStrategy string

const (
	// StrategyShare rewrites the track URL into an x-file-cifs share URI and
	// submits it via /setavtransporturi. Requires a reachable file share that
	// mirrors the media server's library.
	StrategyShare PlaybackStrategy = "share"
	// StrategyClip passes the track URL straight through to /clip.
	StrategyClip PlaybackStrategy = "clip"
)

const playConfirmation = "Track started playing on Sonos"

// Client talks to a node-sonos-http-api instance. All fields are set at
// construction and never mutated, so a single Client is safe for concurrent
// use across goroutines.
type Client struct {
	baseURL        string
	fileServerHost string
	strategy       PlaybackStrategy
	httpClient     *http.Client
	logger         *log.Logger
}

// NewClient builds a gateway client. baseURL is the control API root
// (no trailing slash needed), fileServerHost the share host/prefix used by
// StrategyShare, e.g. "192.168.0.6/mp3".
func NewClient(baseURL, fileServerHost string, strategy PlaybackStrategy, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		fileServerHost: fileServerHost,
		strategy:       strategy,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// ListSpeakers returns one Speaker per zone coordinator known to the control
// API. Discovery is best effort: an unreachable backend, a non-2xx status or
// a malformed payload all yield an empty list, never an error, so callers
// cannot distinguish "no speakers" from "backend down".
func (c *Client) ListSpeakers(ctx context.Context) []Speaker {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/zones", nil)
	if err != nil {
		return []Speaker{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("zone listing failed: %v", err)
		return []Speaker{}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		c.logger.Printf("zone listing returned %s", resp.Status)
		return []Speaker{}
	}

	var zones []zonePayload
	if err := json.NewDecoder(resp.Body).Decode(&zones); err != nil {
		c.logger.Printf("zone listing returned malformed JSON: %v", err)
		return []Speaker{}
	}

	speakers := make([]Speaker, 0, len(zones))
	for _, zone := range zones {
		// Zones without a coordinator or room name are skipped silently.
		if zone.Coordinator == nil || zone.Coordinator.RoomName == "" {
			continue
		}
		speaker := Speaker{
			ID:        zone.Coordinator.RoomName,
			Name:      zone.Coordinator.RoomName,
			Available: true,
		}
		if zone.Coordinator.State != nil {
			speaker.Volume = zone.Coordinator.State.Volume
		}
		speakers = append(speakers, speaker)
	}
	return speakers
}

// GetState fetches the current playback state of a speaker. The speaker ID
// is the room name as the control API knows it; no local validation is done.
// Any failure collapses into a stopped, empty state.
func (c *Client) GetState(ctx context.Context, speakerID string) PlaybackState {
	url := fmt.Sprintf("%s/%s/state", c.baseURL, speakerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PlaybackState{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("state fetch for %q failed: %v", speakerID, err)
		return PlaybackState{}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return PlaybackState{}
	}

	var payload statePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Printf("state fetch for %q returned malformed JSON: %v", speakerID, err)
		return PlaybackState{}
	}

	state := PlaybackState{IsPlaying: payload.PlaybackState == "PLAYING"}
	if payload.CurrentTrack != nil {
		if payload.CurrentTrack.Artist != "" {
			state.Artist = &payload.CurrentTrack.Artist
		}
		if payload.CurrentTrack.Title != "" {
			state.Title = &payload.CurrentTrack.Title
		}
		if seconds, ok := parseClockDuration(payload.CurrentTrack.Duration); ok {
			state.Duration = &seconds
		}
	}
	if seconds, ok := parseClockDuration(payload.RelTime); ok {
		state.Position = &seconds
	}
	return state
}

// PlayTrack asks a speaker to play trackURL using the configured strategy.
// Failures of any kind are reported through the Result, never as an error.
func (c *Client) PlayTrack(ctx context.Context, speakerID, trackURL string) Result {
	url := c.playURL(speakerID, trackURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Connection error: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("play request for %q failed: %v", speakerID, err)
		return Result{Success: false, Message: fmt.Sprintf("Connection error: %v", err)}
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) {
		return Result{Success: true, Message: playConfirmation}
	}

	body, _ := io.ReadAll(resp.Body)
	c.logger.Printf("play request for %q returned %s", speakerID, resp.Status)
	return Result{
		Success: false,
		Message: fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, string(body)),
	}
}

// TransportURI returns the URI PlayTrack would submit for trackURL, before
// percent-encoding. For StrategyClip this is the track URL itself.
func (c *Client) TransportURI(trackURL string) string {
	if c.strategy == StrategyClip {
		return trackURL
	}
	return BuildShareURI(c.fileServerHost, trackURL)
}

// Strategy reports the configured playback strategy.
func (c *Client) Strategy() PlaybackStrategy {
	return c.strategy
}

func (c *Client) playURL(speakerID, trackURL string) string {
	if c.strategy == StrategyClip {
		return fmt.Sprintf("%s/%s/clip/%s", c.baseURL, speakerID, trackURL)
	}
	shareURI := BuildShareURI(c.fileServerHost, trackURL)
	return fmt.Sprintf("%s/%s/setavtransporturi/%s", c.baseURL, speakerID, encodeURIComponent(shareURI))
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// parseClockDuration converts "MM:SS" or "H:MM:SS" strings from the control
// API into whole seconds. Any other field count, or a non-numeric field,
// yields no value rather than an error.
func parseClockDuration(value string) (int, bool) {
	parts := strings.Split(value, ":")

	fields := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		fields[i] = n
	}

	switch len(fields) {
	case 2:
		return fields[0]*60 + fields[1], true
	case 3:
		return fields[0]*3600 + fields[1]*60 + fields[2], true
	default:
		return 0, false
	}
}
