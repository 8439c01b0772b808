package gateway

// Speaker is a controllable Sonos playback endpoint, identified by room name.
// The control API reports one coordinator per zone; the room name serves as
// both the identifier and the display name.
type Speaker struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Volume    *int   `json:"volume,omitempty"`
}

// PlaybackState is a snapshot of what a speaker is doing right now.
// Position and Duration are whole seconds.
type PlaybackState struct {
	IsPlaying bool    `json:"is_playing"`
	Artist    *string `json:"artist,omitempty"`
	Title     *string `json:"title,omitempty"`
	Position  *int    `json:"position,omitempty"`
	Duration  *int    `json:"duration,omitempty"`
}

// Result reports the outcome of a mutating call. Failures are encoded here
// rather than returned as errors; callers inspect Success and Message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// zonePayload mirrors one element of the /zones response.
type zonePayload struct {
	Coordinator *zoneCoordinator `json:"coordinator"`
}

type zoneCoordinator struct {
	UUID     string            `json:"uuid"`
	RoomName string            `json:"roomName"`
	State    *coordinatorState `json:"state"`
}

type coordinatorState struct {
	Volume *int `json:"volume"`
}

// statePayload mirrors the /{room}/state response.
type statePayload struct {
	PlaybackState string        `json:"playbackState"`
	RelTime       string        `json:"relTime"`
	CurrentTrack  *currentTrack `json:"currentTrack"`
}

type currentTrack struct {
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}
