package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, strategy PlaybackStrategy) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "192.168.0.6/mp3", strategy, 2*time.Second, nil)
}

func TestListSpeakers(t *testing.T) {
	t.Run("maps coordinators to speakers", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/zones", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"coordinator": {"uuid": "RINCON_1", "roomName": "Living Room", "state": {"volume": 25}}},
				{"coordinator": {"uuid": "RINCON_2", "roomName": "Kitchen"}}
			]`))
		}), StrategyShare)

		speakers := client.ListSpeakers(context.Background())
		require.Len(t, speakers, 2)

		require.Equal(t, "Living Room", speakers[0].ID)
		require.Equal(t, "Living Room", speakers[0].Name)
		require.True(t, speakers[0].Available)
		require.NotNil(t, speakers[0].Volume)
		require.Equal(t, 25, *speakers[0].Volume)

		require.Equal(t, "Kitchen", speakers[1].ID)
		require.True(t, speakers[1].Available)
		require.Nil(t, speakers[1].Volume)
	})

	t.Run("skips zones missing coordinator or room name", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[
				{"members": []},
				{"coordinator": {"uuid": "RINCON_3"}},
				{"coordinator": {"uuid": "RINCON_4", "roomName": "Bedroom"}}
			]`))
		}), StrategyShare)

		speakers := client.ListSpeakers(context.Background())
		require.Len(t, speakers, 1)
		require.Equal(t, "Bedroom", speakers[0].ID)
	})

	t.Run("empty list on refused connection", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewClient(server.URL, "192.168.0.6/mp3", StrategyShare, time.Second, nil)

		speakers := client.ListSpeakers(context.Background())
		require.NotNil(t, speakers)
		require.Empty(t, speakers)
	})

	t.Run("empty list on non-2xx status", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}), StrategyShare)

		require.Empty(t, client.ListSpeakers(context.Background()))
	})

	t.Run("empty list on malformed JSON", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not": "an array"`))
		}), StrategyShare)

		require.Empty(t, client.ListSpeakers(context.Background()))
	})
}

func TestGetState(t *testing.T) {
	t.Run("parses a playing state", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/Living Room/state", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"playbackState": "PLAYING",
				"relTime": "0:02:00",
				"currentTrack": {"artist": "The Beatles", "title": "Yesterday", "duration": "0:04:00"}
			}`))
		}), StrategyShare)

		state := client.GetState(context.Background(), "Living Room")
		require.True(t, state.IsPlaying)
		require.NotNil(t, state.Artist)
		require.Equal(t, "The Beatles", *state.Artist)
		require.NotNil(t, state.Title)
		require.Equal(t, "Yesterday", *state.Title)
		require.NotNil(t, state.Position)
		require.Equal(t, 120, *state.Position)
		require.NotNil(t, state.Duration)
		require.Equal(t, 240, *state.Duration)
	})

	t.Run("paused speaker is not playing", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"playbackState": "PAUSED_PLAYBACK"}`))
		}), StrategyShare)

		state := client.GetState(context.Background(), "Kitchen")
		require.False(t, state.IsPlaying)
		require.Nil(t, state.Artist)
		require.Nil(t, state.Title)
	})

	t.Run("unparseable times yield no value", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"playbackState": "PLAYING",
				"relTime": "NOT_IMPLEMENTED",
				"currentTrack": {"duration": "1:2:3:4"}
			}`))
		}), StrategyShare)

		state := client.GetState(context.Background(), "Kitchen")
		require.True(t, state.IsPlaying)
		require.Nil(t, state.Position)
		require.Nil(t, state.Duration)
	})

	t.Run("empty state on transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewClient(server.URL, "192.168.0.6/mp3", StrategyShare, time.Second, nil)

		state := client.GetState(context.Background(), "Kitchen")
		require.Equal(t, PlaybackState{}, state)
	})

	t.Run("empty state on error status", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such room", http.StatusNotFound)
		}), StrategyShare)

		state := client.GetState(context.Background(), "Attic")
		require.Equal(t, PlaybackState{}, state)
	})
}

func TestPlayTrack(t *testing.T) {
	t.Run("share strategy posts encoded transport URI", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			gotPath = r.URL.EscapedPath()
			w.WriteHeader(http.StatusOK)
		}), StrategyShare)

		result := client.PlayTrack(context.Background(), "Elena", "http://192.168.0.5:5050/api/v8/audio/Test%2FSong.mp3")
		require.True(t, result.Success)
		require.Equal(t, "Track started playing on Sonos", result.Message)
		require.Equal(t, "/Elena/setavtransporturi/x-file-cifs%3A%2F%2F192.168.0.6%2Fmp3%2FTest%2FSong.mp3", gotPath)
	})

	t.Run("clip strategy passes track URL through", func(t *testing.T) {
		var gotURI string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotURI = r.RequestURI
			w.WriteHeader(http.StatusOK)
		}), StrategyClip)

		result := client.PlayTrack(context.Background(), "Elena", "http://host/announce.mp3")
		require.True(t, result.Success)
		require.Equal(t, "/Elena/clip/http://host/announce.mp3", gotURI)
	})

	t.Run("failure message embeds status and body", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("room not found"))
		}), StrategyShare)

		result := client.PlayTrack(context.Background(), "Attic", "http://host/audio/x.mp3")
		require.False(t, result.Success)
		require.Contains(t, result.Message, "404")
		require.Contains(t, result.Message, "room not found")
	})

	t.Run("failure message embeds transport error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewClient(server.URL, "192.168.0.6/mp3", StrategyShare, time.Second, nil)

		result := client.PlayTrack(context.Background(), "Elena", "http://host/audio/x.mp3")
		require.False(t, result.Success)
		require.Contains(t, result.Message, "Connection error")
	})
}

func TestTransportURI(t *testing.T) {
	share := NewClient("http://127.0.0.1:5005", "192.168.0.6/mp3", StrategyShare, time.Second, nil)
	require.Equal(t,
		"x-file-cifs://192.168.0.6/mp3/Test/Song.mp3",
		share.TransportURI("http://host/api/v8/audio/Test%2FSong.mp3"))

	clip := NewClient("http://127.0.0.1:5005", "192.168.0.6/mp3", StrategyClip, time.Second, nil)
	require.Equal(t, "http://host/clip.mp3", clip.TransportURI("http://host/clip.mp3"))
}

func TestParseClockDuration(t *testing.T) {
	cases := []struct {
		input   string
		seconds int
		ok      bool
	}{
		{"02:30", 150, true},
		{"0:02:30", 150, true},
		{"1:10:05", 4205, true},
		{"45", 0, false},
		{"1:2:3:4", 0, false},
		{"", 0, false},
		{"aa:bb", 0, false},
		{"0:00", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			seconds, ok := parseClockDuration(tc.input)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.seconds, seconds)
		})
	}
}
