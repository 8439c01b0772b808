package db

// schemaSQL creates the playback history table. Speaker state itself is
// never persisted; each row is one play attempt submitted to the control API.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS play_history (
	event_id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	speaker_id TEXT NOT NULL,
	track_url TEXT NOT NULL,
	transport_uri TEXT NOT NULL,
	strategy TEXT NOT NULL,
	success INTEGER NOT NULL,
	message TEXT NOT NULL,
	request_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_play_history_timestamp ON play_history(timestamp);
CREATE INDEX IF NOT EXISTS idx_play_history_speaker ON play_history(speaker_id, timestamp);
`
