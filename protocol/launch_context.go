package protocol

import "encoding/json"

// SizeHint carries the preferred stage dimensions for a game.
type SizeHint struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Dpr    float64 `json:"dpr,omitempty"`
}

// LaunchContext is the capability-scoped session descriptor handed to the
// game with the INIT command. Created once per play session, never mutated.
// The launch token is a short-lived bearer credential scoped to one game;
// the bridge never refreshes it.
type LaunchContext struct {
	SDKVersion  string    `json:"sdkVersion"`
	PlayerID    string    `json:"playerId"`
	SessionID   string    `json:"sessionId"`
	GameID      string    `json:"gameId"`
	Locale      string    `json:"locale"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Seed        int64     `json:"seed,omitempty"`
	LaunchToken string    `json:"launchToken"`
	ExpiresAt   int64     `json:"expiresAt"` // unix millis
	SizeHint    *SizeHint `json:"sizeHint,omitempty"`
}

// TelemetryEvent is the delivery record the hub batches towards the
// telemetry endpoint. No persistence guarantee across process restarts.
type TelemetryEvent struct {
	T       int64           `json:"t"` // unix millis
	Sid     string          `json:"sid"`
	Gid     string          `json:"gid"`
	Ver     string          `json:"ver"`
	Evt     string          `json:"evt"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
