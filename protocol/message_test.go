package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRoundTrip_InitCommand writes an INIT command into an envelope, re-parses
// the envelope from JSON bytes and makes sure the typed command carries the
// same launch context on the other side.
func TestRoundTrip_InitCommand(t *testing.T) {
	launch := LaunchContext{
		SDKVersion: SDKVersion,
		PlayerID:   "player-1",
		SessionID:  "session-1",
		GameID:     "math-blaster",
		Locale:     "en",
		Seed:       42,
	}

	env, err := NewCommandEnvelope(NewInitCommand(launch))
	assert.NoError(t, err, "NewCommandEnvelope failed")
	assert.Equal(t, SourceHub, env.Source)
	assert.Equal(t, CommandTypeInit, env.Type)

	data, err := json.Marshal(env)
	assert.NoError(t, err, "envelope marshal failed")

	reparsed, err := ParseEnvelope(data)
	assert.NoError(t, err, "ParseEnvelope failed")
	assert.True(t, reparsed.IsWellFormed(SourceHub))

	cmd, err := ParseCommand(reparsed)
	assert.NoError(t, err, "ParseCommand failed")

	initCmd, ok := cmd.(*InitCommand)
	assert.True(t, ok, "expected *InitCommand, got %T", cmd)
	assert.Equal(t, launch.SessionID, initCmd.Context.SessionID)
	assert.Equal(t, launch.GameID, initCmd.Context.GameID)
	assert.Equal(t, launch.Seed, initCmd.Context.Seed)
}

func TestRoundTrip_ScoreUpdateEvent(t *testing.T) {
	env, err := NewEventEnvelope(NewScoreUpdateEvent(120, 20))
	assert.NoError(t, err, "NewEventEnvelope failed")
	assert.Equal(t, SourceGame, env.Source)

	data, err := json.Marshal(env)
	assert.NoError(t, err)

	reparsed, err := ParseEnvelope(data)
	assert.NoError(t, err)

	ev, err := ParseEvent(reparsed)
	assert.NoError(t, err, "ParseEvent failed")

	score, ok := ev.(*ScoreUpdateEvent)
	assert.True(t, ok, "expected *ScoreUpdateEvent, got %T", ev)
	assert.Equal(t, int64(120), score.Score)
	assert.Equal(t, int64(20), score.Delta)
}

func TestParseCommand_UnknownType(t *testing.T) {
	_, err := ParseCommand(Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceHub,
		Type:       "SELF_DESTRUCT",
	})
	assert.EqualError(t, err, "unknown command type: SELF_DESTRUCT")
}

func TestParseEvent_UnknownType(t *testing.T) {
	_, err := ParseEvent(Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceGame,
		Type:       "MYSTERY",
	})
	assert.EqualError(t, err, "unknown event type: MYSTERY")
}

// TestParseCommand_InitRequiresSession makes sure a structurally valid INIT
// without a session identifier is rejected at decode time instead of
// producing a half-initialized session later.
func TestParseCommand_InitRequiresSession(t *testing.T) {
	payload, err := json.Marshal(LaunchContext{GameID: "math-blaster"})
	assert.NoError(t, err)

	_, err = ParseCommand(Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceHub,
		Type:       CommandTypeInit,
		Payload:    payload,
	})
	assert.Error(t, err, "INIT without sessionId should not parse")
}

func TestParseCommand_ResizeRejectsNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, -1}} {
		payload, err := json.Marshal(map[string]int{
			"width":  dims[0],
			"height": dims[1],
		})
		assert.NoError(t, err)

		_, err = ParseCommand(Envelope{
			SDKVersion: SDKVersion,
			Source:     SourceHub,
			Type:       CommandTypeResize,
			Payload:    payload,
		})
		if err == nil {
			t.Errorf("RESIZE with dimensions %dx%d should not parse", dims[0], dims[1])
		}
	}
}

func TestParseEvent_ErrorRequiresMessage(t *testing.T) {
	_, err := ParseEvent(Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceGame,
		Type:       EventTypeError,
		Payload:    json.RawMessage(`{}`),
	})
	assert.Error(t, err, "ERROR event without a message should not parse")
}

func TestEnvelope_IsWellFormed(t *testing.T) {
	env := Envelope{SDKVersion: SDKVersion, Source: SourceGame, Type: EventTypeReady}
	assert.True(t, env.IsWellFormed(SourceGame))
	assert.False(t, env.IsWellFormed(SourceHub), "game envelope must not pass as hub")

	env.Type = ""
	assert.False(t, env.IsWellFormed(SourceGame), "typeless envelope must not pass")
}

// TestLifecycleCommands_CarryNoPayload pins down that lifecycle commands stay
// payload-free on the wire; guests key purely off the type.
func TestLifecycleCommands_CarryNoPayload(t *testing.T) {
	for _, cmd := range []Command{
		NewStartCommand(),
		NewPauseCommand(),
		NewResumeCommand(),
		NewQuitCommand(),
	} {
		env, err := NewCommandEnvelope(cmd)
		assert.NoError(t, err)
		assert.Empty(t, env.Payload, "lifecycle command %s should carry no payload", env.Type)

		parsed, err := ParseCommand(env)
		assert.NoError(t, err)
		assert.Equal(t, cmd.GetType(), parsed.GetType())
	}
}
