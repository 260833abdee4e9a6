package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire format for every cross-endpoint message.
// Inbound envelopes whose Source does not match the expected opposite
// endpoint are dropped by the receiving side, never answered.
type Envelope struct {
	SDKVersion string          `json:"sdkVersion"`
	Source     Source          `json:"source"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func NewCommandEnvelope(cmd Command) (Envelope, error) {
	payload, err := cmd.GetPayload()
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceHub,
		Type:       cmd.GetType(),
		Payload:    payload,
	}, nil
}

func NewEventEnvelope(ev Event) (Envelope, error) {
	payload, err := ev.GetPayload()
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		SDKVersion: SDKVersion,
		Source:     SourceGame,
		Type:       ev.GetEventType(),
		Payload:    payload,
	}, nil
}

func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse envelope: %v", err)
	}
	return env, nil
}

// IsWellFormed reports whether the envelope carries the minimum shape the
// receiving side requires before it is worth decoding the payload.
func (e Envelope) IsWellFormed(expectedSource Source) bool {
	return e.Source == expectedSource && e.Type != ""
}
