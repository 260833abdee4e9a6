package protocol

import "encoding/json"

// TelemetryGameEvent carries a game-authored telemetry payload. The hub tags
// it with session metadata and hands it to the telemetry queue; it is the
// only event kind that reaches the queue.
type TelemetryGameEvent struct {
	Payload json.RawMessage
}

func NewTelemetryGameEvent(payload json.RawMessage) Event {
	return &TelemetryGameEvent{
		Payload: payload,
	}
}

func (e *TelemetryGameEvent) GetEventType() EventType {
	return EventTypeTelemetry
}

func (e *TelemetryGameEvent) GetPayload() (json.RawMessage, error) {
	return e.Payload, nil
}

func buildTelemetryEvent(payload json.RawMessage) (Event, error) {
	return &TelemetryGameEvent{Payload: payload}, nil
}
