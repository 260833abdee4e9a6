package protocol

import "encoding/json"

// ProgressEvent carries opaque game progress state. The hub relays it to the
// UI callback without interpreting it.
type ProgressEvent struct {
	State json.RawMessage
}

func NewProgressEvent(state json.RawMessage) Event {
	return &ProgressEvent{
		State: state,
	}
}

func (e *ProgressEvent) GetEventType() EventType {
	return EventTypeProgress
}

func (e *ProgressEvent) GetPayload() (json.RawMessage, error) {
	return e.State, nil
}

func buildProgressEvent(payload json.RawMessage) (Event, error) {
	return &ProgressEvent{State: payload}, nil
}
