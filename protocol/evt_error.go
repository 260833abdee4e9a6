package protocol

import (
	"encoding/json"
	"fmt"
)

type ErrorEvent struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

func NewErrorEvent(message string, detail json.RawMessage) Event {
	return &ErrorEvent{
		Message: message,
		Detail:  detail,
	}
}

func (e *ErrorEvent) GetEventType() EventType {
	return EventTypeError
}

func (e *ErrorEvent) GetPayload() (json.RawMessage, error) {
	return marshalPayload(e)
}

func buildErrorEvent(payload json.RawMessage) (Event, error) {
	var ev ErrorEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse ERROR payload: %v", err)
	}

	if ev.Message == "" {
		return nil, fmt.Errorf("ERROR payload is missing a message")
	}

	return &ev, nil
}
