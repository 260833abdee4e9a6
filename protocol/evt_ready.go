package protocol

import "encoding/json"

// ReadyEvent and RequestLoadEvent are the payload-free game events.

type ReadyEvent struct{}

func NewReadyEvent() Event { return &ReadyEvent{} }

func (e *ReadyEvent) GetEventType() EventType {
	return EventTypeReady
}

func (e *ReadyEvent) GetPayload() (json.RawMessage, error) {
	return nil, nil
}

func buildReadyEvent(_ json.RawMessage) (Event, error) {
	return &ReadyEvent{}, nil
}

type RequestLoadEvent struct{}

func NewRequestLoadEvent() Event { return &RequestLoadEvent{} }

func (e *RequestLoadEvent) GetEventType() EventType {
	return EventTypeRequestLoad
}

func (e *RequestLoadEvent) GetPayload() (json.RawMessage, error) {
	return nil, nil
}

func buildRequestLoadEvent(_ json.RawMessage) (Event, error) {
	return &RequestLoadEvent{}, nil
}
