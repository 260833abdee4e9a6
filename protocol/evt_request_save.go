package protocol

import "encoding/json"

// RequestSaveEvent asks the hub to persist an opaque state blob through the
// progress store.
type RequestSaveEvent struct {
	Data json.RawMessage
}

func NewRequestSaveEvent(data json.RawMessage) Event {
	return &RequestSaveEvent{
		Data: data,
	}
}

func (e *RequestSaveEvent) GetEventType() EventType {
	return EventTypeRequestSave
}

func (e *RequestSaveEvent) GetPayload() (json.RawMessage, error) {
	return e.Data, nil
}

func buildRequestSaveEvent(payload json.RawMessage) (Event, error) {
	return &RequestSaveEvent{Data: payload}, nil
}
