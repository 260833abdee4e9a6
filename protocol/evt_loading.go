package protocol

import (
	"encoding/json"
	"fmt"
)

type LoadingEvent struct {
	Progress float64 `json:"progress"`
}

func NewLoadingEvent(progress float64) Event {
	return &LoadingEvent{
		Progress: progress,
	}
}

func (e *LoadingEvent) GetEventType() EventType {
	return EventTypeLoading
}

func (e *LoadingEvent) GetPayload() (json.RawMessage, error) {
	return marshalPayload(e)
}

func buildLoadingEvent(payload json.RawMessage) (Event, error) {
	var ev LoadingEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse LOADING payload: %v", err)
	}
	return &ev, nil
}
