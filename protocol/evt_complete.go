package protocol

import (
	"encoding/json"
	"fmt"
)

// CompleteEvent ends the gameplay phase of a session. Score and progress
// events after it are unexpected but not rejected.
type CompleteEvent struct {
	Score  int64           `json:"score"`
	TimeMs int64           `json:"timeMs"`
	Extras json.RawMessage `json:"extras,omitempty"`
}

func NewCompleteEvent(score int64, timeMs int64, extras json.RawMessage) Event {
	return &CompleteEvent{
		Score:  score,
		TimeMs: timeMs,
		Extras: extras,
	}
}

func (e *CompleteEvent) GetEventType() EventType {
	return EventTypeComplete
}

func (e *CompleteEvent) GetPayload() (json.RawMessage, error) {
	return marshalPayload(e)
}

func buildCompleteEvent(payload json.RawMessage) (Event, error) {
	var ev CompleteEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse COMPLETE payload: %v", err)
	}
	return &ev, nil
}
