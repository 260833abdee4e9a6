package protocol

import (
	"encoding/json"
	"fmt"
)

type ScoreUpdateEvent struct {
	Score int64 `json:"score"`
	Delta int64 `json:"delta,omitempty"`
}

func NewScoreUpdateEvent(score int64, delta int64) Event {
	return &ScoreUpdateEvent{
		Score: score,
		Delta: delta,
	}
}

func (e *ScoreUpdateEvent) GetEventType() EventType {
	return EventTypeScoreUpdate
}

func (e *ScoreUpdateEvent) GetPayload() (json.RawMessage, error) {
	return marshalPayload(e)
}

func buildScoreUpdateEvent(payload json.RawMessage) (Event, error) {
	var ev ScoreUpdateEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse SCORE_UPDATE payload: %v", err)
	}
	return &ev, nil
}
