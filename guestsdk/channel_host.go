package guestsdk

import (
	"encoding/json"

	"iruka-hub/protocol"
)

// ChannelHost emits game events onto a raw envelope channel. It exists for
// harnesses that exercise the protocol without a WebSocket in the middle.
type ChannelHost struct {
	out chan<- protocol.Envelope
}

func NewChannelHost(out chan<- protocol.Envelope) *ChannelHost {
	return &ChannelHost{out: out}
}

func (h *ChannelHost) emit(ev protocol.Event) error {
	env, err := protocol.NewEventEnvelope(ev)
	if err != nil {
		return err
	}
	h.out <- env
	return nil
}

func (h *ChannelHost) Ready() error {
	return h.emit(protocol.NewReadyEvent())
}

func (h *ChannelHost) Loading(progress float64) error {
	return h.emit(protocol.NewLoadingEvent(progress))
}

func (h *ChannelHost) ReportScore(score int64, delta int64) error {
	return h.emit(protocol.NewScoreUpdateEvent(score, delta))
}

func (h *ChannelHost) ReportProgress(state json.RawMessage) error {
	return h.emit(protocol.NewProgressEvent(state))
}

func (h *ChannelHost) Complete(score int64, timeMs int64, extras json.RawMessage) error {
	return h.emit(protocol.NewCompleteEvent(score, timeMs, extras))
}

func (h *ChannelHost) Error(message string, detail json.RawMessage) error {
	return h.emit(protocol.NewErrorEvent(message, detail))
}

func (h *ChannelHost) Telemetry(payload json.RawMessage) error {
	return h.emit(protocol.NewTelemetryGameEvent(payload))
}
