package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/protocol"
)

// HostAPI is the handle a module-runtime guest uses to talk to the hub.
// Every method synthesizes the matching game event into the bridge's event
// funnel, so module guests and wire guests present an identical event stream
// to the UI layer. RequestSave and RequestLoad additionally perform the real
// progress round-trip and are the only methods that can fail.
type HostAPI struct {
	bridge *GameBridge
}

// Host returns the bridge's guest-facing API.
func (b *GameBridge) Host() *HostAPI {
	return &HostAPI{bridge: b}
}

// Send funnels an arbitrary game event into the bridge.
func (h *HostAPI) Send(ev protocol.Event) {
	h.bridge.handleGameEvent(ev)
}

func (h *HostAPI) Ready() {
	h.Send(protocol.NewReadyEvent())
}

func (h *HostAPI) Loading(progress float64) {
	h.Send(protocol.NewLoadingEvent(progress))
}

func (h *HostAPI) ReportScore(score int64, delta int64) {
	h.Send(protocol.NewScoreUpdateEvent(score, delta))
}

func (h *HostAPI) ReportProgress(state json.RawMessage) {
	h.Send(protocol.NewProgressEvent(state))
}

func (h *HostAPI) Complete(score int64, timeMs int64, extras json.RawMessage) {
	h.Send(protocol.NewCompleteEvent(score, timeMs, extras))
}

func (h *HostAPI) Error(message string, detail json.RawMessage) {
	h.Send(protocol.NewErrorEvent(message, detail))
}

func (h *HostAPI) Telemetry(payload json.RawMessage) {
	h.Send(protocol.NewTelemetryGameEvent(payload))
}

// RequestSave persists a state blob through the progress store. Failures
// are logged and propagated to the calling guest; the bridge does not retry.
func (h *HostAPI) RequestSave(ctx context.Context, data json.RawMessage) error {
	h.Send(protocol.NewRequestSaveEvent(data))

	if h.bridge.opts.Progress == nil {
		return fmt.Errorf("no progress store configured")
	}

	launch := h.bridge.opts.Launch
	if err := h.bridge.opts.Progress.Save(ctx, launch.GameID, launch.SessionID, data); err != nil {
		applog.Error("Saving guest progress failed",
			zap.String("sessionId", launch.SessionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// RequestLoad fetches previously saved state. Returns nil without error
// when nothing was saved yet.
func (h *HostAPI) RequestLoad(ctx context.Context) (json.RawMessage, error) {
	h.Send(protocol.NewRequestLoadEvent())

	if h.bridge.opts.Progress == nil {
		return nil, fmt.Errorf("no progress store configured")
	}

	launch := h.bridge.opts.Launch
	saved, err := h.bridge.opts.Progress.Load(ctx, launch.GameID, launch.SessionID)
	if err != nil {
		applog.Error("Loading guest progress failed",
			zap.String("sessionId", launch.SessionID),
			zap.Error(err),
		)
		return nil, err
	}
	if saved == nil {
		return nil, nil
	}
	return saved.Data, nil
}
