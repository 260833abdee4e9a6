// Package guestsdk is the guest-side mirror of the hub bridge: the method
// set a game uses to talk back to the hub, over the WebSocket wire or over
// a raw envelope channel for test and demo harnesses.
package guestsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/protocol"
)

type WireGuestOptions struct {
	// HubURL is the bridge endpoint, e.g. ws://127.0.0.1:9300/bridge/<session>.
	HubURL string
	// Origin is presented on the WebSocket handshake.
	Origin string
	// ExpectedHubOrigin pins the hub the guest is willing to talk to.
	// "*" disables the check, mirroring the permissive fallback a sandboxed
	// guest needs when it cannot learn its parent's origin.
	ExpectedHubOrigin string
	// OnCommand receives every decoded hub command.
	OnCommand func(cmd protocol.Command)
}

// WireGuest is a connected guest endpoint. It validates that inbound frames
// really come from the hub and drops everything else without signal,
// symmetric to the hub-side boundary.
type WireGuest struct {
	opts WireGuestOptions
	conn *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	launch *protocol.LaunchContext
	closed bool

	done chan struct{}
}

func Dial(ctx context.Context, opts WireGuestOptions) (*WireGuest, error) {
	if opts.ExpectedHubOrigin != "" && opts.ExpectedHubOrigin != "*" {
		hubOrigin, err := wsOrigin(opts.HubURL)
		if err != nil {
			return nil, err
		}
		if hubOrigin != opts.ExpectedHubOrigin {
			return nil, fmt.Errorf(
				"refusing to connect: hub origin %q does not match expected %q",
				hubOrigin, opts.ExpectedHubOrigin)
		}
	}

	header := http.Header{}
	if opts.Origin != "" {
		header.Set("Origin", opts.Origin)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, opts.HubURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to hub (%s): %v", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to connect to hub: %v", err)
	}

	g := &WireGuest{
		opts: opts,
		conn: conn,
		done: make(chan struct{}),
	}

	go g.readPump()
	return g, nil
}

func wsOrigin(hubURL string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse hub url: %v", err)
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host, nil
}

func (g *WireGuest) readPump() {
	defer close(g.done)

	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			g.mu.Lock()
			closed := g.closed
			g.mu.Unlock()
			if !closed {
				applog.Debug("Hub connection closed", zap.Error(err))
			}
			return
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			applog.Warn("Dropping unparsable hub frame", zap.Error(err))
			continue
		}

		if !env.IsWellFormed(protocol.SourceHub) {
			applog.Warn("Dropping hub frame with unexpected source",
				zap.String("source", env.Source),
				zap.String("type", env.Type),
			)
			continue
		}

		cmd, err := protocol.ParseCommand(env)
		if err != nil {
			applog.Warn("Dropping malformed hub command",
				zap.String("type", env.Type),
				zap.Error(err),
			)
			continue
		}

		if initCmd, ok := cmd.(*protocol.InitCommand); ok {
			g.mu.Lock()
			launch := initCmd.Context
			g.launch = &launch
			g.mu.Unlock()
		}

		if g.opts.OnCommand != nil {
			g.opts.OnCommand(cmd)
		}
	}
}

// LaunchContext returns the session descriptor received with INIT, or nil
// before INIT arrived.
func (g *WireGuest) LaunchContext() *protocol.LaunchContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.launch
}

// Done is closed when the hub connection ends.
func (g *WireGuest) Done() <-chan struct{} {
	return g.done
}

func (g *WireGuest) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return g.conn.Close()
}

func (g *WireGuest) emit(ev protocol.Event) error {
	env, err := protocol.NewEventEnvelope(ev)
	if err != nil {
		return err
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return g.conn.WriteJSON(env)
}

func (g *WireGuest) Ready() error {
	return g.emit(protocol.NewReadyEvent())
}

func (g *WireGuest) Loading(progress float64) error {
	return g.emit(protocol.NewLoadingEvent(progress))
}

func (g *WireGuest) ReportScore(score int64, delta int64) error {
	return g.emit(protocol.NewScoreUpdateEvent(score, delta))
}

func (g *WireGuest) ReportProgress(state json.RawMessage) error {
	return g.emit(protocol.NewProgressEvent(state))
}

func (g *WireGuest) Complete(score int64, timeMs int64, extras json.RawMessage) error {
	return g.emit(protocol.NewCompleteEvent(score, timeMs, extras))
}

func (g *WireGuest) Error(message string, detail json.RawMessage) error {
	return g.emit(protocol.NewErrorEvent(message, detail))
}

// RequestSave asks the hub to persist state. The wire guest does not learn
// whether the save succeeded; the hub logs failures on its side.
func (g *WireGuest) RequestSave(data json.RawMessage) error {
	return g.emit(protocol.NewRequestSaveEvent(data))
}

// RequestLoad asks the hub for saved state. If any exists, the hub answers
// with a SET_STATE command.
func (g *WireGuest) RequestLoad() error {
	return g.emit(protocol.NewRequestLoadEvent())
}

func (g *WireGuest) Telemetry(payload json.RawMessage) error {
	return g.emit(protocol.NewTelemetryGameEvent(payload))
}
