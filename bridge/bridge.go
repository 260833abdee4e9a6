// Package bridge mediates the entire lifecycle of one embedded game:
// mounting, bidirectional protocol relay, security enforcement and teardown,
// behind a transport-agnostic interface.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/catalog"
	"iruka-hub/progress"
	"iruka-hub/protocol"
	"iruka-hub/security"
	"iruka-hub/telemetry"
)

const DefaultReadyTimeout = 3 * time.Second

type Options struct {
	Manifest catalog.Manifest
	Launch   protocol.LaunchContext

	// OnEvent receives every decoded game event, in arrival order,
	// regardless of transport.
	OnEvent func(protocol.Event)

	Telemetry *telemetry.Queue
	Progress  *progress.Client

	// Wire is required for wire-runtime manifests.
	Wire *WireServer

	ReadyTimeout time.Duration
}

// GameBridge owns at most one active game instance. Exactly one transport
// is selected at Mount time from the manifest runtime and never changes.
type GameBridge struct {
	opts         Options
	readyTimeout time.Duration

	readyCh    chan struct{}
	disposedCh chan struct{}

	mu        sync.Mutex
	transport Transport
	guest     GuestInstance
	cleanups  []func()
	mounted   bool
	disposed  bool
	ready     bool
	started   bool
}

func New(opts Options) *GameBridge {
	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	return &GameBridge{
		opts:         opts,
		readyTimeout: timeout,
		readyCh:      make(chan struct{}),
		disposedCh:   make(chan struct{}),
	}
}

// Mount selects the transport for the manifest runtime and blocks until the
// guest reports READY or the ready timeout elapses. It may be called once
// per bridge.
func (b *GameBridge) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return fmt.Errorf("bridge is disposed")
	}
	if b.mounted {
		b.mu.Unlock()
		return fmt.Errorf("bridge is already mounted")
	}
	b.mounted = true
	b.mu.Unlock()

	if security.IsTokenExpired(b.opts.Launch.ExpiresAt) {
		applog.Warn("Mounting with an expired launch token, guest API calls will be rejected",
			zap.String("sessionId", b.opts.Launch.SessionID),
		)
	}

	transport, err := b.openTransport(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		_ = transport.Close()
		return fmt.Errorf("bridge was disposed during mount")
	}
	b.transport = transport
	b.cleanups = append(b.cleanups, func() {
		_ = transport.Close()
	})
	b.mu.Unlock()

	go b.eventPump(transport)
	if b.opts.Manifest.Runtime == catalog.RuntimeWire {
		go b.sendInitWhenConnected(transport)
	}

	timer := time.NewTimer(b.readyTimeout)
	defer timer.Stop()

	select {
	case <-b.readyCh:
		return nil
	case <-timer.C:
		return fmt.Errorf("guest did not report READY within %v", b.readyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *GameBridge) openTransport(ctx context.Context) (Transport, error) {
	manifest := b.opts.Manifest

	switch manifest.Runtime {
	case catalog.RuntimeWire:
		if b.opts.Wire == nil {
			return nil, fmt.Errorf("wire runtime requires a wire server")
		}
		return b.opts.Wire.Expect(b.opts.Launch.SessionID, manifest.EntryURL)

	case catalog.RuntimeModule:
		init, err := lookupGuestModule(manifest.EntryURL)
		if err != nil {
			return nil, err
		}
		guest, err := init(ctx, b.opts.Launch, b.Host())
		if err != nil {
			return nil, fmt.Errorf("guest module init failed: %v", err)
		}
		if guest == nil {
			return nil, fmt.Errorf("guest module %q returned no instance", manifest.EntryURL)
		}
		b.mu.Lock()
		b.guest = guest
		b.mu.Unlock()
		return newModuleTransport(guest), nil

	default:
		return nil, fmt.Errorf("unrecognized game runtime %q", manifest.Runtime)
	}
}

func (b *GameBridge) sendInitWhenConnected(t Transport) {
	select {
	case <-t.Connected():
		b.Post(protocol.NewInitCommand(b.opts.Launch))
	case <-b.disposedCh:
	}
}

func (b *GameBridge) eventPump(t Transport) {
	for env := range t.Events() {
		ev, err := protocol.ParseEvent(env)
		if err != nil {
			applog.Warn("Dropping malformed game event",
				zap.String("sessionId", b.opts.Launch.SessionID),
				zap.String("type", env.Type),
				zap.Error(err),
			)
			continue
		}

		b.serveWireRequest(ev)
		b.handleGameEvent(ev)
	}
}

// serveWireRequest performs the progress round-trips on behalf of wire
// guests, which cannot call the host API directly. Loaded state is answered
// with a SET_STATE command; failures are logged and otherwise dropped, the
// guest gets no synthetic error event.
func (b *GameBridge) serveWireRequest(ev protocol.Event) {
	if b.opts.Progress == nil {
		return
	}

	launch := b.opts.Launch

	switch e := ev.(type) {
	case *protocol.RequestSaveEvent:
		if err := b.opts.Progress.Save(context.Background(), launch.GameID, launch.SessionID, e.Data); err != nil {
			applog.Error("Saving progress for wire guest failed",
				zap.String("sessionId", launch.SessionID),
				zap.Error(err),
			)
		}
	case *protocol.RequestLoadEvent:
		saved, err := b.opts.Progress.Load(context.Background(), launch.GameID, launch.SessionID)
		if err != nil {
			applog.Error("Loading progress for wire guest failed",
				zap.String("sessionId", launch.SessionID),
				zap.Error(err),
			)
			return
		}
		if saved != nil {
			b.Post(protocol.NewSetStateCommand(saved.Data))
		}
	}
}

// handleGameEvent is the single funnel every game event passes through,
// regardless of transport: it latches the ready flag, forwards telemetry to
// the queue and invokes the caller's event callback.
func (b *GameBridge) handleGameEvent(ev protocol.Event) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	if ev.GetEventType() == protocol.EventTypeReady && !b.ready {
		b.ready = true
		close(b.readyCh)
	}
	onEvent := b.opts.OnEvent
	b.mu.Unlock()

	if telemetryEv, ok := ev.(*protocol.TelemetryGameEvent); ok && b.opts.Telemetry != nil {
		b.opts.Telemetry.Push(protocol.TelemetryEvent{
			T:       time.Now().UnixMilli(),
			Sid:     b.opts.Launch.SessionID,
			Gid:     b.opts.Launch.GameID,
			Ver:     b.opts.Manifest.Version,
			Evt:     ev.GetEventType(),
			Payload: telemetryEv.Payload,
		})
	}

	if onEvent != nil {
		onEvent(ev)
	}
}

// Post delivers a command to the active transport. Fire and forget: without
// a mounted transport it is a no-op, and delivery failures are logged, not
// returned.
func (b *GameBridge) Post(cmd protocol.Command) {
	b.mu.Lock()
	transport := b.transport
	disposed := b.disposed
	b.mu.Unlock()

	if transport == nil || disposed {
		applog.Debug("Dropping command, no transport mounted",
			zap.String("command", cmd.GetType()),
		)
		return
	}

	env, err := protocol.NewCommandEnvelope(cmd)
	if err != nil {
		applog.Error("Failed to encode command",
			zap.String("command", cmd.GetType()),
			zap.Error(err),
		)
		return
	}

	if err = transport.Send(env); err != nil {
		applog.Error("Failed to deliver command to guest",
			zap.String("command", cmd.GetType()),
			zap.String("sessionId", b.opts.Launch.SessionID),
			zap.Error(err),
		)
	}
}

// Start sends START. The guest is expected to have reported READY first;
// starting earlier is allowed but logged, and the protocol does not
// guarantee the guest actually begins.
func (b *GameBridge) Start() {
	if !b.IsReady() {
		applog.Warn("Starting game before guest reported READY",
			zap.String("sessionId", b.opts.Launch.SessionID),
		)
	}

	b.Post(protocol.NewStartCommand())

	b.mu.Lock()
	b.started = true
	b.mu.Unlock()
}

func (b *GameBridge) Pause() {
	b.Post(protocol.NewPauseCommand())
}

func (b *GameBridge) Resume() {
	b.Post(protocol.NewResumeCommand())
}

func (b *GameBridge) Quit() {
	b.Post(protocol.NewQuitCommand())
}

func (b *GameBridge) Resize(width int, height int, dpr float64) {
	b.Post(protocol.NewResizeCommand(width, height, dpr))
}

// Dispose tears the bridge down: cleanup callbacks run in registration
// order, the guest's Destroy is invoked with panics contained, and the
// protocol flags reset. Safe to call at any point in the lifecycle,
// including mid-mount, and safe to call twice.
func (b *GameBridge) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	cleanups := b.cleanups
	b.cleanups = nil
	guest := b.guest
	b.guest = nil
	b.transport = nil
	b.ready = false
	b.started = false
	close(b.disposedCh)
	b.mu.Unlock()

	for _, cleanup := range cleanups {
		cleanup()
	}

	if guest != nil {
		b.destroyGuest(guest)
	}
}

func (b *GameBridge) destroyGuest(guest GuestInstance) {
	defer func() {
		if r := recover(); r != nil {
			applog.Error("Guest destroy panicked",
				zap.String("sessionId", b.opts.Launch.SessionID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := guest.Destroy(); err != nil {
		applog.Error("Guest destroy failed",
			zap.String("sessionId", b.opts.Launch.SessionID),
			zap.Error(err),
		)
	}
}

func (b *GameBridge) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *GameBridge) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}
