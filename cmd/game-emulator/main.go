// Command game-emulator is a scripted guest game used to exercise a running
// hub adapter end to end: it connects to the bridge endpoint, reports READY,
// then plays a short deterministic session.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/guestsdk"
	"iruka-hub/protocol"
	"iruka-hub/util"
)

type emulatedGame struct {
	guest *guestsdk.WireGuest
	quit  context.CancelFunc

	mu      sync.Mutex
	playing bool
	score   int64
	started time.Time
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer cancel()
	defer util.WrapAppContextCancelExitMessage(ctx, "Game emulator")

	hubURL := flag.String(
		"hub-url", "", "Bridge endpoint of the hub adapter, e.g. ws://127.0.0.1:9300/bridge/<session>")
	origin := flag.String(
		"origin", "https://games.example.com", "Origin presented on the WebSocket handshake")
	expectedHub := flag.String(
		"expected-hub-origin", "*", "Hub origin the emulator is willing to talk to, or * to skip the check")
	rounds := flag.Int(
		"rounds", 5, "How many scoring rounds to play before completing")
	flag.Parse()

	if *hubURL == "" {
		applog.Fatal("--hub-url is required and cannot be empty")
	}

	game := &emulatedGame{quit: cancel}

	guest, err := guestsdk.Dial(ctx, guestsdk.WireGuestOptions{
		HubURL:            *hubURL,
		Origin:            *origin,
		ExpectedHubOrigin: *expectedHub,
		OnCommand: func(cmd protocol.Command) {
			game.onCommand(ctx, cmd, *rounds)
		},
	})
	if err != nil {
		applog.Fatal("Failed to connect to hub", zap.Error(err))
	}
	game.guest = guest
	defer func() {
		_ = guest.Close()
	}()

	// Pretend to load assets before declaring readiness.
	for _, step := range []float64{0.25, 0.6, 1.0} {
		if err = guest.Loading(step); err != nil {
			applog.Fatal("Failed to report loading progress", zap.Error(err))
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err = guest.Ready(); err != nil {
		applog.Fatal("Failed to report readiness", zap.Error(err))
	}
	applog.Info("Reported READY, waiting for hub commands")

	select {
	case <-ctx.Done():
	case <-guest.Done():
		applog.Info("Hub closed the connection")
	}
}

func (g *emulatedGame) onCommand(ctx context.Context, cmd protocol.Command, rounds int) {
	switch c := cmd.(type) {
	case *protocol.InitCommand:
		applog.Info("Session initialized",
			zap.String("gameId", c.Context.GameID),
			zap.String("sessionId", c.Context.SessionID),
			zap.String("locale", c.Context.Locale),
			zap.Int64("seed", c.Context.Seed),
		)
		// Ask for any previously saved state; the hub answers with SET_STATE.
		if err := g.guest.RequestLoad(); err != nil {
			applog.Warn("Failed to request saved state", zap.Error(err))
		}
	case *protocol.LifecycleCommand:
		g.onLifecycle(ctx, c, rounds)
	case *protocol.SetStateCommand:
		applog.Info("Restored saved state", zap.Int("bytes", len(c.State)))
	case *protocol.ResizeCommand:
		applog.Info("Viewport resized",
			zap.Int("width", c.Width),
			zap.Int("height", c.Height),
			zap.Float64("dpr", c.Dpr),
		)
	default:
		applog.Debug("Ignoring hub command", zap.String("type", string(cmd.GetType())))
	}
}

func (g *emulatedGame) onLifecycle(ctx context.Context, cmd *protocol.LifecycleCommand, rounds int) {
	switch cmd.GetType() {
	case protocol.CommandTypeStart:
		g.mu.Lock()
		alreadyPlaying := g.playing
		if !alreadyPlaying {
			g.playing = true
			g.started = time.Now()
		}
		g.mu.Unlock()
		if alreadyPlaying {
			applog.Warn("Ignoring duplicate START")
			return
		}
		go g.play(ctx, rounds)
	case protocol.CommandTypePause:
		g.setPlaying(false)
		applog.Info("Paused")
	case protocol.CommandTypeResume:
		g.setPlaying(true)
		applog.Info("Resumed")
	case protocol.CommandTypeQuit:
		applog.Info("Hub requested quit")
		g.quit()
	}
}

func (g *emulatedGame) setPlaying(playing bool) {
	g.mu.Lock()
	g.playing = playing
	g.mu.Unlock()
}

// play runs the scripted session: a score tick per round, a telemetry event
// per tick, one save request halfway through, then COMPLETE.
func (g *emulatedGame) play(ctx context.Context, rounds int) {
	applog.Info("Game started", zap.Int("rounds", rounds))

	for round := 1; round <= rounds; round++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		g.mu.Lock()
		paused := !g.playing
		g.mu.Unlock()
		if paused {
			round--
			continue
		}

		delta := int64(10 + rand.Intn(40))
		g.mu.Lock()
		g.score += delta
		score := g.score
		g.mu.Unlock()

		if err := g.guest.ReportScore(score, delta); err != nil {
			applog.Warn("Failed to report score", zap.Error(err))
		}

		payload, _ := json.Marshal(map[string]any{
			"round": round,
			"score": score,
		})
		if err := g.guest.Telemetry(payload); err != nil {
			applog.Warn("Failed to send telemetry", zap.Error(err))
		}

		if round == rounds/2 {
			state, _ := json.Marshal(map[string]any{
				"checkpoint": fmt.Sprintf("round-%d", round),
				"score":      score,
			})
			if err := g.guest.RequestSave(state); err != nil {
				applog.Warn("Failed to request save", zap.Error(err))
			}
		}
	}

	g.mu.Lock()
	score := g.score
	elapsed := time.Since(g.started).Milliseconds()
	g.mu.Unlock()

	if err := g.guest.Complete(score, elapsed, nil); err != nil {
		applog.Warn("Failed to report completion", zap.Error(err))
	}
	applog.Info("Session complete", zap.Int64("score", score), zap.Int64("timeMs", elapsed))
}
