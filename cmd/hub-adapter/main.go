package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/bridge"
	"iruka-hub/catalog"
	"iruka-hub/hubconfig"
	"iruka-hub/launcher"
	"iruka-hub/launchtoken"
	"iruka-hub/progress"
	"iruka-hub/protocol"
	"iruka-hub/security"
	"iruka-hub/telemetry"
	"iruka-hub/util"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer cancel()

	info := launcher.NewInfoFromFlags()
	if err := info.Validate(); err != nil {
		applog.Error("Failed to validate command line arguments", zap.Error(err))
		return
	}

	cfg, err := hubconfig.Parse()
	if err != nil {
		applog.Error("Failed to parse hub environment", zap.Error(err))
		return
	}

	if cfg.TokenSecret == "" {
		// A random per-process secret keeps local sessions working; real
		// deployments must configure IRUKA_TOKEN_SECRET.
		cfg.TokenSecret = uuid.NewString()
		applog.Warn("IRUKA_TOKEN_SECRET is not set, using an ephemeral secret")
	}

	gameCatalog, err := catalog.Load(info.CatalogPath)
	if err != nil {
		applog.Error("Failed to load game catalog", zap.Error(err))
		return
	}
	go func() {
		if watchErr := gameCatalog.Watch(ctx); watchErr != nil {
			applog.Warn("Catalog watching stopped", zap.Error(watchErr))
		}
	}()

	issuer := launchtoken.NewIssuer([]byte(cfg.TokenSecret))
	launch, err := catalog.NewLaunchContext(
		gameCatalog, issuer, info.GameID, info.PlayerID, info.Locale,
		catalog.LaunchOptions{Difficulty: info.Difficulty, Seed: info.Seed})
	if err != nil {
		applog.Error("Failed to create launch context", zap.Error(err))
		return
	}

	applog.Initialize(info.PlayerID, launch.SessionID, info.LogPath)
	defer applog.Shutdown()
	defer util.WrapAppContextCancelExitMessage(ctx, "Hub adapter")

	applog.LogStartup(info)

	manifest, _ := gameCatalog.Get(info.GameID)
	policy := bridge.SecurityPolicy{
		HubOrigin:      "http://" + cfg.ListenAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		DevMode:        cfg.DevMode,
	}

	wire := bridge.NewWireServer(policy)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(cspMiddleware(cfg))
	wire.Attach(e)

	go func() {
		if serveErr := e.Start(cfg.ListenAddr); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			applog.Error("Bridge endpoint server stopped", zap.Error(serveErr))
			cancel()
		}
	}()

	queue := telemetry.New(telemetry.Config{}, telemetry.NewHTTPSender(cfg.APIBase))
	progressClient := progress.NewClient(cfg.APIBase)

	gameBridge := bridge.New(bridge.Options{
		Manifest:     manifest,
		Launch:       launch,
		OnEvent:      func(ev protocol.Event) { logGameEvent(ev, cancel) },
		Telemetry:    queue,
		Progress:     progressClient,
		Wire:         wire,
		ReadyTimeout: info.ReadyTimeout,
	})

	applog.Info("Waiting for guest game",
		zap.String("gameId", manifest.ID),
		zap.String("runtime", manifest.Runtime),
		zap.String("bridgeUrl", "ws://"+cfg.ListenAddr+"/bridge/"+launch.SessionID),
	)

	if err = gameBridge.Mount(ctx); err != nil {
		applog.Error("Failed to mount game", zap.Error(err))
		gameBridge.Dispose()
		return
	}

	gameBridge.Start()

	<-ctx.Done()

	gameBridge.Quit()
	gameBridge.Dispose()

	// Telemetry gets a bounded grace window after the app context dies.
	grace := util.NewShutdownGrace(ctx, 5*time.Second)
	queue.Close(grace.Context())
	grace.Finish()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = e.Shutdown(shutdownCtx)
}

func cspMiddleware(cfg hubconfig.Config) echo.MiddlewareFunc {
	header := security.CSPHeader(cfg.AllowedOrigins, cfg.APIBase)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Content-Security-Policy", header)
			return next(c)
		}
	}
}

func logGameEvent(ev protocol.Event, quit func()) {
	switch e := ev.(type) {
	case *protocol.LoadingEvent:
		applog.Info("Game loading", zap.Float64("progress", e.Progress))
	case *protocol.ScoreUpdateEvent:
		applog.Info("Score updated", zap.Int64("score", e.Score), zap.Int64("delta", e.Delta))
	case *protocol.CompleteEvent:
		applog.Info("Game complete",
			zap.Int64("score", e.Score),
			zap.Int64("timeMs", e.TimeMs),
		)
		quit()
	case *protocol.ErrorEvent:
		applog.Warn("Game reported an error", zap.String("message", e.Message))
	default:
		applog.Debug("Game event", zap.String("type", ev.GetEventType()))
	}
}
