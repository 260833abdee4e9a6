// Command hub-backend-emulator stands in for the hub backend during local
// development: it serves the progress save/load endpoints over a SQLite file
// and accepts telemetry batches, logging what arrives.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/protocol"
	"iruka-hub/util"
)

type saveRequest struct {
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type savedProgress struct {
	GameID    string          `json:"gameId"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type telemetryBatch struct {
	Events []protocol.TelemetryEvent `json:"events"`
}

type backend struct {
	store *progressStore
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer cancel()
	defer util.WrapAppContextCancelExitMessage(ctx, "Hub backend emulator")

	listenAddr := flag.String(
		"listen", "127.0.0.1:8080", "Address to serve the backend API on")
	dbPath := flag.String(
		"db", "hub-backend.sqlite", "Path to the SQLite progress database")
	flag.Parse()

	store, err := newProgressStore(*dbPath)
	if err != nil {
		applog.Fatal("Failed to open progress store", zap.Error(err))
	}
	defer func() {
		_ = store.Close()
	}()

	b := &backend{store: store}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST("/api/game-hub/progress/:gameId/save", b.handleSave)
	e.GET("/api/game-hub/progress/:gameId/load", b.handleLoad)
	e.POST("/api/game-hub/telemetry/batch", b.handleTelemetryBatch)

	go func() {
		applog.Info("Backend emulator listening", zap.String("addr", *listenAddr))
		if serveErr := e.Start(*listenAddr); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			applog.Error("Backend emulator stopped", zap.Error(serveErr))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = e.Shutdown(shutdownCtx)
}

func (b *backend) handleSave(c echo.Context) error {
	gameID := c.Param("gameId")

	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed save request"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sessionId is required"})
	}

	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	if err := b.store.Save(c.Request().Context(), gameID, req.SessionID, req.Data, timestamp); err != nil {
		applog.Error("Failed to persist progress", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to persist progress"})
	}

	applog.Info("Progress saved",
		zap.String("gameId", gameID),
		zap.String("sessionId", req.SessionID),
		zap.Int("bytes", len(req.Data)),
	)
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (b *backend) handleLoad(c echo.Context) error {
	gameID := c.Param("gameId")
	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sessionId is required"})
	}

	data, timestamp, err := b.store.Load(c.Request().Context(), gameID, sessionID)
	if err != nil {
		applog.Error("Failed to load progress", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load progress"})
	}
	if data == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no saved progress"})
	}

	return c.JSON(http.StatusOK, savedProgress{
		GameID:    gameID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: timestamp,
	})
}

func (b *backend) handleTelemetryBatch(c echo.Context) error {
	body := c.Request().Body
	if c.Request().Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed gzip body"})
		}
		defer func() {
			_ = gz.Close()
		}()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}

	var batch telemetryBatch
	if err = json.Unmarshal(data, &batch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed telemetry batch"})
	}

	for _, ev := range batch.Events {
		applog.Info("Telemetry event",
			zap.String("sessionId", ev.Sid),
			zap.String("gameId", ev.Gid),
			zap.String("event", ev.Evt),
			zap.Int64("t", ev.T),
		)
	}

	return c.JSON(http.StatusOK, map[string]any{"accepted": len(batch.Events)})
}
