package bridge

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/protocol"
)

// WireServer owns the hub's bridge WebSocket endpoint. A bridge mounting a
// wire-runtime game registers its session here and waits for the guest
// process to dial in; at most one guest connection is accepted per session.
type WireServer struct {
	policy   SecurityPolicy
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*wireTransport
}

func NewWireServer(policy SecurityPolicy) *WireServer {
	return &WireServer{
		policy: policy,
		upgrader: websocket.Upgrader{
			// Origin enforcement happens in the handler where the session's
			// entry origin is known.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		sessions: make(map[string]*wireTransport),
	}
}

// Attach registers the bridge endpoint on the hub's router.
func (s *WireServer) Attach(e *echo.Echo) {
	e.GET("/bridge/:session", s.handleBridge)
}

// Expect reserves a session slot ahead of the guest connecting. The returned
// transport is not connected yet; its Connected channel closes when the
// guest attaches.
func (s *WireServer) Expect(sessionID string, entryURL string) (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists {
		return nil, fmt.Errorf("bridge session %q is already registered", sessionID)
	}

	t := newWireTransport(s, sessionID, ResolveEntryOrigin(entryURL))
	s.sessions[sessionID] = t
	return t, nil
}

func (s *WireServer) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *WireServer) handleBridge(c echo.Context) error {
	sessionID := c.Param("session")

	s.mu.Lock()
	t := s.sessions[sessionID]
	s.mu.Unlock()

	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	origin := c.Request().Header.Get("Origin")
	if !s.policy.OriginAllowed(origin, t.entryOrigin) {
		applog.Warn("Rejecting bridge connection from unauthorized origin",
			zap.String("sessionId", sessionID),
			zap.String("expectedOrigin", t.entryOrigin),
			zap.String("receivedOrigin", origin),
		)
		return echo.NewHTTPError(http.StatusForbidden)
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	if !t.attach(conn) {
		applog.Warn("Rejecting second guest connection for bridge session",
			zap.String("sessionId", sessionID),
			zap.String("remoteAddr", conn.RemoteAddr().String()),
		)
		_ = conn.Close()
		return nil
	}

	applog.Info("Guest connected to bridge session",
		zap.String("sessionId", sessionID),
		zap.String("remoteAddr", conn.RemoteAddr().String()),
		zap.String("origin", origin),
	)
	return nil
}

type wireTransport struct {
	server      *WireServer
	sessionID   string
	entryOrigin string

	connected chan struct{}
	events    chan protocol.Envelope

	mu       sync.Mutex
	conn     *websocket.Conn
	attached bool
	closed   bool
}

func newWireTransport(server *WireServer, sessionID string, entryOrigin string) *wireTransport {
	return &wireTransport{
		server:      server,
		sessionID:   sessionID,
		entryOrigin: entryOrigin,
		connected:   make(chan struct{}),
		events:      make(chan protocol.Envelope, 16),
	}
}

func (t *wireTransport) attach(conn *websocket.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attached || t.closed {
		return false
	}

	t.conn = conn
	t.attached = true
	close(t.connected)
	go t.readPump(conn)
	return true
}

func (t *wireTransport) readPump(conn *websocket.Conn) {
	defer close(t.events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				applog.Debug("Bridge guest connection closed",
					zap.String("sessionId", t.sessionID),
					zap.Error(err),
				)
			}
			return
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			applog.Warn("Dropping unparsable bridge frame",
				zap.String("sessionId", t.sessionID),
				zap.Error(err),
			)
			continue
		}

		// Traffic with the wrong source marker gets no reply and no error.
		if !env.IsWellFormed(protocol.SourceGame) {
			applog.Warn("Dropping bridge frame with unexpected source",
				zap.String("sessionId", t.sessionID),
				zap.String("source", env.Source),
				zap.String("type", env.Type),
			)
			continue
		}

		t.events <- env
	}
}

func (t *wireTransport) Send(env protocol.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("bridge session %q is closed", t.sessionID)
	}
	if t.conn == nil {
		return fmt.Errorf("bridge session %q has no guest connected", t.sessionID)
	}

	return t.conn.WriteJSON(env)
}

func (t *wireTransport) Events() <-chan protocol.Envelope {
	return t.events
}

func (t *wireTransport) Connected() <-chan struct{} {
	return t.connected
}

func (t *wireTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	attached := t.attached
	t.mu.Unlock()

	t.server.release(t.sessionID)

	if conn != nil {
		_ = conn.Close()
	}
	if !attached {
		close(t.events)
	}
	return nil
}
