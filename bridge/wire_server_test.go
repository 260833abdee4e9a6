package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"iruka-hub/catalog"
	"iruka-hub/guestsdk"
	"iruka-hub/protocol"
)

const testEntryOrigin = "https://games.example.com"

func newTestWireServer(t *testing.T, policy SecurityPolicy) (*WireServer, string) {
	t.Helper()

	wire := NewWireServer(policy)
	e := echo.New()
	e.HideBanner = true
	wire.Attach(e)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return wire, wsURL
}

func dialBridge(t *testing.T, wsURL string, sessionID string, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(wsURL+"/bridge/"+sessionID, header)
}

func TestWireServer_RejectsUnknownSession(t *testing.T) {
	_, wsURL := newTestWireServer(t, SecurityPolicy{HubOrigin: "http://hub.local"})

	conn, resp, err := dialBridge(t, wsURL, "no-such-session", testEntryOrigin)
	assert.Error(t, err, "handshake for an unregistered session must fail")
	if conn != nil {
		_ = conn.Close()
	}
	if resp != nil {
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

// TestWireServer_RejectsDisallowedOrigin pins down the trust boundary: a
// connection from an origin that is neither the hub, the game entry, nor
// allow-listed is refused at the handshake.
func TestWireServer_RejectsDisallowedOrigin(t *testing.T) {
	wire, wsURL := newTestWireServer(t, SecurityPolicy{HubOrigin: "http://hub.local"})

	transport, err := wire.Expect("session-1", testEntryOrigin+"/math-blaster/")
	assert.NoError(t, err)
	defer func() {
		_ = transport.Close()
	}()

	conn, resp, err := dialBridge(t, wsURL, "session-1", "https://evil.example.net")
	assert.Error(t, err)
	if conn != nil {
		_ = conn.Close()
	}
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	select {
	case <-transport.Connected():
		t.Error("transport must not report connected after a rejected handshake")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWireServer_EventFlow(t *testing.T) {
	wire, wsURL := newTestWireServer(t, SecurityPolicy{HubOrigin: "http://hub.local"})

	transport, err := wire.Expect("session-1", testEntryOrigin+"/math-blaster/")
	assert.NoError(t, err)
	defer func() {
		_ = transport.Close()
	}()

	conn, _, err := dialBridge(t, wsURL, "session-1", testEntryOrigin)
	assert.NoError(t, err, "dial with the entry origin failed")
	defer func() {
		_ = conn.Close()
	}()

	select {
	case <-transport.Connected():
	case <-time.After(time.Second):
		t.Fatal("transport did not report the guest connection")
	}

	// A hub-marked frame from the guest side must be dropped without signal.
	spoofed, err := protocol.NewCommandEnvelope(protocol.NewStartCommand())
	assert.NoError(t, err)
	assert.NoError(t, conn.WriteJSON(spoofed))

	// A legitimate game event flows through.
	readyEnv, err := protocol.NewEventEnvelope(protocol.NewReadyEvent())
	assert.NoError(t, err)
	assert.NoError(t, conn.WriteJSON(readyEnv))

	select {
	case env := <-transport.Events():
		assert.Equal(t, protocol.EventTypeReady, env.Type,
			"the spoofed hub-source frame must not come through ahead of READY")
	case <-time.After(time.Second):
		t.Fatal("READY event did not arrive")
	}

	// Hub-to-guest delivery.
	cmdEnv, err := protocol.NewCommandEnvelope(protocol.NewPauseCommand())
	assert.NoError(t, err)
	assert.NoError(t, transport.Send(cmdEnv))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var received protocol.Envelope
	assert.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, protocol.CommandTypePause, received.Type)
	assert.Equal(t, protocol.SourceHub, received.Source)
}

func TestWireServer_SecondConnectionRejected(t *testing.T) {
	wire, wsURL := newTestWireServer(t, SecurityPolicy{HubOrigin: "http://hub.local"})

	transport, err := wire.Expect("session-1", testEntryOrigin)
	assert.NoError(t, err)
	defer func() {
		_ = transport.Close()
	}()

	first, _, err := dialBridge(t, wsURL, "session-1", testEntryOrigin)
	assert.NoError(t, err)
	defer func() {
		_ = first.Close()
	}()

	second, _, err := dialBridge(t, wsURL, "session-1", testEntryOrigin)
	assert.NoError(t, err, "the handshake itself succeeds, the socket is closed right after")
	_ = second.SetReadDeadline(time.Now().Add(time.Second))
	_, _, readErr := second.ReadMessage()
	assert.Error(t, readErr, "second guest connection should be closed by the hub")
	_ = second.Close()
}

func TestWireServer_ExpectTwice(t *testing.T) {
	wire, _ := newTestWireServer(t, SecurityPolicy{})

	transport, err := wire.Expect("session-1", testEntryOrigin)
	assert.NoError(t, err)
	defer func() {
		_ = transport.Close()
	}()

	_, err = wire.Expect("session-1", testEntryOrigin)
	assert.EqualError(t, err, `bridge session "session-1" is already registered`)
}

// TestBridgeOverWire runs a full session over the WebSocket transport using
// the guest SDK: INIT on connect, READY unblocking Mount, gameplay events
// reaching the event callback in order, and teardown.
func TestBridgeOverWire(t *testing.T) {
	wire, wsURL := newTestWireServer(t, SecurityPolicy{HubOrigin: "http://hub.local"})

	launch := testLaunch()
	manifest := catalog.Manifest{
		ID:       "fake-game",
		Title:    "Fake Game",
		Version:  "1.0.0",
		Runtime:  catalog.RuntimeWire,
		EntryURL: testEntryOrigin + "/fake-game/",
	}

	var eventTypes []protocol.EventType
	var eventsMu sync.Mutex
	b := New(Options{
		Manifest: manifest,
		Launch:   launch,
		Wire:     wire,
		OnEvent: func(ev protocol.Event) {
			eventsMu.Lock()
			eventTypes = append(eventTypes, ev.GetEventType())
			eventsMu.Unlock()
		},
		ReadyTimeout: 5 * time.Second,
	})
	defer b.Dispose()

	mountDone := make(chan error, 1)
	go func() {
		mountDone <- b.Mount(context.Background())
	}()

	commands := make(chan protocol.Command, 16)
	opts := guestsdk.WireGuestOptions{
		HubURL:            wsURL + "/bridge/" + launch.SessionID,
		Origin:            testEntryOrigin,
		ExpectedHubOrigin: "*",
		OnCommand:         func(cmd protocol.Command) { commands <- cmd },
	}

	// Mount registers the session concurrently; retry the dial until the
	// slot exists.
	var guest *guestsdk.WireGuest
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for {
		guest, err = guestsdk.Dial(context.Background(), opts)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.NoError(t, err, "guest dial failed")
	defer func() {
		_ = guest.Close()
	}()

	// INIT arrives as soon as the guest attaches.
	select {
	case cmd := <-commands:
		initCmd, ok := cmd.(*protocol.InitCommand)
		assert.True(t, ok, "expected *InitCommand first, got %T", cmd)
		assert.Equal(t, launch.SessionID, initCmd.Context.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("guest did not receive INIT")
	}
	if assert.NotNil(t, guest.LaunchContext()) {
		assert.Equal(t, launch.GameID, guest.LaunchContext().GameID)
	}

	assert.NoError(t, guest.Ready())

	select {
	case err = <-mountDone:
		assert.NoError(t, err, "Mount should return once READY arrives")
	case <-time.After(2 * time.Second):
		t.Fatal("Mount did not return after READY")
	}
	assert.True(t, b.IsReady())

	b.Start()
	select {
	case cmd := <-commands:
		assert.Equal(t, protocol.CommandTypeStart, cmd.GetType())
	case <-time.After(2 * time.Second):
		t.Fatal("guest did not receive START")
	}

	assert.NoError(t, guest.ReportScore(100, 100))
	assert.NoError(t, guest.Complete(100, 1234, json.RawMessage(`{"stars":3}`)))

	assert.Eventually(t, func() bool {
		eventsMu.Lock()
		defer eventsMu.Unlock()
		return len(eventTypes) == 3
	}, 2*time.Second, 10*time.Millisecond, "gameplay events did not reach the callback")

	eventsMu.Lock()
	assert.Equal(t,
		[]protocol.EventType{protocol.EventTypeReady, protocol.EventTypeScoreUpdate, protocol.EventTypeComplete},
		eventTypes)
	eventsMu.Unlock()

	b.Dispose()

	select {
	case <-guest.Done():
	case <-time.After(2 * time.Second):
		t.Error("guest connection should close when the bridge is disposed")
	}
}
