package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"

	"iruka-hub/protocol"
)

func TestHTTPSender_SendBatch(t *testing.T) {
	var gotPath string
	var gotEncoding string
	var gotBatch batchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEncoding = r.Header.Get("Content-Encoding")

		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Errorf("body is not valid gzip: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(gz)
		_ = json.Unmarshal(body, &gotBatch)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendBatch(context.Background(), []protocol.TelemetryEvent{
		{T: 1, Sid: "session-1", Gid: "math-blaster", Ver: "1.0.0", Evt: protocol.EventTypeTelemetry},
		{T: 2, Sid: "session-1", Gid: "math-blaster", Ver: "1.0.0", Evt: protocol.EventTypeTelemetry},
	})
	assert.NoError(t, err, "SendBatch failed")

	assert.Equal(t, "/api/game-hub/telemetry/batch", gotPath)
	assert.Equal(t, "gzip", gotEncoding)
	if len(gotBatch.Events) != 2 {
		t.Fatalf("expected 2 events in the decoded batch, got %d", len(gotBatch.Events))
	}
	assert.Equal(t, int64(1), gotBatch.Events[0].T)
	assert.Equal(t, "session-1", gotBatch.Events[1].Sid)
}

func TestHTTPSender_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendBatch(context.Background(), []protocol.TelemetryEvent{{T: 1}})
	assert.Error(t, err, "a 503 must surface so the queue can retry")
}
