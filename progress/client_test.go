package progress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSave(t *testing.T) {
	var gotPath string
	var gotBody SaveRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Save(context.Background(), "math-blaster", "session-1", json.RawMessage(`{"level":3}`))
	assert.NoError(t, err, "Save failed")

	assert.Equal(t, "/api/game-hub/progress/math-blaster/save", gotPath)
	assert.Equal(t, "session-1", gotBody.SessionID)
	assert.JSONEq(t, `{"level":3}`, string(gotBody.Data))
	assert.NotZero(t, gotBody.Timestamp, "save request must carry a timestamp")
}

func TestSave_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Save(context.Background(), "math-blaster", "session-1", json.RawMessage(`{}`))
	assert.Error(t, err, "a 500 from the backend must surface as an error")
}

func TestLoad(t *testing.T) {
	saved := SavedProgress{
		GameID:    "math-blaster",
		SessionID: "session-1",
		Data:      json.RawMessage(`{"level":3}`),
		Timestamp: 1700000000000,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/game-hub/progress/math-blaster/load", r.URL.Path)
		assert.Equal(t, "session-1", r.URL.Query().Get("sessionId"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(saved)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Load(context.Background(), "math-blaster", "session-1")
	assert.NoError(t, err, "Load failed")
	if result == nil {
		t.Fatal("expected saved progress, got nil")
	}
	assert.Equal(t, saved.SessionID, result.SessionID)
	assert.JSONEq(t, string(saved.Data), string(result.Data))
	assert.Equal(t, saved.Timestamp, result.Timestamp)
}

// TestLoad_NotFoundMeansNothingSaved pins down the 404 contract: a fresh
// session has no progress and that is not an error.
func TestLoad_NotFoundMeansNothingSaved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Load(context.Background(), "math-blaster", "session-1")
	assert.NoError(t, err, "404 must not be reported as an error")
	assert.Nil(t, result)
}

func TestLoad_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Load(context.Background(), "math-blaster", "session-1")
	assert.Error(t, err, "non-404 failures must surface as errors")
}
