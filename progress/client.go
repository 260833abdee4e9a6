// Package progress wraps the remote save/load endpoints, keyed by
// (gameId, sessionId). The bridge does not retry these calls; failures
// propagate to whichever guest requested the round-trip.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"
)

type SaveRequest struct {
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type SavedProgress struct {
	GameID    string          `json:"gameId"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type Client struct {
	apiBase    string
	httpClient *resty.Client
}

func NewClient(apiBase string) *Client {
	return &Client{
		apiBase:    apiBase,
		httpClient: resty.New(),
	}
}

func (c *Client) Save(ctx context.Context, gameID string, sessionID string, data json.RawMessage) error {
	url := fmt.Sprintf("%s/api/game-hub/progress/%s/save", c.apiBase, gameID)

	requestData := SaveRequest{
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(requestData).
		Post(url)

	if err != nil {
		return fmt.Errorf("saving progress failed: %v", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("saving progress failed: %v", resp.Status())
	}

	return nil
}

// Load fetches saved progress. A backend 404 means "nothing saved yet" and
// returns (nil, nil); every other non-2xx status is an error.
func (c *Client) Load(ctx context.Context, gameID string, sessionID string) (*SavedProgress, error) {
	url := fmt.Sprintf("%s/api/game-hub/progress/%s/load", c.apiBase, gameID)

	var result SavedProgress

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("sessionId", sessionID).
		SetResult(&result).
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("loading progress failed: %v", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("loading progress failed: %v", resp.Status())
	}

	return &result, nil
}
