package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"resty.dev/v3"

	"iruka-hub/protocol"
)

type batchRequest struct {
	Events []protocol.TelemetryEvent `json:"events"`
}

// HTTPSender posts telemetry batches to the hub backend. Batches are gzip
// compressed; a telemetry batch at MaxBatch is mostly repetitive JSON keys
// and compresses an order of magnitude.
type HTTPSender struct {
	apiBase    string
	httpClient *resty.Client
}

func NewHTTPSender(apiBase string) *HTTPSender {
	return &HTTPSender{
		apiBase:    apiBase,
		httpClient: resty.New(),
	}
}

func (s *HTTPSender) SendBatch(ctx context.Context, events []protocol.TelemetryEvent) error {
	url := s.apiBase + "/api/game-hub/telemetry/batch"

	body, err := json.Marshal(batchRequest{Events: events})
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry batch: %v", err)
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err = gz.Write(body); err != nil {
		return fmt.Errorf("failed to compress telemetry batch: %v", err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("failed to compress telemetry batch: %v", err)
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", "gzip").
		SetBody(compressed.Bytes()).
		Post(url)

	if err != nil {
		return fmt.Errorf("posting telemetry batch failed: %v", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("posting telemetry batch failed: %v", resp.Status())
	}

	return nil
}
