package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errorwatch/models"
	"fmt"
	"io"
	"net/http"
)

// ContentTypeJSON is the content type sent with every delivery
const ContentTypeJSON = "application/json;charset=UTF-8"

// DeliveryResult is the terminal outcome of one remote delivery
type DeliveryResult struct {
	StatusCode int   // Zero when no response was received
	Err        error // Transport failure, if any
}

// OK reports whether the collector answered with a 2xx status
func (r DeliveryResult) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// RemoteSink posts records to a collector
type RemoteSink struct {
	client *http.Client
}

// NewRemoteSink uses client, or a client without timeout when nil.
// With no timeout a request that never completes never resolves.
func NewRemoteSink(client *http.Client) *RemoteSink {
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteSink{client: client}
}

// Send starts posting rec to url and returns immediately.
//
// An empty url fails synchronously with a configuration error and no request
// is made. Otherwise the returned channel yields exactly one result and is
// then closed.
func (s *RemoteSink) Send(ctx context.Context, url string, rec *models.ErrorRecord) (<-chan DeliveryResult, error) {
	if url == "" {
		return nil, NewRemoteURLMissingError()
	}

	body, err := json.Marshal(models.NewErrorPayload(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error payload: %w", err)
	}

	results := make(chan DeliveryResult, 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		results <- DeliveryResult{Err: fmt.Errorf("failed to create request: %w", err)}
		close(results)
		return results, nil
	}
	req.Header.Set("Content-type", ContentTypeJSON)

	go func() {
		defer close(results)

		resp, err := s.client.Do(req)
		if err != nil {
			results <- DeliveryResult{Err: err}
			return
		}
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		results <- DeliveryResult{StatusCode: resp.StatusCode}
	}()

	return results, nil
}
