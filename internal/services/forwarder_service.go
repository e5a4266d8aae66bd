// internal/services/forwarder_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ForwarderService delivers event payloads to the external workflow
// automation webhook. Delivery is fire-and-log: callers record failures but
// never fail their own request over them. The timeout cancels the outbound
// call rather than blocking the caller.
type ForwarderService struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewForwarderService(url string, timeout time.Duration) *ForwarderService {
	return &ForwarderService{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Enabled reports whether an automation target is configured.
func (s *ForwarderService) Enabled() bool {
	return s.url != ""
}

// Forward posts the payload as JSON to the configured target. Returns an
// error on transport failure, timeout, or a non-2xx response.
func (s *ForwarderService) Forward(ctx context.Context, payload interface{}) error {
	if !s.Enabled() {
		return fmt.Errorf("automation webhook target not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook target returned status %d", resp.StatusCode)
	}

	return nil
}
