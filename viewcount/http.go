package viewcount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tripdoc/config"
)

// HTTPSender posts events as JSON.
type HTTPSender struct {
	endpoint   string
	token      config.SecretString
	httpClient *http.Client
}

func NewHTTPSender(endpoint string, token config.SecretString, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal view event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token.Reveal())
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post view event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("post view event: status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}
