package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TrackingClient signals the external price watcher to stop tracking a
// symbol once its trade closed. One canonical payload shape: symbol and a
// human reason.
type TrackingClient struct {
	Endpoint string
	Client   *http.Client
}

func NewTrackingClient(endpoint string) *TrackingClient {
	return &TrackingClient{Endpoint: endpoint, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (c *TrackingClient) StopTracking(ctx context.Context, symbol, reason string) error {
	if c.Endpoint == "" {
		return fmt.Errorf("tracking endpoint not configured")
	}
	body, err := json.Marshal(map[string]string{
		"symbol": symbol,
		"reason": reason,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("stop tracking failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("stop tracking status=%d", resp.StatusCode)
	}
	return nil
}
