package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Slack posts event summaries to the team channel through an incoming
// webhook.
type Slack struct {
	WebhookURL string
	Client     *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{WebhookURL: webhookURL, Client: &http.Client{Timeout: 15 * time.Second}}
}

// SendText posts a text message (with up to 3 retries).
func (s *Slack) SendText(text string) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook url not configured")
	}
	payload := map[string]any{"text": text}
	body, _ := json.Marshal(payload)

	var lastErr error
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("POST", s.WebhookURL, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.Client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("slack webhook status=%d", resp.StatusCode)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return lastErr
}
