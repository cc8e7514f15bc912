package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"swingflow/internal/alertrule"
)

// alertHit is one line item inside the fan-out payload.
type alertHit struct {
	Ticker    string `json:"ticker"`
	HitNumber *int   `json:"hitNumber"`
}

type alertMessage struct {
	NewHits   []alertHit         `json:"newHits"`
	AlertType string             `json:"alertType"`
	Channels  []string           `json:"channels"`
	Options   map[string]any     `json:"options"`
	Detail    map[string]float64 `json:"detail,omitempty"`
}

// HTTPAlertPublisher delivers member alerts to the downstream fan-out
// service. Delivery rules (alert type label, channels, test mode) come
// from the rule registry; without one the historical defaults apply with
// test mode on.
type HTTPAlertPublisher struct {
	Endpoint string
	Client   *http.Client
	Rules    *alertrule.Registry
}

func NewHTTPAlertPublisher(endpoint string, rules *alertrule.Registry) *HTTPAlertPublisher {
	return &HTTPAlertPublisher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Rules:    rules,
	}
}

func (p *HTTPAlertPublisher) PublishAlert(ctx context.Context, alert Alert) error {
	if p.Endpoint == "" {
		return fmt.Errorf("alert endpoint not configured")
	}
	var rule alertrule.Rule
	var ok bool
	if p.Rules != nil {
		rule, ok = p.Rules.Rule(alert.EventType)
	}
	if !ok {
		rule = alertrule.DefaultRule(alert.EventType)
	}
	msg := alertMessage{
		NewHits:   []alertHit{{Ticker: alert.Symbol, HitNumber: alert.HitNumber}},
		AlertType: rule.AlertType,
		Channels:  rule.Channels,
		Options:   map[string]any{"testUserOnly": rule.TestUserOnly},
		Detail:    alert.Detail,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("alert publish failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("alert publish status=%d", resp.StatusCode)
	}
	return nil
}
