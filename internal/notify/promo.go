package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PromoClient hands trade snapshots to the downstream promotional system.
// The payload keys are the spreadsheet column names that system expects,
// which is why they look nothing like Go field names.
type PromoClient struct {
	Endpoint string
	TestMode bool
	Client   *http.Client
}

func NewPromoClient(endpoint string, testMode bool) *PromoClient {
	return &PromoClient{
		Endpoint: endpoint,
		TestMode: testMode,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PromoClient) Publish(ctx context.Context, snap TradeSnapshot, stage string) error {
	if c.Endpoint == "" {
		return fmt.Errorf("promo endpoint not configured")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("func", stage)
	u.RawQuery = q.Encode()

	payload := map[string]any{
		"trade": map[string]any{
			"Symbol":        snap.Symbol,
			"Long / Short":  snap.Direction,
			"% Profit/Loss": floatString(snap.PctProfitLoss),
			"Profit 1":      floatString(snap.Profit1),
			"Profit 2":      floatString(snap.Profit2),
			"Stop Price":    floatString(snap.StopPrice),
		},
		"testMode": c.TestMode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("promo publish failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("promo publish status=%d", resp.StatusCode)
	}
	return nil
}

func floatString(v *float64) any {
	if v == nil {
		return nil
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
