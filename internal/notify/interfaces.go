package notify

import "context"

// Alert is a member-facing notification intent. The publisher resolves
// delivery rules (alert type label, channels, test mode) for the event
// kind; the core only names what happened.
type Alert struct {
	Symbol    string
	EventType string
	HitNumber *int
	// Detail carries kind-specific numbers for message rendering
	// (stop level, current price, loss percent).
	Detail map[string]float64
}

// AlertPublisher fans an alert out to members. Failure propagates: the
// whole event is retried, which is safe because every transition is a
// no-op on replay.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert Alert) error
}

// TradeSnapshot is the slice of trade state forwarded to the promotional
// system.
type TradeSnapshot struct {
	Symbol        string
	Direction     string
	StopPrice     *float64
	Profit1       *float64
	Profit2       *float64
	PctProfitLoss *float64
}

// Promo stages accepted by the downstream promotional system.
const (
	StageEntry  = "entry"
	StageProfit = "profit"
)

// PromoPublisher hands a trade snapshot to the downstream promotional
// system. Best effort: callers swallow and log failures.
type PromoPublisher interface {
	Publish(ctx context.Context, snap TradeSnapshot, stage string) error
}

// TrackingSignal tells the external price watcher to stop tracking a
// symbol once its trade reaches a terminal state. Emitted after the close
// commits; failure propagates.
type TrackingSignal interface {
	StopTracking(ctx context.Context, symbol, reason string) error
}

// TextNotifier posts a short operational message to the team channel.
type TextNotifier interface {
	SendText(text string) error
}
