package lifecycle

import (
	"encoding/json"
	"fmt"
	"time"

	"swingflow/internal/store/model"
)

// EventType identifies an inbound price-threshold event kind.
type EventType string

const (
	// EvtEntryHit signals a pending entry level filled.
	EvtEntryHit EventType = "entry-hit"
	// EvtProfitHit signals a profit target reached.
	EvtProfitHit EventType = "profit-hit"
	// EvtStopOut signals the protective stop triggered.
	EvtStopOut EventType = "stop-out"
	// EvtStopWarning signals price approaching the stop. Repeated warnings
	// are expected and harmless.
	EvtStopWarning EventType = "stop-warning"
	// EvtJumpTarget signals price skipped past pending entry levels
	// without filling them.
	EvtJumpTarget EventType = "jump-target"
	// EvtReset re-arms a trade for a fresh setup.
	EvtReset EventType = "reset"
)

// EventEnvelope is the inbound message shape shared by all event kinds.
type EventEnvelope struct {
	ID        string          `json:"id,omitempty"`
	Type      EventType       `json:"eventType"`
	Symbol    string          `json:"symbol"`
	TradeID   int64           `json:"tradeId"`
	Direction string          `json:"direction,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// EntryHitPayload is the data section of an entry-hit event.
type EntryHitPayload struct {
	EntryLevel     int     `json:"entryLevel"`
	EntryThreshold float64 `json:"entryThreshold"`
}

// ProfitHitPayload is the data section of a profit-hit event.
type ProfitHitPayload struct {
	ProfitLevel     int     `json:"profitLevel"`
	ProfitThreshold float64 `json:"profitThreshold"`
}

// Stop type codes carried on the wire by stop events.
const (
	StopCodeDaily  = "DC"
	StopCodeWeekly = "WC"
)

// StopPayload is the data section of stop-out and stop-warning events.
type StopPayload struct {
	StopLevel    float64 `json:"stopLevel"`
	StopType     string  `json:"stopType"`
	CurrentPrice float64 `json:"currentPrice"`
	LossAmount   float64 `json:"lossAmount,omitempty"`
	LossPercent  float64 `json:"lossPercent,omitempty"`
}

// StoredStopType maps the wire code to the stored stop type. Stop types are
// discrete labels, matched exactly, never by tolerance.
func (p StopPayload) StoredStopType() string {
	if p.StopType == StopCodeDaily {
		return model.StopTypeDaily
	}
	return model.StopTypeWeekly
}

// JumpedEntry is one skipped rung inside a jump-target event.
type JumpedEntry struct {
	EntryLevel     int     `json:"entryLevel"`
	EntryThreshold float64 `json:"entryThreshold"`
}

// JumpPayload is the data section of a jump-target event. JumpedEntries
// preserves upstream order.
type JumpPayload struct {
	JumpedEntries []JumpedEntry `json:"jumpedEntries"`
	OpenPrice     float64       `json:"openPrice"`
}

// ResetPayload is the data section of a reset event.
type ResetPayload struct {
	Reason string `json:"reason"`
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("event data is empty")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding event data: %w", err)
	}
	return nil
}

// isLong resolves direction, preferring the envelope and falling back to
// the stored trade row.
func isLong(env EventEnvelope, trade *model.TradeModel) bool {
	switch env.Direction {
	case model.DirectionLong:
		return true
	case model.DirectionShort:
		return false
	}
	return trade != nil && trade.IsLong()
}

func stopOperator(long bool) string {
	if long {
		return model.OperatorBelow
	}
	return model.OperatorAbove
}
