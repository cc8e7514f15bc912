package model

import (
	"time"

	"gorm.io/datatypes"
)

// Ledger event types. The ledger keys several inbound event kinds to four
// stored types, matching the historical audit table.
const (
	LedgerEntry  = "entry"
	LedgerProfit = "profit"
	LedgerStop   = "stop"
	LedgerReset  = "reset"
)

// LedgerEventModel maps to 'swing_trade_events': the append-only audit and
// idempotency ledger. The unique index on (trade_id, event_type, price) is
// the storage-level dedupe key; a replayed event conflicts on insert
// instead of racing a read-then-write check. Price is NULL for reset rows,
// which SQLite exempts from the unique constraint.
type LedgerEventModel struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	TradeID      int64          `gorm:"column:trade_id;uniqueIndex:idx_ledger_dedupe,priority:1"`
	Symbol       string         `gorm:"column:symbol"`
	EventType    string         `gorm:"column:event_type;uniqueIndex:idx_ledger_dedupe,priority:2"`
	TargetNumber *int           `gorm:"column:target_number"`
	Price        *float64       `gorm:"column:price;uniqueIndex:idx_ledger_dedupe,priority:3"`
	Notes        string         `gorm:"column:notes;type:TEXT"`
	Details      datatypes.JSON `gorm:"column:details;type:TEXT"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEventModel) TableName() string { return "swing_trade_events" }
