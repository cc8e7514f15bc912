package store

import (
	"context"
	"errors"
	"time"

	"swingflow/internal/store/model"
)

// ErrTradeNotFound is returned when a trade id has no row. Fatal for the
// event being processed; the delivery layer retries or dead-letters.
var ErrTradeNotFound = errors.New("trade not found")

// UnitOfWork defines a transaction scope. Trade mutation, stop mutation and
// the ledger append for one event must commit or roll back together.
type UnitOfWork interface {
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error

	// Trades returns the trade repository within this transaction.
	Trades() TradeRepository
	// Stops returns the stop repository within this transaction.
	Stops() StopRepository
	// Ledger returns the ledger repository within this transaction.
	Ledger() LedgerRepository
}

// Store is the entry point for database access.
type Store interface {
	// Begin starts a new UnitOfWork (transaction).
	Begin(ctx context.Context) (UnitOfWork, error)
	// Close closes the store connection.
	Close() error
}

// TradeRepository handles the mutable trade record. All guarded mutations
// are field-level compare-and-set: they apply only when the target field is
// still unset and report whether a row actually changed, so replays of the
// same event converge instead of double-applying.
type TradeRepository interface {
	// Find loads a trade for update within the transaction.
	// Returns ErrTradeNotFound when the id has no row.
	Find(ctx context.Context, id int64) (*model.TradeModel, error)
	// Update applies a partial column update.
	Update(ctx context.Context, id int64, fields map[string]any) error
	// MarkEntryFilled sets entry_<level>_filled_at, guarded by NULL.
	MarkEntryFilled(ctx context.Context, id int64, level int, at time.Time) (bool, error)
	// MarkProfitAchieved sets profit_<level>_achieved_at, guarded by NULL.
	MarkProfitAchieved(ctx context.Context, id int64, level int, at time.Time) (bool, error)
	// SetEntryLadder persists all three entry slots in one update.
	SetEntryLadder(ctx context.Context, id int64, ladder [model.LadderSize]*float64) error
	// SetDefaultProfits seeds profit_1/profit_2, guarded by both being NULL.
	SetDefaultProfits(ctx context.Context, id int64, p1, p2 float64) (bool, error)
	// CloseTrade marks the trade closed with a fixed outcome, guarded by
	// status still being open.
	CloseTrade(ctx context.Context, id int64, outcome, notes string, at time.Time) (bool, error)
	// ResetTrade re-arms the trade: blank ladders, cleared stop summary,
	// eligible again, with a timestamped reason line appended to entry_log.
	ResetTrade(ctx context.Context, id int64, reason string, at time.Time) error
}

// StopRepository handles the stop rows attached to a trade.
type StopRepository interface {
	// ListByTrade returns the trade's stops, newest first.
	ListByTrade(ctx context.Context, tradeID int64) ([]model.StopModel, error)
	// Insert adds a stop row.
	Insert(ctx context.Context, stop *model.StopModel) error
	// DeleteByType removes all stops of one type for a trade.
	DeleteByType(ctx context.Context, tradeID int64, stopType string) error
	// DeleteAll removes every stop for a trade.
	DeleteAll(ctx context.Context, tradeID int64) error
	// MarkTriggered sets triggered_at, guarded by NULL.
	MarkTriggered(ctx context.Context, id int64, at time.Time) (bool, error)
}

// LedgerRepository handles the append-only idempotency/audit ledger.
type LedgerRepository interface {
	// Exists checks the dedupe key (trade, event type, price).
	Exists(ctx context.Context, tradeID int64, eventType string, price float64) (bool, error)
	// Append inserts one ledger row. Returns false when the unique dedupe
	// key already exists (insert skipped, no error).
	Append(ctx context.Context, rec *model.LedgerEventModel) (bool, error)
	// ListByTrade returns the trade's ledger rows, newest first.
	ListByTrade(ctx context.Context, tradeID int64, limit int) ([]model.LedgerEventModel, error)
}
