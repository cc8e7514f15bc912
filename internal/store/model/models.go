package model

import "time"

const (
	DirectionLong  = "Long"
	DirectionShort = "Short"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

const (
	OutcomeProfit     = "profit"
	OutcomeStoppedOut = "stopped_out"
	OutcomeJumped     = "jumped"
	OutcomeReset      = "manual_reset"
	OutcomeExpired    = "expired"
)

const (
	StopTypeDaily  = "daily"
	StopTypeWeekly = "weekly"
)

const (
	OperatorAbove = "above"
	OperatorBelow = "below"
)

// LadderSize is the arity of both the entry and the profit ladder.
const LadderSize = 3

// EntryLevel is one rung of the entry ladder.
type EntryLevel struct {
	Threshold *float64
	FilledAt  *time.Time
}

// ProfitLevel is one rung of the profit ladder.
type ProfitLevel struct {
	Price      *float64
	AchievedAt *time.Time
}

// TradeModel maps to 'swing_trades'. One row per tracked position.
//
// The entry/profit ladders are stored as fixed columns but exposed through
// the Entries/Profits accessors so callers always work with an indexed
// container of arity LadderSize instead of column names.
type TradeModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	Symbol    string `gorm:"column:symbol;index"`
	Direction string `gorm:"column:direction"`

	Entry1 *float64 `gorm:"column:entry_1"`
	Entry2 *float64 `gorm:"column:entry_2"`
	Entry3 *float64 `gorm:"column:entry_3"`
	// Entry4 is a legacy slot kept only so Reset can clear rows written by
	// earlier schema versions.
	Entry4 *float64 `gorm:"column:entry_4"`

	Entry1FilledAt *time.Time `gorm:"column:entry_1_filled_at"`
	Entry2FilledAt *time.Time `gorm:"column:entry_2_filled_at"`
	Entry3FilledAt *time.Time `gorm:"column:entry_3_filled_at"`
	Entry4FilledAt *time.Time `gorm:"column:entry_4_filled_at"`

	Profit1 *float64 `gorm:"column:profit_1"`
	Profit2 *float64 `gorm:"column:profit_2"`
	Profit3 *float64 `gorm:"column:profit_3"`

	Profit1AchievedAt *time.Time `gorm:"column:profit_1_achieved_at"`
	Profit2AchievedAt *time.Time `gorm:"column:profit_2_achieved_at"`
	Profit3AchievedAt *time.Time `gorm:"column:profit_3_achieved_at"`

	// Denormalized stop summary shown on the trade row itself; the source
	// of truth is the swing_trade_stops table.
	StopPrice  *float64 `gorm:"column:stop_price"`
	StopPeriod *string  `gorm:"column:stop_period"`

	Status      string     `gorm:"column:status"`
	Outcome     *string    `gorm:"column:outcome"`
	ClosedAt    *time.Time `gorm:"column:closed_at"`
	ClosedNotes *string    `gorm:"column:closed_notes"`
	Eligible    bool       `gorm:"column:eligible"`
	EntryLog    string     `gorm:"column:entry_log;type:TEXT"`

	CreatedAtUnix int64 `gorm:"column:created_at"`
	UpdatedAtUnix int64 `gorm:"column:updated_at"`
}

func (TradeModel) TableName() string { return "swing_trades" }

// IsOpen reports whether the trade is still in the open lifecycle state.
func (t *TradeModel) IsOpen() bool { return t.Status == StatusOpen }

// IsLong reports trade direction.
func (t *TradeModel) IsLong() bool { return t.Direction == DirectionLong }

// Entries returns the entry ladder as a fixed-size indexed container.
// Index 0 corresponds to entry level 1.
func (t *TradeModel) Entries() [LadderSize]EntryLevel {
	return [LadderSize]EntryLevel{
		{Threshold: t.Entry1, FilledAt: t.Entry1FilledAt},
		{Threshold: t.Entry2, FilledAt: t.Entry2FilledAt},
		{Threshold: t.Entry3, FilledAt: t.Entry3FilledAt},
	}
}

// Profits returns the profit ladder as a fixed-size indexed container.
func (t *TradeModel) Profits() [LadderSize]ProfitLevel {
	return [LadderSize]ProfitLevel{
		{Price: t.Profit1, AchievedAt: t.Profit1AchievedAt},
		{Price: t.Profit2, AchievedAt: t.Profit2AchievedAt},
		{Price: t.Profit3, AchievedAt: t.Profit3AchievedAt},
	}
}

// EntryThresholds returns the non-null entry thresholds in ladder order.
func (t *TradeModel) EntryThresholds() []float64 {
	var out []float64
	for _, e := range t.Entries() {
		if e.Threshold != nil {
			out = append(out, *e.Threshold)
		}
	}
	return out
}

// RightmostEntry returns the highest populated entry level (1-based) and
// its threshold. ok is false when the ladder is empty.
func (t *TradeModel) RightmostEntry() (level int, threshold float64, ok bool) {
	entries := t.Entries()
	for i := LadderSize - 1; i >= 0; i-- {
		if entries[i].Threshold != nil {
			return i + 1, *entries[i].Threshold, true
		}
	}
	return 0, 0, false
}

// AnyEntryFilled reports whether any entry level has ever filled.
func (t *TradeModel) AnyEntryFilled() bool {
	for _, e := range t.Entries() {
		if e.FilledAt != nil {
			return true
		}
	}
	return false
}

// RemainingProfits returns the 1-based profit levels that have a price but
// no achieved timestamp, excluding the given level (the one being handled
// right now, whose timestamp may or may not have landed yet).
func (t *TradeModel) RemainingProfits(exclude int) []int {
	var out []int
	for i, p := range t.Profits() {
		level := i + 1
		if level == exclude {
			continue
		}
		if p.Price != nil && p.AchievedAt == nil {
			out = append(out, level)
		}
	}
	return out
}

// StopModel maps to 'swing_trade_stops'. Belongs to exactly one trade.
// At most one non-triggered stop per (trade, stop_type) is live at a time;
// the breakeven flow replaces stops with delete-then-insert, never update.
type StopModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	TradeID     int64      `gorm:"column:trade_id;index"`
	StopType    string     `gorm:"column:stop_type"`
	Operator    string     `gorm:"column:operator"`
	Price       float64    `gorm:"column:price"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	TriggeredAt *time.Time `gorm:"column:triggered_at"`
}

func (StopModel) TableName() string { return "swing_trade_stops" }
