package tradehttp

import (
	"time"

	"github.com/gin-gonic/gin"

	"swingflow/internal/store/model"
)

// TradeView is the query-side shape of a trade: ladders rendered as
// indexed arrays instead of numbered columns.
type TradeView struct {
	ID        int64        `json:"id"`
	Symbol    string       `json:"symbol"`
	Direction string       `json:"direction"`
	Status    string       `json:"status"`
	Outcome   *string      `json:"outcome,omitempty"`
	Eligible  bool         `json:"eligible"`
	Entries   []EntryView  `json:"entries"`
	Profits   []ProfitView `json:"profits"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	Notes     *string      `json:"closedNotes,omitempty"`
	EntryLog  string       `json:"entryLog,omitempty"`
	Stops     []StopView   `json:"stops"`
	Events    []LedgerView `json:"events"`
}

type EntryView struct {
	Level     int        `json:"level"`
	Threshold *float64   `json:"threshold"`
	FilledAt  *time.Time `json:"filledAt,omitempty"`
}

type ProfitView struct {
	Level      int        `json:"level"`
	Price      *float64   `json:"price"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

type StopView struct {
	ID          int64      `json:"id"`
	StopType    string     `json:"stopType"`
	Operator    string     `json:"operator"`
	Price       float64    `json:"price"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
}

type LedgerView struct {
	EventType    string    `json:"eventType"`
	TargetNumber *int      `json:"targetNumber,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// loadTradeView reads a trade with its stops and recent ledger rows in one
// read-only transaction.
func (r *Router) loadTradeView(c *gin.Context, id int64) (*TradeView, error) {
	ctx := c.Request.Context()
	uow, err := r.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	trade, err := uow.Trades().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	stops, err := uow.Stops().ListByTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := uow.Ledger().ListByTrade(ctx, id, 50)
	if err != nil {
		return nil, err
	}
	return newTradeView(trade, stops, events), nil
}

func newTradeView(trade *model.TradeModel, stops []model.StopModel, events []model.LedgerEventModel) *TradeView {
	view := &TradeView{
		ID:        trade.ID,
		Symbol:    trade.Symbol,
		Direction: trade.Direction,
		Status:    trade.Status,
		Outcome:   trade.Outcome,
		Eligible:  trade.Eligible,
		ClosedAt:  trade.ClosedAt,
		Notes:     trade.ClosedNotes,
		EntryLog:  trade.EntryLog,
	}
	for i, e := range trade.Entries() {
		view.Entries = append(view.Entries, EntryView{Level: i + 1, Threshold: e.Threshold, FilledAt: e.FilledAt})
	}
	for i, p := range trade.Profits() {
		view.Profits = append(view.Profits, ProfitView{Level: i + 1, Price: p.Price, AchievedAt: p.AchievedAt})
	}
	for _, s := range stops {
		view.Stops = append(view.Stops, StopView{ID: s.ID, StopType: s.StopType, Operator: s.Operator, Price: s.Price, TriggeredAt: s.TriggeredAt})
	}
	for _, ev := range events {
		view.Events = append(view.Events, LedgerView{
			EventType:    ev.EventType,
			TargetNumber: ev.TargetNumber,
			Price:        ev.Price,
			Notes:        ev.Notes,
			CreatedAt:    ev.CreatedAt,
		})
	}
	return view
}
