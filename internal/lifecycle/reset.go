package lifecycle

import (
	"context"
	"strings"

	"swingflow/internal/logger"
	"swingflow/internal/store/model"

	"gorm.io/datatypes"
)

// ResetHandler re-arms a trade for a fresh setup: blank ladders, cleared
// stop rows and stop summary, eligible again, regardless of current
// status. The reason line is appended to entry_log, never overwriting
// prior history.
type ResetHandler struct{}

func (*ResetHandler) Type() EventType { return EvtReset }

func (*ResetHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p ResetPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		reason = "manual reset"
	}

	uow, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(uow)

	trade, err := uow.Trades().Find(ctx, env.TradeID)
	if err != nil {
		return err
	}

	if err := uow.Trades().ResetTrade(ctx, trade.ID, reason, m.now()); err != nil {
		return err
	}
	// A re-armed trade must carry no live stops; the summary fields it
	// just cleared would otherwise disagree with the stop table.
	if err := uow.Stops().DeleteAll(ctx, trade.ID); err != nil {
		return err
	}

	if _, err := uow.Ledger().Append(ctx, &model.LedgerEventModel{
		TradeID:   trade.ID,
		Symbol:    env.Symbol,
		EventType: model.LedgerReset,
		Notes:     "Reset: " + reason,
		Details:   datatypes.JSON(env.Data),
	}); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	logger.Infof("lifecycle: reset completed for trade %d (%s): %s", trade.ID, env.Symbol, reason)
	return nil
}
