package lifecycle

import (
	"context"
	"fmt"

	"swingflow/internal/logger"
	"swingflow/internal/notify"
	"swingflow/internal/store/model"

	"gorm.io/datatypes"
)

// StopWarningHandler emits the required member alert and nothing else.
// Warnings repeat while price hovers near the stop, so there is no ledger
// row and no trade mutation; the journal still records receipt.
type StopWarningHandler struct{}

func (*StopWarningHandler) Type() EventType { return EvtStopWarning }

func (*StopWarningHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p StopPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}
	return m.publishAlert(ctx, notify.Alert{
		Symbol:    env.Symbol,
		EventType: string(EvtStopWarning),
		Detail: map[string]float64{
			"stopLevel":    p.StopLevel,
			"currentPrice": p.CurrentPrice,
		},
	})
}

// StopOutHandler triggers the matching stop row and closes the trade.
// A missing stop row is logged, never a reason to leave the trade open.
type StopOutHandler struct{}

func (*StopOutHandler) Type() EventType { return EvtStopOut }

func (*StopOutHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p StopPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}

	uow, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(uow)

	seen, err := uow.Ledger().Exists(ctx, env.TradeID, model.LedgerStop, p.CurrentPrice)
	if err != nil {
		return err
	}
	if seen {
		logger.Infof("lifecycle: stop-out at %s for trade %d already processed, skipping", trimFloat(p.CurrentPrice), env.TradeID)
		return nil
	}

	trade, err := uow.Trades().Find(ctx, env.TradeID)
	if err != nil {
		return err
	}

	stops, err := uow.Stops().ListByTrade(ctx, trade.ID)
	if err != nil {
		return err
	}
	storedType := p.StoredStopType()
	matched := false
	for _, s := range stops {
		if s.StopType != storedType {
			continue
		}
		triggered, err := uow.Stops().MarkTriggered(ctx, s.ID, m.now())
		if err != nil {
			return err
		}
		if !triggered {
			logger.Debugf("lifecycle: stop %d already triggered for trade %d", s.ID, trade.ID)
		}
		matched = true
		break
	}
	if !matched {
		logger.Warnf("lifecycle: no %s stop row for trade %d, closing anyway", storedType, trade.ID)
	}

	notes := fmt.Sprintf("Stopped out at %s (%s stop, level %s, loss %s%%)",
		trimFloat(p.CurrentPrice), storedType, trimFloat(p.StopLevel), trimFloat(p.LossPercent))
	if _, err := markClosed(ctx, uow, m, trade.ID, model.OutcomeStoppedOut, notes); err != nil {
		return err
	}

	price := p.CurrentPrice
	appended, err := uow.Ledger().Append(ctx, &model.LedgerEventModel{
		TradeID:   trade.ID,
		Symbol:    env.Symbol,
		EventType: model.LedgerStop,
		Price:     &price,
		Notes:     Summarize(env),
		Details:   datatypes.JSON(env.Data),
	})
	if err != nil {
		return err
	}
	if !appended {
		logger.Infof("lifecycle: stop-out event for trade %d lost dedupe race, discarding", trade.ID)
		return nil
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := m.publishAlert(ctx, notify.Alert{
		Symbol:    env.Symbol,
		EventType: string(EvtStopOut),
		Detail: map[string]float64{
			"stopLevel":    p.StopLevel,
			"currentPrice": p.CurrentPrice,
			"lossAmount":   p.LossAmount,
			"lossPercent":  p.LossPercent,
		},
	}); err != nil {
		return err
	}
	return m.signalClosed(ctx, env.Symbol, notes)
}
