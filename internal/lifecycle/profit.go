package lifecycle

import (
	"context"
	"fmt"

	"swingflow/internal/logger"
	"swingflow/internal/notify"
	"swingflow/internal/store/model"

	"gorm.io/datatypes"
)

// ProfitHitHandler marks a profit target achieved, moves the daily stop to
// breakeven after the first target, and closes the trade once no targets
// remain.
type ProfitHitHandler struct{}

func (*ProfitHitHandler) Type() EventType { return EvtProfitHit }

func (*ProfitHitHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p ProfitHitPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}
	if p.ProfitLevel < 1 || p.ProfitLevel > model.LadderSize {
		return fmt.Errorf("profit level %d outside ladder arity %d", p.ProfitLevel, model.LadderSize)
	}

	uow, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(uow)

	seen, err := uow.Ledger().Exists(ctx, env.TradeID, model.LedgerProfit, p.ProfitThreshold)
	if err != nil {
		return err
	}
	if seen {
		logger.Infof("lifecycle: profit %s for trade %d already processed, skipping", trimFloat(p.ProfitThreshold), env.TradeID)
		return nil
	}

	trade, err := uow.Trades().Find(ctx, env.TradeID)
	if err != nil {
		return err
	}
	long := isLong(env, trade)

	achieved, err := uow.Trades().MarkProfitAchieved(ctx, trade.ID, p.ProfitLevel, m.now())
	if err != nil {
		return err
	}
	if !achieved {
		logger.Debugf("lifecycle: profit_%d already achieved for trade %d", p.ProfitLevel, trade.ID)
	}

	remaining := trade.RemainingProfits(p.ProfitLevel)

	// First target with more to go: move the daily stop to breakeven at
	// the first entry. Replacement is delete-then-insert, never update.
	if p.ProfitLevel == 1 && len(remaining) > 0 {
		if trade.Entry1 != nil {
			if err := uow.Stops().DeleteByType(ctx, trade.ID, model.StopTypeDaily); err != nil {
				return err
			}
			stop := &model.StopModel{
				TradeID:  trade.ID,
				StopType: model.StopTypeDaily,
				Operator: stopOperator(long),
				Price:    *trade.Entry1,
			}
			if err := uow.Stops().Insert(ctx, stop); err != nil {
				return err
			}
			logger.Infof("lifecycle: breakeven stop at entry_1 price %s for trade %d", trimFloat(*trade.Entry1), trade.ID)
		} else {
			logger.Warnf("lifecycle: cannot set breakeven stop, entry_1 is null for trade %d", trade.ID)
		}
	}

	closed := false
	var closeNotes string
	if len(remaining) == 0 {
		closeNotes = fmt.Sprintf("All profit targets achieved, final profit (profit_%d) hit at %s", p.ProfitLevel, trimFloat(p.ProfitThreshold))
		if closed, err = markClosed(ctx, uow, m, trade.ID, model.OutcomeProfit, closeNotes); err != nil {
			return err
		}
	}

	level := p.ProfitLevel
	price := p.ProfitThreshold
	appended, err := uow.Ledger().Append(ctx, &model.LedgerEventModel{
		TradeID:      trade.ID,
		Symbol:       env.Symbol,
		EventType:    model.LedgerProfit,
		TargetNumber: &level,
		Price:        &price,
		Notes:        Summarize(env),
		Details:      datatypes.JSON(env.Data),
	})
	if err != nil {
		return err
	}
	if !appended {
		logger.Infof("lifecycle: profit event for trade %d lost dedupe race, discarding", trade.ID)
		return nil
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if p.ProfitLevel == 1 {
		m.publishPromo(ctx, trade, notify.StageProfit)
	}
	if err := m.publishAlert(ctx, notify.Alert{
		Symbol:    env.Symbol,
		EventType: string(EvtProfitHit),
		HitNumber: &p.ProfitLevel,
	}); err != nil {
		return err
	}
	if closed {
		logger.Infof("lifecycle: trade %d closed, all profit targets achieved", trade.ID)
		return m.signalClosed(ctx, env.Symbol, closeNotes)
	}
	return nil
}
