package lifecycle

import (
	"context"
	"fmt"

	"swingflow/internal/logger"
	"swingflow/internal/notify"
	"swingflow/internal/pkg/pricetol"
	"swingflow/internal/store/model"

	"gorm.io/datatypes"
)

// EntryHitHandler marks an entry level filled, seeds the default daily
// stop and profit targets when the trade has none, and notifies.
type EntryHitHandler struct{}

func (*EntryHitHandler) Type() EventType { return EvtEntryHit }

func (*EntryHitHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p EntryHitPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}
	if p.EntryLevel < 1 || p.EntryLevel > model.LadderSize {
		return fmt.Errorf("entry level %d outside ladder arity %d", p.EntryLevel, model.LadderSize)
	}

	uow, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(uow)

	seen, err := uow.Ledger().Exists(ctx, env.TradeID, model.LedgerEntry, p.EntryThreshold)
	if err != nil {
		return err
	}
	if seen {
		logger.Infof("lifecycle: entry %s for trade %d already processed, skipping", trimFloat(p.EntryThreshold), env.TradeID)
		return nil
	}

	trade, err := uow.Trades().Find(ctx, env.TradeID)
	if err != nil {
		return err
	}
	long := isLong(env, trade)

	filled, err := uow.Trades().MarkEntryFilled(ctx, trade.ID, p.EntryLevel, m.now())
	if err != nil {
		return err
	}
	if !filled {
		logger.Debugf("lifecycle: entry_%d already filled for trade %d", p.EntryLevel, trade.ID)
	}

	stops, err := uow.Stops().ListByTrade(ctx, trade.ID)
	if err != nil {
		return err
	}
	if len(stops) == 0 {
		logger.Infof("lifecycle: no stop set for trade %d, seeding daily stop at %s", trade.ID, trimFloat(p.EntryThreshold))
		stop := &model.StopModel{
			TradeID:  trade.ID,
			StopType: model.StopTypeDaily,
			Operator: stopOperator(long),
			Price:    p.EntryThreshold,
		}
		if err := uow.Stops().Insert(ctx, stop); err != nil {
			return err
		}
	}

	if trade.Profit1 == nil && trade.Profit2 == nil {
		p1, p2 := pricetol.ProfitTargets(p.EntryThreshold, long)
		seeded, err := uow.Trades().SetDefaultProfits(ctx, trade.ID, p1, p2)
		if err != nil {
			return err
		}
		if seeded {
			logger.Infof("lifecycle: default profit targets for trade %d: profit_1=%s profit_2=%s", trade.ID, trimFloat(p1), trimFloat(p2))
		}
	}

	level := p.EntryLevel
	price := p.EntryThreshold
	appended, err := uow.Ledger().Append(ctx, &model.LedgerEventModel{
		TradeID:      trade.ID,
		Symbol:       env.Symbol,
		EventType:    model.LedgerEntry,
		TargetNumber: &level,
		Price:        &price,
		Notes:        Summarize(env),
		Details:      datatypes.JSON(env.Data),
	})
	if err != nil {
		return err
	}
	if !appended {
		// A concurrent delivery won the dedupe key; drop our copy whole.
		logger.Infof("lifecycle: entry event for trade %d lost dedupe race, discarding", trade.ID)
		return nil
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	m.publishPromo(ctx, trade, notify.StageEntry)
	return m.publishAlert(ctx, notify.Alert{
		Symbol:    env.Symbol,
		EventType: string(EvtEntryHit),
		HitNumber: &p.EntryLevel,
	})
}
