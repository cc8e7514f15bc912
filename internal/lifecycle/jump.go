package lifecycle

import (
	"context"
	"fmt"

	"swingflow/internal/logger"
	"swingflow/internal/pkg/pricetol"
	"swingflow/internal/store/model"
)

// JumpTargetHandler models price skipping past pending entry levels
// without filling them. Idempotency is state-based: once the jumped
// thresholds are gone from the ladder, a redelivery matches nothing and
// no-ops.
type JumpTargetHandler struct{}

func (*JumpTargetHandler) Type() EventType { return EvtJumpTarget }

func (*JumpTargetHandler) Handle(ctx context.Context, m *Machine, env EventEnvelope) error {
	var p JumpPayload
	if err := decodePayload(env.Data, &p); err != nil {
		return err
	}
	if len(p.JumpedEntries) == 0 {
		return fmt.Errorf("jump-target event carries no jumped entries")
	}
	jumped := make([]float64, 0, len(p.JumpedEntries))
	for _, e := range p.JumpedEntries {
		jumped = append(jumped, e.EntryThreshold)
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

	current := trade.EntryThresholds()
	stale := true
	for _, j := range jumped {
		if pricetol.MatchesAny(j, current) {
			stale = false
			break
		}
	}
	if stale {
		logger.Infof("lifecycle: jumped thresholds no longer on trade %d ladder, skipping (already processed)", trade.ID)
		return nil
	}

	rightLevel, rightValue, hasEntries := trade.RightmostEntry()
	if hasEntries && pricetol.MatchesAny(rightValue, jumped) {
		// The last pending rung itself was skipped.
		if !trade.AnyEntryFilled() {
			notes := fmt.Sprintf("Rightmost entry (entry_%d) jumped at %s with no entries filled", rightLevel, trimFloat(p.OpenPrice))
			if _, err := markClosed(ctx, uow, m, trade.ID, model.OutcomeJumped, notes); err != nil {
				return err
			}
			if err := uow.Commit(); err != nil {
				return err
			}
			logger.Infof("lifecycle: trade %d closed, last entry jumped with no fills", trade.ID)
			return m.signalClosed(ctx, env.Symbol, notes)
		}
		// Filled entries exist: keep monitoring profit/stop, mutate nothing.
		logger.Infof("lifecycle: rightmost entry jumped but trade %d has fills, continuing to monitor", trade.ID)
		return nil
	}

	// Re-derive the ladder: keep rungs that are present, not jumped and
	// not yet filled, in original order, then left-compact. Filled entries
	// are immutable history and survive even a tolerance match.
	var survivors []float64
	for _, e := range trade.Entries() {
		if e.Threshold == nil {
			continue
		}
		if e.FilledAt != nil {
			continue
		}
		if pricetol.MatchesAny(*e.Threshold, jumped) {
			continue
		}
		survivors = append(survivors, *e.Threshold)
	}

	var ladder [model.LadderSize]*float64
	for i := range survivors {
		v := survivors[i]
		ladder[i] = &v
	}
	if err := uow.Trades().SetEntryLadder(ctx, trade.ID, ladder); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	logger.Infof("lifecycle: shifted entries for trade %d, %d rung(s) remain after jump", trade.ID, len(survivors))
	return nil
}
