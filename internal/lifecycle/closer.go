package lifecycle

import (
	"context"

	"swingflow/internal/logger"
	"swingflow/internal/store"
)

// markClosed is the shared terminal transition. It runs inside the event's
// unit of work so the close commits atomically with the rest of the
// mutation; when the trade was already closed it converges silently.
func markClosed(ctx context.Context, uow store.UnitOfWork, m *Machine, tradeID int64, outcome, notes string) (bool, error) {
	closed, err := uow.Trades().CloseTrade(ctx, tradeID, outcome, notes, m.now())
	if err != nil {
		return false, err
	}
	if !closed {
		logger.Debugf("lifecycle: trade %d already closed, close(%s) is a no-op", tradeID, outcome)
	}
	return closed, nil
}

// signalClosed tells the price watcher to drop the symbol. Called only
// after the closing transaction commits. Failure propagates and the event
// is redelivered, which is safe: the close itself is a no-op on replay and
// the signal fires again.
func (m *Machine) signalClosed(ctx context.Context, symbol, reason string) error {
	if m.tracking == nil {
		return nil
	}
	if err := m.tracking.StopTracking(ctx, symbol, reason); err != nil {
		return err
	}
	logger.Infof("lifecycle: stop tracking %s (%s)", symbol, reason)
	return nil
}
