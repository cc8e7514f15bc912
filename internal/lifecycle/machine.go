package lifecycle

import (
	"context"
	"errors"
	"time"

	"swingflow/internal/journal"
	"swingflow/internal/logger"
	"swingflow/internal/notify"
	"swingflow/internal/store"
	"swingflow/internal/store/model"
)

// EventJournal records receipt of every envelope. Optional; failures are
// logged and never fail the event.
type EventJournal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Machine advances trades through their lifecycle. Each event is handled
// by one sequential execution; all state for one event commits in a single
// store transaction before any notification leaves the process.
type Machine struct {
	store    store.Store
	alerts   notify.AlertPublisher
	promo    notify.PromoPublisher
	tracking notify.TrackingSignal
	ops      notify.TextNotifier
	journal  EventJournal
	registry *HandlerRegistry
	now      func() time.Time
}

// Publishers bundles the outbound collaborators the machine emits to.
type Publishers struct {
	Alerts   notify.AlertPublisher
	Promo    notify.PromoPublisher
	Tracking notify.TrackingSignal
	Ops      notify.TextNotifier
}

// Option customizes a Machine.
type Option func(*Machine)

// WithClock overrides the time source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithJournal attaches the inbound event journal.
func WithJournal(j EventJournal) Option {
	return func(m *Machine) { m.journal = j }
}

func NewMachine(st store.Store, pubs Publishers, opts ...Option) *Machine {
	reg := NewHandlerRegistry()
	reg.RegisterDefaultHandlers()
	m := &Machine{
		store:    st,
		alerts:   pubs.Alerts,
		promo:    pubs.Promo,
		tracking: pubs.Tracking,
		ops:      pubs.Ops,
		registry: reg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Process routes one envelope to its transition handler. Unknown event
// kinds are logged and ignored, not an error. A returned error means the
// delivery layer should redeliver; every handler is safe to replay.
func (m *Machine) Process(ctx context.Context, env EventEnvelope) error {
	start := m.now()
	summary := Summarize(env)
	m.notifyOps(summary)

	h, ok := m.registry.Get(env.Type)
	if !ok {
		logger.Warnf("lifecycle: unknown event type %q for trade %d, ignoring", env.Type, env.TradeID)
		m.recordJournal(ctx, env, summary, journal.OutcomeIgnored, start)
		return nil
	}

	err := h.Handle(ctx, m, env)
	outcome := journal.OutcomeOK
	if err != nil {
		outcome = journal.OutcomeError
		logger.Errorf("lifecycle: %s event for trade %d failed: %v", env.Type, env.TradeID, err)
	}
	m.recordJournal(ctx, env, summary, outcome, start)
	if err == nil {
		logger.Infof("lifecycle: %s event for trade %d processed in %dms", env.Type, env.TradeID, m.now().Sub(start).Milliseconds())
	}
	return err
}

func (m *Machine) recordJournal(ctx context.Context, env EventEnvelope, summary, outcome string, start time.Time) {
	if m.journal == nil {
		return
	}
	entry := journal.Entry{
		EventID:   env.ID,
		EventType: string(env.Type),
		Symbol:    env.Symbol,
		TradeID:   env.TradeID,
		Summary:   summary,
		Outcome:   outcome,
		TookMs:    m.now().Sub(start).Milliseconds(),
		CreatedAt: m.now(),
	}
	if err := m.journal.Record(ctx, entry); err != nil {
		logger.Warnf("lifecycle: journal write failed: %v", err)
	}
}

// notifyOps posts the human summary to the team channel. Best effort.
func (m *Machine) notifyOps(text string) {
	if m.ops == nil {
		return
	}
	if err := m.ops.SendText(text); err != nil {
		logger.Warnf("lifecycle: ops notification failed: %v", err)
	}
}

// publishPromo forwards a snapshot to the promotional system. Failures are
// swallowed and logged; promo issues never block the main flow.
func (m *Machine) publishPromo(ctx context.Context, trade *model.TradeModel, stage string) {
	if m.promo == nil {
		return
	}
	snap := notify.TradeSnapshot{
		Symbol:    trade.Symbol,
		Direction: trade.Direction,
		StopPrice: trade.StopPrice,
		Profit1:   trade.Profit1,
		Profit2:   trade.Profit2,
	}
	if err := m.promo.Publish(ctx, snap, stage); err != nil {
		logger.Errorf("lifecycle: promo publish failed for %s (%s): %v", trade.Symbol, stage, err)
	}
}

// publishAlert emits the required member alert. Failure propagates so the
// delivery layer retries the whole event.
func (m *Machine) publishAlert(ctx context.Context, alert notify.Alert) error {
	if m.alerts == nil {
		return nil
	}
	return m.alerts.PublishAlert(ctx, alert)
}

// rollback discards an open unit of work, tolerating the already-committed
// case.
func rollback(uow store.UnitOfWork) {
	if uow == nil {
		return
	}
	if err := uow.Rollback(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Debugf("lifecycle: rollback: %v", err)
	}
}
