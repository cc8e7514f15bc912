package notify

import "context"

// Noop implementations back disabled integrations so the machine never
// needs nil checks beyond its own.

type NoopAlertPublisher struct{}

func (NoopAlertPublisher) PublishAlert(context.Context, Alert) error { return nil }

type NoopPromoPublisher struct{}

func (NoopPromoPublisher) Publish(context.Context, TradeSnapshot, string) error { return nil }

type NoopTrackingSignal struct{}

func (NoopTrackingSignal) StopTracking(context.Context, string, string) error { return nil }

type NoopTextNotifier struct{}

func (NoopTextNotifier) SendText(string) error { return nil }
