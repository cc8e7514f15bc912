package lifecycle

import (
	"context"

	"swingflow/internal/logger"
)

// Handler processes one event kind against the trade state machine.
type Handler interface {
	// Type returns the event kind this handler owns.
	Type() EventType
	// Handle applies the transition. It must be idempotent: replaying the
	// same event converges on the same trade/stop/ledger state.
	Handle(ctx context.Context, m *Machine, env EventEnvelope) error
}

// HandlerRegistry manages event handlers and dispatches events to them.
type HandlerRegistry struct {
	handlers map[EventType]Handler
}

// NewHandlerRegistry creates a new registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[EventType]Handler),
	}
}

// Register adds a handler to the registry.
// If a handler for the same event type already exists, it will be replaced.
func (r *HandlerRegistry) Register(h Handler) {
	if h == nil {
		return
	}
	r.handlers[h.Type()] = h
}

// Get returns the handler for the given event type.
func (r *HandlerRegistry) Get(t EventType) (Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

// RegisterDefaultHandlers registers all built-in transition handlers.
func (r *HandlerRegistry) RegisterDefaultHandlers() {
	r.Register(&EntryHitHandler{})
	r.Register(&ProfitHitHandler{})
	r.Register(&StopOutHandler{})
	r.Register(&StopWarningHandler{})
	r.Register(&JumpTargetHandler{})
	r.Register(&ResetHandler{})
	logger.Debugf("lifecycle: registered %d event handlers", len(r.handlers))
}
