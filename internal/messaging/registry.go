package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Dispatcher processes one raw message body. A nil error means the message may be
// acknowledged; any error means it must not be.
type Dispatcher interface {
	Dispatch(ctx context.Context, body []byte) error
}

// HandlerFunc receives the raw payload of a known event type.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Payload is implemented by every typed event payload.
type Payload interface {
	Validate() error
}

// Outcomes recorded per dispatched message.
const (
	OutcomeHandled      = "handled"
	OutcomeUnhandled    = "unhandled"
	OutcomeSchemaError  = "schema_error"
	OutcomeHandlerError = "handler_error"
)

// DispatchObserver is told the outcome of every dispatched message.
type DispatchObserver func(eventType, outcome string)

// Registry maps event types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	observe  DispatchObserver
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
		observe:  func(string, string) {},
		logger:   logger.With(zap.String("component", "messaging.registry")),
	}
}

// OnDispatch replaces the outcome observer. A nil observer disables it.
func (r *Registry) OnDispatch(fn DispatchObserver) {
	if fn == nil {
		fn = func(string, string) {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observe = fn
}

// Register binds a raw handler. Errors it returns are reported as handler errors
// unless they already wrap ErrSchemaValidation.
func (r *Registry) Register(eventType string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = h
}

// Handle binds a typed handler. The payload is decoded into T and validated before fn runs,
// so fn never sees a payload that fails its schema.
func Handle[T Payload](r *Registry, eventType string, fn func(ctx context.Context, payload T) error) {
	r.Register(eventType, func(ctx context.Context, raw json.RawMessage) error {
		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			return schemaError("decode %s payload: %v", eventType, err)
		}
		if err := payload.Validate(); err != nil {
			return schemaError("%s: %v", eventType, err)
		}
		return fn(ctx, payload)
	})
}

func (r *Registry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

func (r *Registry) Dispatch(ctx context.Context, body []byte) error {
	r.mu.RLock()
	observe := r.observe
	r.mu.RUnlock()

	env, err := DecodeEnvelope(body)
	if err != nil {
		observe("unknown", OutcomeSchemaError)
		r.logger.Error("rejecting malformed envelope", zap.Error(err), zap.ByteString("body", body))
		return err
	}

	log := r.logger.With(zap.String("event_type", env.Type), zap.String("video_id", env.VideoID()))

	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()
	if !ok {
		observe(env.Type, OutcomeUnhandled)
		log.Warn("unhandled event type")
		return nil
	}

	log.Info("event received")

	if err := h(ctx, env.Payload); err != nil {
		if errors.Is(err, ErrSchemaValidation) {
			observe(env.Type, OutcomeSchemaError)
			log.Error("payload failed schema validation", zap.Error(err))
			return err
		}
		observe(env.Type, OutcomeHandlerError)
		log.Error("event handler failed", zap.Error(err))
		return &HandlerError{EventType: env.Type, Err: err}
	}

	observe(env.Type, OutcomeHandled)
	log.Info("event handled")
	return nil
}
