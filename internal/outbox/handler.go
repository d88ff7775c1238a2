// Package outbox delivers side effects the ledger records next to its own
// writes. Events are claimed in batches, passed to the handler registered for
// their type and marked published, failed (retried later) or invalid.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

var (
	ErrEventTypeRequired        = errors.New("event type is required")
	ErrEventHandlerRequired     = errors.New("event handler is required")
	ErrHandlerAlreadyRegistered = errors.New("event handler already registered")
	ErrHandlerNotRegistered     = errors.New("event handler is not registered")
)

// EventHandler handles one outbox event.
type EventHandler func(ctx context.Context, event *domain.OutboxEvent) error

// HandlerRegistry stores event handlers by event type.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: map[string]EventHandler{}}
}

func (r *HandlerRegistry) Register(eventType string, handler EventHandler) error {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return ErrEventTypeRequired
	}
	if handler == nil {
		return ErrEventHandlerRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[eventType]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, eventType)
	}
	r.handlers[eventType] = handler
	return nil
}

func (r *HandlerRegistry) Handle(ctx context.Context, event *domain.OutboxEvent) error {
	r.mu.RLock()
	handler, ok := r.handlers[strings.TrimSpace(event.EventType)]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrHandlerNotRegistered, event.EventType)
	}
	return handler(ctx, event)
}
