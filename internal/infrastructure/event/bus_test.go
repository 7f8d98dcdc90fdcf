package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubEvent implements DomainEvent for testing
type stubEvent struct {
	shared.BaseDomainEvent
}

func newStubEvent(eventType string) *stubEvent {
	return &stubEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "StubAggregate", uuid.New(), uuid.New()),
	}
}

// stubHandler implements EventHandler for testing
type stubHandler struct {
	eventTypes []string
	err        error
	panics     bool
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func newStubHandler(eventTypes ...string) *stubHandler {
	return &stubHandler{eventTypes: eventTypes}
}

func (h *stubHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *stubHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *stubHandler) handledEvents() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newStubHandler("DocumentSettled")
	bus.Subscribe(handler)

	event := newStubEvent("DocumentSettled")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.handledEvents(), 1)
	assert.Equal(t, event, handler.handledEvents()[0])
}

func TestInMemoryEventBus_Publish_IgnoresOtherTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newStubHandler("DocumentSettled")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("PaymentRecorded")))
	assert.Empty(t, handler.handledEvents())
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newStubHandler("AllocationCreated")
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newStubEvent("AllocationCreated"), newStubEvent("AllocationCreated"))
	require.NoError(t, err)
	assert.Len(t, handler.handledEvents(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	first := newStubHandler("DocumentCreated")
	second := newStubHandler("DocumentCreated")
	bus.Subscribe(first)
	bus.Subscribe(second)

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("DocumentCreated")))
	assert.Len(t, first.handledEvents(), 1)
	assert.Len(t, second.handledEvents(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := newStubHandler() // no event types means every event
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("Anything")))
	assert.Len(t, wildcard.handledEvents(), 1)
}

func TestInMemoryEventBus_Publish_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newStubHandler("DocumentSettled")
	failing.err = errors.New("downstream unavailable")
	healthy := newStubHandler("DocumentSettled")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("DocumentSettled")))
	assert.Len(t, healthy.handledEvents(), 1)
}

func TestInMemoryEventBus_Publish_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	exploding := newStubHandler("DocumentSettled")
	exploding.panics = true
	healthy := newStubHandler("DocumentSettled")
	bus.Subscribe(exploding)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newStubEvent("DocumentSettled"))
	})
	assert.Len(t, healthy.handledEvents(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newStubHandler("PeriodLocked")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("PeriodLocked")))
	assert.Empty(t, handler.handledEvents())
}

func TestInMemoryEventBus_SubscribeExplicitTypesWin(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newStubHandler("DocumentCreated")
	// Explicit subscription types override the handler's own list
	bus.Subscribe(handler, "PaymentRecorded")

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("DocumentCreated")))
	assert.Empty(t, handler.handledEvents())

	require.NoError(t, bus.Publish(context.Background(), newStubEvent("PaymentRecorded")))
	assert.Len(t, handler.handledEvents(), 1)
}
