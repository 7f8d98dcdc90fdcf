package ledger

import (
	"context"

	"github.com/finbooks/backend/internal/domain/shared"
)

// publishEvents drains the recorded domain events of the given aggregates
// into the publisher. Publishing happens after the transaction commits, so
// handlers never observe rolled-back work. A nil publisher drops the events.
func publishEvents(ctx context.Context, pub shared.EventPublisher, aggregates ...shared.AggregateRoot) {
	if pub == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = pub.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}

// publish sends service-level events that no aggregate carries, such as the
// allocation events whose company scope lives on the payment
func publish(ctx context.Context, pub shared.EventPublisher, events ...shared.DomainEvent) {
	if pub == nil || len(events) == 0 {
		return
	}
	_ = pub.Publish(ctx, events...)
}
