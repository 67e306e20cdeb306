package contract

import (
	"context"
	"sync/atomic"

	"gridlab/domain/event"
)

// Subscription pairs a subscriber's sink with its delivery counter. Deliver
// is only called from the fan-out worker's single goroutine, which is what
// makes the per-subscription sequence strictly increasing.
type Subscription struct {
	SubscriberID string
	sink         EventSink
	seq          atomic.Int64
}

func NewSubscription(subscriberID string, sink EventSink) *Subscription {
	return &Subscription{SubscriberID: subscriberID, sink: sink}
}

func (s *Subscription) Deliver(ctx context.Context, evt event.DomainEvent) error {
	return s.sink.Consume(ctx, Delivery{Sequence: s.seq.Add(1), Event: evt})
}
