package workers

import (
	"context"
	"log/slog"
	"time"

	"gridlab/contract"
	"gridlab/domain/event"
	"gridlab/observability"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the single ordered event stream produced by the
// domain dispatchers and delivers each event to the subscribers watching
// that session. Because the loop is one goroutine, per-subscription
// delivery sequences are strictly increasing and preserve the order in
// which mutations were applied.
//
// Delivery is best effort: a slow or failing sink is logged and skipped,
// never retried here. Transports that need stronger guarantees reconcile
// with the sequence index on their side.
type EventFanout struct {
	Log        *slog.Logger
	Name       contract.WorkerName
	Events     <-chan event.DomainEvent
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
	timeout    time.Duration
}

func NewEventFanout(
	log *slog.Logger,
	events <-chan event.DomainEvent,
	registry contract.IRegistry,
	monitoring *observability.MonitoringManager,
	timeout time.Duration,
) *EventFanout {
	return &EventFanout{
		Log:        log,
		Events:     events,
		registry:   registry,
		monitoring: monitoring,
		timeout:    timeout,
	}
}

func (w *EventFanout) WithName(name string) contract.Worker {
	w.Name = contract.WorkerName(name)
	return w
}

func (w *EventFanout) GetName() contract.WorkerName { return w.Name }

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	subs := w.subscribersFor(evt)
	for _, sub := range subs {
		deliveryCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := sub.Deliver(deliveryCtx, evt)
		cancel()
		if err != nil {
			w.Log.Warn("Event delivery failed",
				"subscriber", sub.SubscriberID, "domain", evt.DomainID(), "err", err)
		}
	}
	if w.monitoring != nil {
		w.monitoring.IncrEventsPublished()
		w.count(evt)
	}
}

// count feeds the lifecycle counters the debug endpoint exposes.
func (w *EventFanout) count(evt event.DomainEvent) {
	switch e := evt.(type) {
	case *event.DomainCreated:
		w.monitoring.IncrDomainsCreated()
	case *event.DomainDeleted:
		w.monitoring.IncrDomainsClosed()
		if !e.Cancelled {
			w.monitoring.IncrCommitsOK()
		}
	}
}

// subscribersFor routes lifecycle announcements to every live subscriber
// and everything else to the session's watchers only.
func (w *EventFanout) subscribersFor(evt event.DomainEvent) []*contract.Subscription {
	switch evt.(type) {
	case *event.DomainCreated, *event.DomainDeleted:
		return w.registry.Subscribers()
	default:
		return w.registry.SinksForDomain(evt.DomainID())
	}
}
