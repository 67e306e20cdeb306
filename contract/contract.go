//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"gridlab/domain"
	"gridlab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Delivery is what a subscriber receives: the event plus a per-subscription
// sequence index. The index is strictly increasing; a subscriber never
// observes index n+1 before n, so at-least-once transports can deduplicate
// and reorder behind this interface.
type Delivery struct {
	Sequence int64
	Event    event.DomainEvent
}

// EventSink is the fan-out boundary. RPC transports implement it; delivery
// is best effort, the engine never assumes exactly-once.
type EventSink interface {
	Consume(ctx context.Context, d Delivery) error
}

// IRegistry tracks which subscribers receive a given session's events.
type IRegistry interface {
	SinksForDomain(id domain.ID) []*Subscription
	Subscribers() []*Subscription
	Subscribe(subscriberID string, id domain.ID, sink EventSink) *Subscription
	Unsubscribe(subscriberID string, id domain.ID)
}
