package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gridlab/mocks"
)

func TestRegistry_Subscribe_And_Route(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)

	r := NewRegistry()
	domainA, domainB := uuid.New(), uuid.New()

	subA := r.Subscribe("client-a", domainA, sink)
	subB := r.Subscribe("client-b", domainA, sink)
	r.Subscribe("client-b", domainB, sink)

	req.Len(r.SinksForDomain(domainA), 2)
	req.Len(r.SinksForDomain(domainB), 1)
	req.Nil(r.SinksForDomain(uuid.New()))
	req.Len(r.Subscribers(), 2)
	req.NotEqual(subA, subB)
}

func TestRegistry_Resubscribe_Keeps_Subscription(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)

	r := NewRegistry()
	domainA, domainB := uuid.New(), uuid.New()

	// One connection watching two sessions keeps a single delivery sequence.
	first := r.Subscribe("client-a", domainA, sink)
	second := r.Subscribe("client-a", domainB, sink)
	req.Same(first, second)
	req.Len(r.Subscribers(), 1)
}

func TestRegistry_Unsubscribe_Drops_Idle_Connections(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)

	r := NewRegistry()
	domainA, domainB := uuid.New(), uuid.New()
	r.Subscribe("client-a", domainA, sink)
	r.Subscribe("client-a", domainB, sink)

	r.Unsubscribe("client-a", domainA)
	req.Nil(r.SinksForDomain(domainA))
	// Still watching domainB, so the connection survives.
	req.Len(r.Subscribers(), 1)

	r.Unsubscribe("client-a", domainB)
	req.Empty(r.Subscribers())
}
