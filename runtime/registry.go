package runtime

import (
	"sync"

	"gridlab/contract"
	"gridlab/domain"
)

type Set map[string]struct{}

// Registry tracks live subscriber connections and which sessions each one
// observes. A subscriber has a single Subscription (and so a single delivery
// sequence) no matter how many sessions it watches.
type Registry struct {
	mu            sync.RWMutex
	sessions      map[string]*contract.Subscription
	domainMembers map[domain.ID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:      make(map[string]*contract.Subscription),
		domainMembers: make(map[domain.ID]Set),
	}
}

// SinksForDomain resolves the subscribers currently watching one session.
// Returns nil when nobody is watching; that is not an error.
func (r *Registry) SinksForDomain(id domain.ID) []*contract.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.domainMembers[id]
	if !ok {
		return nil
	}
	var active []*contract.Subscription
	for subscriberID := range members {
		if sub, exists := r.sessions[subscriberID]; exists {
			active = append(active, sub)
		}
	}
	return active
}

// Subscribers returns every live subscription, for aggregate events that go
// to everyone (DomainsCreated, DomainsDeleted).
func (r *Registry) Subscribers() []*contract.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*contract.Subscription, 0, len(r.sessions))
	for _, sub := range r.sessions {
		subs = append(subs, sub)
	}
	return subs
}

// Subscribe registers a subscriber's connection and attaches it to a
// session. Re-subscribing reuses the existing Subscription so the delivery
// sequence keeps increasing across sessions.
func (r *Registry) Subscribe(subscriberID string, id domain.ID, sink contract.EventSink) *contract.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.sessions[subscriberID]
	if !ok {
		sub = contract.NewSubscription(subscriberID, sink)
		r.sessions[subscriberID] = sub
	}
	if _, ok := r.domainMembers[id]; !ok {
		r.domainMembers[id] = make(Set)
	}
	r.domainMembers[id][subscriberID] = struct{}{}
	return sub
}

// Unsubscribe detaches a subscriber from one session, dropping the
// connection entirely once it watches nothing. Explicit unsubscribe on
// disconnect is what keeps the registry leak-free.
func (r *Registry) Unsubscribe(subscriberID string, id domain.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.domainMembers[id]; ok {
		delete(members, subscriberID)
		if len(members) == 0 {
			delete(r.domainMembers, id)
		}
	}
	for _, members := range r.domainMembers {
		if _, still := members[subscriberID]; still {
			return
		}
	}
	delete(r.sessions, subscriberID)
}

var _ contract.IRegistry = (*Registry)(nil)
