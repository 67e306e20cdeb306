package domains

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gridlab/dispatcher"
	"gridlab/domain"
	"gridlab/domain/event"
	"gridlab/errors"
	"gridlab/vcs"
)

// TargetResolver answers whether an editable target still exists, so restore
// can discard sessions whose table or type was removed while the service was
// down.
type TargetResolver interface {
	TargetExists(target domain.TargetID) bool
}

// TargetResolverFunc adapts a plain function.
type TargetResolverFunc func(target domain.TargetID) bool

func (f TargetResolverFunc) TargetExists(target domain.TargetID) bool { return f(target) }

// Loader is the read side of the crash-recovery journal.
type Loader interface {
	LoadAll() ([]PersistedDomain, error)
}

// PersistedDomain is what the journal yields for one interrupted session.
type PersistedDomain struct {
	Info domain.Info
	Ops  []domain.RowOp
}

// CreateSettings describes the session to open.
type CreateSettings struct {
	DataBaseID string          `validate:"required"`
	Target     domain.TargetID `validate:"required"`
	Kind       domain.Kind     `validate:"required"`
}

// DomainContext is the registry and lifecycle manager for all active
// sessions. It is an explicit object handed to constructors, created at
// service start and disposed at shutdown; nothing here is ambient.
//
// Registry mutations run on the context's own dispatcher. Each Domain's
// state lives behind that Domain's dispatcher; the two never await each
// other in a cycle.
type DomainContext struct {
	dispatcher *dispatcher.Dispatcher
	log        *slog.Logger
	persister  Persister
	repo       vcs.Repository
	indexer    HistoryIndexer
	resolver   TargetResolver

	domains    map[domain.ID]*Domain
	targets    map[domain.TargetID]domain.ID
	events     chan event.DomainEvent
	eventIndex int64
}

func NewDomainContext(
	log *slog.Logger,
	persister Persister,
	repo vcs.Repository,
	indexer HistoryIndexer,
	resolver TargetResolver,
	bufferSize int,
) *DomainContext {
	c := &DomainContext{
		log:       log,
		persister: persister,
		repo:      repo,
		indexer:   indexer,
		resolver:  resolver,
		domains:   make(map[domain.ID]*Domain),
		targets:   make(map[domain.TargetID]domain.ID),
		events:    make(chan event.DomainEvent, bufferSize),
	}
	c.dispatcher = dispatcher.New("domain-context", log)
	return c
}

// Events is the single ordered stream the fan-out worker drains.
func (c *DomainContext) Events() <-chan event.DomainEvent { return c.events }

// Create opens a new session over a target. At most one active session may
// exist per target: a collision fails naming the existing session's owner so
// the caller can ask to join instead.
func (c *DomainContext) Create(ctx context.Context, ident domain.Identity, settings CreateSettings) (*Domain, error) {
	if !ident.CanEdit() {
		return nil, fmt.Errorf("%w: %s authority cannot create a domain", errors.ErrPermissionDenied, ident.Authority)
	}
	return dispatcher.InvokeResult(c.dispatcher, func() (*Domain, error) {
		if existingID, busy := c.targets[settings.Target]; busy {
			existing := c.domains[existingID]
			return nil, fmt.Errorf(
				"%w: target %q is already being edited in domain %s owned by %s",
				errors.ErrInvalidOperation, settings.Target, existingID, existing.info.Owner)
		}

		info := domain.Info{
			ID:         uuid.New(),
			DataBaseID: settings.DataBaseID,
			Target:     settings.Target,
			Kind:       settings.Kind,
			Creator:    ident.UserID,
			Owner:      ident.UserID,
			CreatedAt:  domain.Sign(ident.UserID).At,
		}
		d := newDomain(info, c, c.persister, c.repo, c.indexer, c.events, c.log)
		d.addUser(ident)
		if err := c.persister.SaveInfo(d.snapshotInfo()); err != nil {
			go d.dispatcher.Dispose()
			return nil, err
		}

		c.domains[info.ID] = d
		c.targets[info.Target] = info.ID
		c.eventIndex++
		c.events <- &event.DomainCreated{
			Header: event.Header{
				Domain: info.ID, Index: c.eventIndex, TaskID: uuid.New(), Signature: domain.Sign(ident.UserID),
			},
			Info: d.snapshotInfo(),
		}
		c.log.Info("Domain created", "domain", info.ID, "target", info.Target, "owner", ident.UserID)
		return d, nil
	})
}

// Domain looks a session up; nil means absent, which is not an error here.
// Callers that require existence raise ErrDomainNotFound themselves.
func (c *DomainContext) Domain(id domain.ID) *Domain {
	d, err := dispatcher.InvokeResult(c.dispatcher, func() (*Domain, error) {
		return c.domains[id], nil
	})
	if err != nil {
		return nil
	}
	return d
}

// DomainByTarget resolves the active session over a target, if any.
func (c *DomainContext) DomainByTarget(target domain.TargetID) *Domain {
	d, err := dispatcher.InvokeResult(c.dispatcher, func() (*Domain, error) {
		if id, ok := c.targets[target]; ok {
			return c.domains[id], nil
		}
		return nil, nil
	})
	if err != nil {
		return nil
	}
	return d
}

// Domains snapshots the active sessions.
func (c *DomainContext) Domains() []*Domain {
	ds, _ := dispatcher.InvokeResult(c.dispatcher, func() ([]*Domain, error) {
		out := make([]*Domain, 0, len(c.domains))
		for _, d := range c.domains {
			out = append(out, d)
		}
		return out, nil
	})
	return ds
}

// Restore re-hydrates sessions left open across a prior shutdown. A session
// whose target no longer resolves is discarded with a warning; one bad
// journal entry never aborts the rest. Restoring twice does not duplicate:
// sessions already registered are skipped.
func (c *DomainContext) Restore(ctx context.Context, loader Loader) error {
	persisted, err := loader.LoadAll()
	if err != nil {
		return fmt.Errorf("loading domain journal: %w", err)
	}
	return c.dispatcher.Invoke(func() error {
		for _, p := range persisted {
			if _, already := c.domains[p.Info.ID]; already {
				continue
			}
			if c.resolver != nil && !c.resolver.TargetExists(p.Info.Target) {
				c.log.Warn("Discarding orphaned domain, target no longer exists",
					"domain", p.Info.ID, "target", p.Info.Target)
				if err := c.persister.Purge(p.Info.ID); err != nil {
					c.log.Warn("Failed to purge orphaned domain", "domain", p.Info.ID, "err", err)
				}
				continue
			}

			d := newDomain(p.Info, c, c.persister, c.repo, c.indexer, c.events, c.log)
			for _, userID := range p.Info.Users {
				authority := domain.Member
				if userID == p.Info.Owner {
					authority = domain.Admin
				}
				d.addUser(domain.Identity{UserID: userID, Authority: authority})
			}
			replayOps(d, p.Ops)

			c.domains[p.Info.ID] = d
			c.targets[p.Info.Target] = p.Info.ID
			c.log.Info("Domain restored", "domain", p.Info.ID, "target", p.Info.Target,
				"users", len(p.Info.Users), "ops", len(p.Ops))
		}
		return nil
	})
}

// replayOps rebuilds the in-memory working copy. Runs before the domain is
// reachable, so touching its state directly is safe here.
func replayOps(d *Domain, ops []domain.RowOp) {
	for _, op := range ops {
		switch op.Kind {
		case domain.RowOpAdd:
			for _, row := range op.Rows {
				if _, exists := d.rows[row.RowID]; !exists {
					d.rows[row.RowID] = row
					d.rowOrder = append(d.rowOrder, row.RowID)
				}
			}
		case domain.RowOpSet:
			for _, row := range op.Rows {
				if _, exists := d.rows[row.RowID]; exists {
					d.rows[row.RowID] = row
				}
			}
		case domain.RowOpRemove:
			for _, id := range op.RowIDs {
				if _, exists := d.rows[id]; exists {
					delete(d.rows, id)
					d.rowOrder = lo.Without(d.rowOrder, id)
				}
			}
		}
	}
}

// remove deregisters a closed session. Called from the closing domain's own
// dispatcher; the hop onto the context dispatcher is sequential, never a
// cycle.
func (c *DomainContext) remove(id domain.ID, target domain.TargetID) {
	_ = c.dispatcher.Invoke(func() error {
		delete(c.domains, id)
		if c.targets[target] == id {
			delete(c.targets, target)
		}
		return nil
	})
}

// Dispose cancels every remaining session's dispatcher and the context's
// own. Called at service shutdown.
func (c *DomainContext) Dispose() {
	for _, d := range c.Domains() {
		_ = d.dispatcher.Dispose()
	}
	_ = c.dispatcher.Dispose()
}
