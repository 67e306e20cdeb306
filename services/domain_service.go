package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gridlab/contract"
	"gridlab/domain"
	"gridlab/domains"
	"gridlab/errors"
	"gridlab/repositories"
)

var validate = validator.New()

// IDomainService is the transport-facing surface of the editing engine.
// Every call authenticates the token, resolves the session, and forwards to
// the session's dispatcher; nothing here touches session state directly.
type IDomainService interface {
	Create(ctx context.Context, token Token, settings domains.CreateSettings) (domain.Info, error)
	Info(ctx context.Context, token Token, id domain.ID) (domain.Info, error)
	List(ctx context.Context, token Token) ([]domain.Info, error)

	Join(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error)
	Leave(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error)
	Kick(ctx context.Context, token Token, id domain.ID, userID, comment string) (uuid.UUID, error)
	SetOwner(ctx context.Context, token Token, id domain.ID, userID string) (uuid.UUID, error)

	BeginEdit(ctx context.Context, token Token, id domain.ID, loc domain.Location) (uuid.UUID, error)
	EndEdit(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error)
	SetLocation(ctx context.Context, token Token, id domain.ID, loc domain.Location) (uuid.UUID, error)

	NewRow(ctx context.Context, token Token, id domain.ID, rows []domain.Row) (uuid.UUID, error)
	SetRow(ctx context.Context, token Token, id domain.ID, rows []domain.Row) (uuid.UUID, error)
	RemoveRow(ctx context.Context, token Token, id domain.ID, rowIDs []string) (uuid.UUID, error)
	Rows(ctx context.Context, token Token, id domain.ID) ([]domain.Row, error)

	Delete(ctx context.Context, token Token, id domain.ID, force bool) error
	Cancel(ctx context.Context, token Token, id domain.ID, force bool) error

	Watch(token Token, id domain.ID, sink contract.EventSink) (*contract.Subscription, error)
	Unwatch(token Token, id domain.ID) error

	SearchHistory(ctx context.Context, token Token, terms string, limit int) ([]repositories.HistoryHit, uint64, error)
}

type DomainService struct {
	auth     IAuthService
	domains  *domains.DomainContext
	registry contract.IRegistry
	history  repositories.IHistorySearch
}

func NewDomainService(
	auth IAuthService,
	ctx *domains.DomainContext,
	registry contract.IRegistry,
	history repositories.IHistorySearch,
) IDomainService {
	return &DomainService{auth: auth, domains: ctx, registry: registry, history: history}
}

func (s *DomainService) Create(ctx context.Context, token Token, settings domains.CreateSettings) (domain.Info, error) {
	ident, err := s.auth.Authenticate(token)
	if err != nil {
		return domain.Info{}, err
	}
	if err := validate.Struct(settings); err != nil {
		return domain.Info{}, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
	}
	d, err := s.domains.Create(ctx, ident, settings)
	if err != nil {
		return domain.Info{}, err
	}
	return d.Info(ctx)
}

func (s *DomainService) Info(ctx context.Context, token Token, id domain.ID) (domain.Info, error) {
	d, _, err := s.resolve(token, id)
	if err != nil {
		return domain.Info{}, err
	}
	return d.Info(ctx)
}

func (s *DomainService) List(ctx context.Context, token Token) ([]domain.Info, error) {
	if _, err := s.auth.Authenticate(token); err != nil {
		return nil, err
	}
	var infos []domain.Info
	for _, d := range s.domains.Domains() {
		info, err := d.Info(ctx)
		if err != nil {
			// A session racing its own close is not worth failing the list.
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *DomainService) Join(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.Join(ctx, ident)
}

func (s *DomainService) Leave(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.Leave(ctx, ident)
}

func (s *DomainService) Kick(ctx context.Context, token Token, id domain.ID, userID, comment string) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.Kick(ctx, ident, userID, comment)
}

func (s *DomainService) SetOwner(ctx context.Context, token Token, id domain.ID, userID string) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.SetOwner(ctx, ident, userID)
}

func (s *DomainService) BeginEdit(ctx context.Context, token Token, id domain.ID, loc domain.Location) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.BeginUserEdit(ctx, ident, loc)
}

func (s *DomainService) EndEdit(ctx context.Context, token Token, id domain.ID) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.EndUserEdit(ctx, ident)
}

func (s *DomainService) SetLocation(ctx context.Context, token Token, id domain.ID, loc domain.Location) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.SetUserLocation(ctx, ident, loc)
}

func (s *DomainService) NewRow(ctx context.Context, token Token, id domain.ID, rows []domain.Row) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.NewRow(ctx, ident, rows)
}

func (s *DomainService) SetRow(ctx context.Context, token Token, id domain.ID, rows []domain.Row) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.SetRow(ctx, ident, rows)
}

func (s *DomainService) RemoveRow(ctx context.Context, token Token, id domain.ID, rowIDs []string) (uuid.UUID, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return uuid.Nil, err
	}
	return d.RemoveRow(ctx, ident, rowIDs)
}

func (s *DomainService) Rows(ctx context.Context, token Token, id domain.ID) ([]domain.Row, error) {
	d, _, err := s.resolve(token, id)
	if err != nil {
		return nil, err
	}
	return d.Rows(ctx)
}

func (s *DomainService) Delete(ctx context.Context, token Token, id domain.ID, force bool) error {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return err
	}
	return d.Delete(ctx, ident, force)
}

func (s *DomainService) Cancel(ctx context.Context, token Token, id domain.ID, force bool) error {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return err
	}
	return d.Cancel(ctx, ident, force)
}

// Watch attaches the caller's event sink to a session's broadcast stream.
// The subscription is keyed by user, so one connection watching several
// sessions still sees a single strictly increasing delivery sequence.
func (s *DomainService) Watch(token Token, id domain.ID, sink contract.EventSink) (*contract.Subscription, error) {
	d, ident, err := s.resolve(token, id)
	if err != nil {
		return nil, err
	}
	return s.registry.Subscribe(ident.UserID, d.ID(), sink), nil
}

func (s *DomainService) Unwatch(token Token, id domain.ID) error {
	ident, err := s.auth.Authenticate(token)
	if err != nil {
		return err
	}
	// The session may already be gone; unsubscribing by id is still valid.
	s.registry.Unsubscribe(ident.UserID, id)
	return nil
}

func (s *DomainService) SearchHistory(ctx context.Context, token Token, terms string, limit int) ([]repositories.HistoryHit, uint64, error) {
	if _, err := s.auth.Authenticate(token); err != nil {
		return nil, 0, err
	}
	return s.history.Search(ctx, terms, limit)
}

// resolve authenticates and looks the session up, translating an absent
// session into ErrDomainNotFound exactly once,
// instead of in every operation.
func (s *DomainService) resolve(token Token, id domain.ID) (*domains.Domain, domain.Identity, error) {
	ident, err := s.auth.Authenticate(token)
	if err != nil {
		return nil, domain.Identity{}, err
	}
	d := s.domains.Domain(id)
	if d == nil {
		return nil, domain.Identity{}, fmt.Errorf("%w: %s", errors.ErrDomainNotFound, id)
	}
	return d, ident, nil
}
