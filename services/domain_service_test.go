package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gridlab/domain"
	"gridlab/domains"
	"gridlab/errors"
	"gridlab/mocks"
	"gridlab/repositories"
	"gridlab/runtime"
)

// newDomainService wires a real DomainContext over mocked persistence, which
// is enough for the facade's auth and resolution behavior.
func newDomainService(t *testing.T, ctrl *gomock.Controller) (IDomainService, Token) {
	t.Helper()

	journal := mocks.NewMockIDomainRepository(ctrl)
	journal.EXPECT().SaveInfo(gomock.Any()).Return(nil).AnyTimes()
	journal.EXPECT().AppendRow(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	journal.EXPECT().Purge(gomock.Any()).Return(nil).AnyTimes()

	repo := mocks.NewMockRepository(ctrl)

	domainCtx := domains.NewDomainContext(slog.Default(), journal, repo, nil, nil, 256)
	t.Cleanup(domainCtx.Dispose)

	users := mocks.NewMockIUserRepository(ctrl)
	users.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Return("id", nil).AnyTimes()
	authSvc := NewAuthService(users, time.Hour)

	token, err := authSvc.Register("alice@example.com", "ComplexPass123!")
	require.NoError(t, err)

	history := mocks.NewMockIHistorySearch(ctrl)
	history.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]repositories.HistoryHit{{Author: "alice@example.com"}}, uint64(1), nil).AnyTimes()

	return NewDomainService(authSvc, domainCtx, runtime.NewRegistry(), history), token
}

func TestDomainService_Create_And_Operate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, token := newDomainService(t, ctrl)
	ctx := context.Background()

	info, err := svc.Create(ctx, token, domains.CreateSettings{
		DataBaseID: "db", Target: "orders", Kind: domain.KindTableContent,
	})
	req.NoError(err)
	req.Equal("alice@example.com", info.Owner)

	_, err = svc.NewRow(ctx, token, info.ID, []domain.Row{{RowID: "r1"}})
	req.NoError(err)

	rows, err := svc.Rows(ctx, token, info.ID)
	req.NoError(err)
	req.Len(rows, 1)

	infos, err := svc.List(ctx, token)
	req.NoError(err)
	req.Len(infos, 1)
}

func TestDomainService_Create_Validates_Settings(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, token := newDomainService(t, ctrl)

	_, err := svc.Create(context.Background(), token, domains.CreateSettings{Target: "orders"})
	req.ErrorIs(err, errors.ErrInvalidOperation)
}

func TestDomainService_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newDomainService(t, ctrl)

	_, err := svc.Join(context.Background(), "forged", uuid.New())
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestDomainService_Unknown_Domain(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, token := newDomainService(t, ctrl)

	_, err := svc.Join(context.Background(), token, uuid.New())
	req.ErrorIs(err, errors.ErrDomainNotFound)
}

func TestDomainService_Watch_And_Search(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, token := newDomainService(t, ctrl)
	ctx := context.Background()

	info, err := svc.Create(ctx, token, domains.CreateSettings{
		DataBaseID: "db", Target: "orders", Kind: domain.KindTableContent,
	})
	req.NoError(err)

	sink := mocks.NewMockEventSink(ctrl)
	sub, err := svc.Watch(token, info.ID, sink)
	req.NoError(err)
	req.Equal("alice@example.com", sub.SubscriberID)
	req.NoError(svc.Unwatch(token, info.ID))

	hits, total, err := svc.SearchHistory(ctx, token, "orders", 10)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
}
