package e2e

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"gridlab/contract"
	"gridlab/domain"
	"gridlab/domain/event"
	"gridlab/domains"
	"gridlab/errors"
	"gridlab/observability"
	"gridlab/repositories"
	"gridlab/runtime"
	"gridlab/runtime/workers"
	"gridlab/services"
	"gridlab/vcs"
	"gridlab/vcs/badgervcs"
)

// collectorSink records every delivery it receives, standing in for a
// client transport.
type collectorSink struct {
	mu         sync.Mutex
	deliveries []contract.Delivery
}

func (c *collectorSink) Consume(ctx context.Context, d contract.Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, d)
	return nil
}

func (c *collectorSink) snapshot() []contract.Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]contract.Delivery(nil), c.deliveries...)
}

type engine struct {
	domainService services.IDomainService
	authService   services.IAuthService
	repo          vcs.Repository
	supervisor    *workers.Supervisor
}

// startEngine wires the full stack in-process: journal store, versioned
// store, session registry, fan-out under supervision, auth, services.
func startEngine(t *testing.T, cfg Config) *engine {
	t.Helper()
	req := require.New(t)
	log := slog.Default()

	// Reduced to 16 Mo for testing (avoid 2 Go of preallocated vlog)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	vcsRegistry := vcs.NewRegistry(log)
	provider := badgervcs.NewProvider(log)
	vcsRegistry.Register(provider)
	repoBase := t.TempDir() + "/repo"
	req.NoError(provider.InitializeRepository(repoBase, "", nil))
	repo, err := vcsRegistry.Open(repoBase)
	req.NoError(err)
	t.Cleanup(func() { _ = repo.Dispose() })

	journal := repositories.NewDomainRepository(db, log)
	historySearch := repositories.NewHistorySearch(blugeWriter, log)
	domainCtx := domains.NewDomainContext(log, journal, repo, historySearch, nil, cfg.BufferSize)
	t.Cleanup(domainCtx.Dispose)

	monitoring := observability.NewMonitoringManager(log)
	subscriberRegistry := runtime.NewRegistry()
	sup := workers.NewSupervisor(log, 0)
	sup.Add(workers.NewEventFanout(log, domainCtx.Events(), subscriberRegistry, monitoring, cfg.SinkTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()
	t.Cleanup(func() {
		cancel()
		<-supDone
	})

	authService := services.NewAuthService(repositories.NewUserRepository(db), cfg.TokenDuration)
	domainService := services.NewDomainService(authService, domainCtx, subscriberRegistry, historySearch)

	return &engine{
		domainService: domainService,
		authService:   authService,
		repo:          repo,
		supervisor:    sup,
	}
}

// Test_Scenario_Orders walks the whole collaborative editing flow over one
// table: open, contested create, join, concurrent edits, refused close,
// kick, commit.
func Test_Scenario_Orders(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ScenarioTimeout)
	defer cancel()

	eng := startEngine(t, cfg)
	svc := eng.domainService

	// 1. Two accounts.
	aliceToken, err := eng.authService.Register("alice@example.com", "ComplexPass123!")
	req.NoError(err)
	bobToken, err := eng.authService.Register("bob@example.com", "OtherComplex456$")
	req.NoError(err)

	// 2. Alice opens a session over the orders table.
	info, err := svc.Create(ctx, aliceToken, domains.CreateSettings{
		DataBaseID: "warehouse", Target: "orders", Kind: domain.KindTableContent,
	})
	req.NoError(err)
	req.Equal("alice@example.com", info.Owner)

	// 3. Bob cannot open a second session over the same target; the error
	// names the current owner so he knows whom to ask.
	_, err = svc.Create(ctx, bobToken, domains.CreateSettings{
		DataBaseID: "warehouse", Target: "orders", Kind: domain.KindTableContent,
	})
	req.ErrorIs(err, errors.ErrInvalidOperation)
	req.Contains(err.Error(), "alice@example.com")

	// 4. So he joins and watches the broadcast stream.
	sink := &collectorSink{}
	_, err = svc.Watch(bobToken, info.ID, sink)
	req.NoError(err)
	_, err = svc.Join(ctx, bobToken, info.ID)
	req.NoError(err)
	_, err = svc.BeginEdit(ctx, bobToken, info.ID, domain.Location{Table: "orders", Row: "1"})
	req.NoError(err)

	// 5. Both edit.
	_, err = svc.NewRow(ctx, aliceToken, info.ID, []domain.Row{
		{RowID: "ord-1", Fields: map[string]string{"sku": "A-100", "qty": "2"}},
	})
	req.NoError(err)
	_, err = svc.NewRow(ctx, bobToken, info.ID, []domain.Row{
		{RowID: "ord-2", Fields: map[string]string{"sku": "B-200", "qty": "7"}},
	})
	req.NoError(err)
	_, err = svc.SetRow(ctx, bobToken, info.ID, []domain.Row{
		{RowID: "ord-1", Fields: map[string]string{"sku": "A-100", "qty": "3"}},
	})
	req.NoError(err)

	// 6. Closing politely fails while Bob is mid-edit.
	err = svc.Delete(ctx, aliceToken, info.ID, false)
	req.ErrorIs(err, errors.ErrInvalidOperation)

	// 7. Alice kicks Bob; whatever he sends afterwards is denied.
	_, err = svc.Kick(ctx, aliceToken, info.ID, "bob@example.com", "closing up")
	req.NoError(err)
	_, err = svc.NewRow(ctx, bobToken, info.ID, []domain.Row{{RowID: "ord-3"}})
	req.ErrorIs(err, errors.ErrPermissionDenied)

	// 8. Now the close goes through and lands as exactly one commit that
	// carries both users' surviving work.
	req.NoError(svc.Delete(ctx, aliceToken, info.ID, false))

	log, err := eng.repo.Log(0)
	req.NoError(err)
	req.Len(log, 2) // initial import + the session's commit
	req.Equal("alice@example.com", log[0].Author)
	req.Equal(info.ID.String(), log[0].Properties["domain"])

	// 9. The commit is findable in the history index by its comment.
	hits, total, err := svc.SearchHistory(ctx, aliceToken, "edited", 10)
	req.NoError(err)
	req.EqualValues(1, total)
	req.Equal(log[0].ID.String(), hits[0].RevisionID)
	req.Equal("alice@example.com", hits[0].Author)

	// 10. The session is gone.
	_, err = svc.Join(ctx, bobToken, info.ID)
	req.Error(err)

	// 11. Bob's subscription saw everything in order: strictly increasing
	// delivery sequences and event indices, ending with the deletion.
	waitForEvent(t, sink, func(d contract.Delivery) bool {
		_, ok := d.Event.(*event.DomainDeleted)
		return ok
	})

	deliveries := sink.snapshot()
	var lastSeq, lastIndex int64
	for _, d := range deliveries {
		req.Greater(d.Sequence, lastSeq)
		lastSeq = d.Sequence
		if d.Event.DomainID() == info.ID {
			req.Greater(d.Event.Seq(), lastIndex)
			lastIndex = d.Event.Seq()
		}
	}

	var rowEvents int
	for _, d := range deliveries {
		switch d.Event.(type) {
		case *event.RowsAdded, *event.RowsSet:
			rowEvents++
		}
	}
	req.Equal(3, rowEvents)
}

func waitForEvent(t *testing.T, sink *collectorSink, match func(contract.Delivery) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, d := range sink.snapshot() {
			if match(d) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected event never delivered")
}
