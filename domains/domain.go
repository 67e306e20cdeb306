// Package domains implements the live multi-user editing session (Domain)
// and its registry (DomainContext). A Domain serializes concurrent edits
// through its own dispatcher, broadcasts incremental changes in application
// order, and on completion commits the final state into the versioned store.
package domains

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gridlab/dispatcher"
	"gridlab/domain"
	"gridlab/domain/event"
	"gridlab/errors"
	"gridlab/vcs"
)

// Persister journals session metadata and applied row ops for crash
// recovery.
type Persister interface {
	SaveInfo(info domain.Info) error
	AppendRow(id domain.ID, op domain.RowOp) error
	Purge(id domain.ID) error
}

// HistoryIndexer receives every revision a session commits, so the full-text
// history index stays in step with the store. Indexing is advisory: a failure
// is logged, the commit stands.
type HistoryIndexer interface {
	Index(info vcs.RevisionInfo) error
}

// Domain is one editing session. All state below the dispatcher line is
// owned by the dispatcher: reading or writing it anywhere else is a bug, and
// methods assert that with VerifyAccess where it matters.
type Domain struct {
	dispatcher *dispatcher.Dispatcher
	log        *slog.Logger
	events     chan<- event.DomainEvent
	persister  Persister
	repo       vcs.Repository
	indexer    HistoryIndexer
	owner      *DomainContext

	info       domain.Info
	state      domain.State
	users      map[string]*domain.User
	joinOrder  []string
	rows       map[string]domain.Row
	rowOrder   []string
	eventIndex int64
	result     *domain.Result
}

func newDomain(
	info domain.Info,
	ctx *DomainContext,
	persister Persister,
	repo vcs.Repository,
	indexer HistoryIndexer,
	events chan<- event.DomainEvent,
	log *slog.Logger,
) *Domain {
	d := &Domain{
		log:       log,
		events:    events,
		persister: persister,
		repo:      repo,
		indexer:   indexer,
		owner:     ctx,
		info:      info,
		state:     domain.StateOpen,
		users:     make(map[string]*domain.User),
		rows:      make(map[string]domain.Row),
	}
	d.dispatcher = dispatcher.New("domain:"+info.ID.String(), log)
	return d
}

func (d *Domain) ID() domain.ID { return d.info.ID }

// Info returns a snapshot of the session metadata, read on the dispatcher.
func (d *Domain) Info(ctx context.Context) (domain.Info, error) {
	return invokeDomain(d, ctx, func() (domain.Info, error) {
		return d.snapshotInfo(), nil
	})
}

// Users returns the participants in join order.
func (d *Domain) Users(ctx context.Context) ([]domain.User, error) {
	return invokeDomain(d, ctx, func() ([]domain.User, error) {
		return lo.Map(d.joinOrder, func(id string, _ int) domain.User {
			return *d.users[id]
		}), nil
	})
}

// Rows returns the in-memory working copy in application order.
func (d *Domain) Rows(ctx context.Context) ([]domain.Row, error) {
	return invokeDomain(d, ctx, func() ([]domain.Row, error) {
		return lo.Map(d.rowOrder, func(id string, _ int) domain.Row {
			return d.rows[id]
		}), nil
	})
}

// Result is set exactly once, at the terminal transition.
func (d *Domain) Result() *domain.Result { return d.result }

// Join adds a participant. The first joiner after restore, or anyone later,
// may watch; editing requires Member authority.
func (d *Domain) Join(ctx context.Context, ident domain.Identity) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if _, ok := d.users[ident.UserID]; ok {
			return fmt.Errorf("%w: user %s already joined", errors.ErrInvalidOperation, ident.UserID)
		}
		d.addUser(ident)
		if err := d.persister.SaveInfo(d.snapshotInfo()); err != nil {
			return err
		}
		d.publish(&event.UserJoined{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Authority: ident.Authority,
		})
		return nil
	})
}

// Leave removes a participant voluntarily.
func (d *Domain) Leave(ctx context.Context, ident domain.Identity) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if _, ok := d.users[ident.UserID]; !ok {
			return fmt.Errorf("%w: %s is not a participant", errors.ErrUserNotFound, ident.UserID)
		}
		if d.info.Owner == ident.UserID && len(d.joinOrder) > 1 {
			return fmt.Errorf("%w: owner must transfer ownership or delete the domain", errors.ErrInvalidOperation)
		}
		d.removeUser(ident.UserID)
		if err := d.persister.SaveInfo(d.snapshotInfo()); err != nil {
			return err
		}
		d.publish(&event.UserRemoved{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Reason: event.ReasonLeave,
		})
		return nil
	})
}

// BeginUserEdit moves a participant into the actively-typing sub-state.
func (d *Domain) BeginUserEdit(ctx context.Context, ident domain.Identity, loc domain.Location) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		user, err := d.editor(ident)
		if err != nil {
			return err
		}
		user.State = domain.Editing
		user.Location = loc
		d.publish(&event.UserEditBegun{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Location: loc,
		})
		return nil
	})
}

func (d *Domain) EndUserEdit(ctx context.Context, ident domain.Identity) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		user, ok := d.users[ident.UserID]
		if !ok {
			return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, ident.UserID)
		}
		user.State = domain.Watching
		d.publish(&event.UserEditEnded{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID,
		})
		return nil
	})
}

// SetUserLocation is a presence update: broadcast only, never persisted.
func (d *Domain) SetUserLocation(ctx context.Context, ident domain.Identity, loc domain.Location) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		user, ok := d.users[ident.UserID]
		if !ok {
			return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, ident.UserID)
		}
		user.Location = loc
		d.publish(&event.UserLocationChanged{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Location: loc,
		})
		return nil
	})
}

// NewRow appends rows to the working copy. The broadcast carries the same
// order the rows were applied in.
func (d *Domain) NewRow(ctx context.Context, ident domain.Identity, rows []domain.Row) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if _, err := d.editor(ident); err != nil {
			return err
		}
		for _, row := range rows {
			if _, exists := d.rows[row.RowID]; exists {
				return fmt.Errorf("%w: row %q already exists", errors.ErrInvalidOperation, row.RowID)
			}
		}
		for _, row := range rows {
			d.rows[row.RowID] = row
			d.rowOrder = append(d.rowOrder, row.RowID)
		}
		op := domain.RowOp{Kind: domain.RowOpAdd, UserID: ident.UserID, Rows: rows, At: time.Now().UTC()}
		if err := d.persister.AppendRow(d.info.ID, op); err != nil {
			return err
		}
		d.publish(&event.RowsAdded{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Rows: rows,
		})
		return nil
	})
}

func (d *Domain) SetRow(ctx context.Context, ident domain.Identity, rows []domain.Row) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if _, err := d.editor(ident); err != nil {
			return err
		}
		for _, row := range rows {
			if _, exists := d.rows[row.RowID]; !exists {
				return fmt.Errorf("%w: row %q", errors.ErrTargetNotFound, row.RowID)
			}
		}
		for _, row := range rows {
			d.rows[row.RowID] = row
		}
		op := domain.RowOp{Kind: domain.RowOpSet, UserID: ident.UserID, Rows: rows, At: time.Now().UTC()}
		if err := d.persister.AppendRow(d.info.ID, op); err != nil {
			return err
		}
		d.publish(&event.RowsSet{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, Rows: rows,
		})
		return nil
	})
}

func (d *Domain) RemoveRow(ctx context.Context, ident domain.Identity, rowIDs []string) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if _, err := d.editor(ident); err != nil {
			return err
		}
		for _, id := range rowIDs {
			if _, exists := d.rows[id]; !exists {
				return fmt.Errorf("%w: row %q", errors.ErrTargetNotFound, id)
			}
		}
		for _, id := range rowIDs {
			delete(d.rows, id)
			d.rowOrder = lo.Without(d.rowOrder, id)
		}
		op := domain.RowOp{Kind: domain.RowOpRemove, UserID: ident.UserID, RowIDs: rowIDs, At: time.Now().UTC()}
		if err := d.persister.AppendRow(d.info.ID, op); err != nil {
			return err
		}
		d.publish(&event.RowsRemoved{
			Header: d.header(taskID, ident.UserID), UserID: ident.UserID, RowIDs: rowIDs,
		})
		return nil
	})
}

// Kick forcibly evicts a participant. The eviction is a mutation like any
// other: it takes its place in the dispatcher queue, and any operation of
// the evicted user that executes after it fails with ErrPermissionDenied,
// even if that operation was already queued when the kick completed.
func (d *Domain) Kick(ctx context.Context, ident domain.Identity, userID, comment string) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if ident.UserID != d.info.Owner && !ident.IsAdmin() {
			return fmt.Errorf("%w: only the owner or an admin may kick", errors.ErrPermissionDenied)
		}
		if userID == d.info.Owner {
			return fmt.Errorf("%w: cannot kick the owner", errors.ErrInvalidOperation)
		}
		if _, ok := d.users[userID]; !ok {
			return fmt.Errorf("%w: %s is not a participant", errors.ErrUserNotFound, userID)
		}
		d.removeUser(userID)
		if err := d.persister.SaveInfo(d.snapshotInfo()); err != nil {
			return err
		}
		d.publish(&event.UserRemoved{
			Header: d.header(taskID, ident.UserID), UserID: userID, Reason: event.ReasonKick, Comment: comment,
		})
		return nil
	})
}

// SetOwner transfers ownership to another participant.
func (d *Domain) SetOwner(ctx context.Context, ident domain.Identity, userID string) (uuid.UUID, error) {
	return d.mutate(ctx, func(taskID uuid.UUID) error {
		if ident.UserID != d.info.Owner && !ident.IsAdmin() {
			return fmt.Errorf("%w: only the owner or an admin may transfer ownership", errors.ErrPermissionDenied)
		}
		if _, ok := d.users[userID]; !ok {
			return fmt.Errorf("%w: %s is not a participant", errors.ErrUserNotFound, userID)
		}
		d.info.Owner = userID
		if err := d.persister.SaveInfo(d.snapshotInfo()); err != nil {
			return err
		}
		d.publish(&event.OwnerChanged{Header: d.header(taskID, ident.UserID), OwnerID: userID})
		return nil
	})
}

// Delete is the terminal transition that commits. With force=false it fails
// while other participants are still editing (kick them first or pass
// force=true). The accumulated result becomes exactly one commit, author =
// owner; if that commit fails the session stays Open so nobody silently
// loses work.
func (d *Domain) Delete(ctx context.Context, ident domain.Identity, force bool) error {
	return d.invoke(ctx, func() error {
		if err := d.authorizeClose(ident, force); err != nil {
			return err
		}
		d.state = domain.StateClosing

		rows := lo.Map(d.rowOrder, func(id string, _ int) domain.Row { return d.rows[id] })
		revision, err := d.commitResult(ident, rows)
		if err != nil {
			// Recoverable: the session stays usable for a later retry.
			d.state = domain.StateOpen
			return err
		}
		d.result = &domain.Result{Target: d.info.Target, Rows: rows, Revision: revision}
		d.close(ident, false, revision)
		return nil
	})
}

// Cancel is the terminal transition that discards: no commit, the journal is
// purged, subscribers see DomainDeleted with Cancelled set.
func (d *Domain) Cancel(ctx context.Context, ident domain.Identity, force bool) error {
	return d.invoke(ctx, func() error {
		if err := d.authorizeClose(ident, force); err != nil {
			return err
		}
		d.state = domain.StateClosing
		d.result = &domain.Result{Target: d.info.Target}
		d.close(ident, true, 0)
		return nil
	})
}

func (d *Domain) authorizeClose(ident domain.Identity, force bool) error {
	if ident.UserID != d.info.Owner && !ident.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin may close the domain", errors.ErrPermissionDenied)
	}
	if force {
		return nil
	}
	editing := lo.Filter(d.joinOrder, func(id string, _ int) bool {
		return id != ident.UserID && d.users[id].State == domain.Editing
	})
	if len(editing) > 0 {
		return fmt.Errorf("%w: users still editing: %v (kick them or use force)", errors.ErrInvalidOperation, editing)
	}
	return nil
}

// commitResult hops from the domain's dispatcher to the repository handle's:
// sequential, never nested back into this domain.
func (d *Domain) commitResult(ident domain.Identity, rows []domain.Row) (int64, error) {
	payload, err := json.MarshalIndent(struct {
		Target domain.TargetID `json:"target"`
		Kind   domain.Kind     `json:"kind"`
		Rows   []domain.Row    `json:"rows"`
	}{d.info.Target, d.info.Kind, rows}, "", "  ")
	if err != nil {
		return 0, err
	}

	rel := targetPath(d.info)
	if err := writeWorkFile(d.repo, rel, payload); err != nil {
		return 0, err
	}
	if err := d.repo.Add(rel); err != nil {
		return 0, err
	}
	comment := fmt.Sprintf("edited %s (%d rows, %d participants)", d.info.Target, len(rows), len(d.joinOrder))
	info, err := d.repo.Commit(d.info.Owner, comment, map[string]string{
		"domain": d.info.ID.String(),
		"kind":   string(d.info.Kind),
	})
	if err != nil {
		return 0, err
	}
	if d.indexer != nil {
		if err := d.indexer.Index(info); err != nil {
			d.log.Warn("Failed to index committed revision",
				"domain", d.info.ID, "revision", info.Revision, "err", err)
		}
	}
	return info.Revision, nil
}

// close finishes the terminal transition: broadcast, purge the journal,
// deregister, dispose the dispatcher. Runs on the dispatcher; the dispatcher
// itself is disposed from a separate goroutine once this task returns.
func (d *Domain) close(ident domain.Identity, cancelled bool, revision int64) {
	d.publish(&event.DomainDeleted{
		Header: d.header(uuid.New(), ident.UserID), Cancelled: cancelled, Revision: revision,
	})
	if err := d.persister.Purge(d.info.ID); err != nil {
		d.log.Warn("Failed to purge domain journal", "domain", d.info.ID, "err", err)
	}
	d.state = domain.StateClosed
	d.owner.remove(d.info.ID, d.info.Target)
	go d.dispatcher.Dispose()
}

// mutate wraps a state change: Open-state check, task ID assignment, and
// translation of a disposed dispatcher into the closed-domain error.
func (d *Domain) mutate(ctx context.Context, fn func(taskID uuid.UUID) error) (uuid.UUID, error) {
	taskID := uuid.New()
	err := d.invoke(ctx, func() error { return fn(taskID) })
	if err != nil {
		return uuid.Nil, err
	}
	return taskID, nil
}

func (d *Domain) invoke(ctx context.Context, fn func() error) error {
	err := d.dispatcher.InvokeContext(ctx, func() error {
		if d.state != domain.StateOpen {
			return fmt.Errorf("%w: domain %s is %s", errors.ErrInvalidOperation, d.info.ID, d.state)
		}
		return fn()
	})
	if err != nil && isClosed(err) {
		return fmt.Errorf("%w: domain %s is closed", errors.ErrInvalidOperation, d.info.ID)
	}
	return err
}

func invokeDomain[T any](d *Domain, ctx context.Context, fn func() (T, error)) (T, error) {
	var out T
	err := d.invoke(ctx, func() error {
		var innerErr error
		out, innerErr = fn()
		return innerErr
	})
	return out, err
}

func isClosed(err error) bool {
	return stderrors.Is(err, errors.ErrDispatcherDisposed)
}

// editor authorizes a content mutation: the caller must be a participant and
// either the owner, currently editing, or an admin. A kicked user is no
// longer a participant, so anything they submit from here on is denied.
func (d *Domain) editor(ident domain.Identity) (*domain.User, error) {
	user, ok := d.users[ident.UserID]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a participant", errors.ErrPermissionDenied, ident.UserID)
	}
	if !ident.CanEdit() {
		return nil, fmt.Errorf("%w: %s authority cannot edit", errors.ErrPermissionDenied, ident.Authority)
	}
	if ident.UserID != d.info.Owner && user.State != domain.Editing && !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: %s must begin editing first", errors.ErrPermissionDenied, ident.UserID)
	}
	return user, nil
}

func (d *Domain) addUser(ident domain.Identity) {
	d.users[ident.UserID] = &domain.User{
		ID:        ident.UserID,
		Authority: ident.Authority,
		State:     domain.Watching,
		Joined:    time.Now().UTC(),
	}
	d.joinOrder = append(d.joinOrder, ident.UserID)
}

func (d *Domain) removeUser(userID string) {
	delete(d.users, userID)
	d.joinOrder = lo.Without(d.joinOrder, userID)
}

// header assigns the event index inside the same dispatcher task as the
// mutation it describes, which is the whole ordering guarantee.
func (d *Domain) header(taskID uuid.UUID, signer string) event.Header {
	d.eventIndex++
	return event.Header{
		Domain:    d.info.ID,
		Index:     d.eventIndex,
		TaskID:    taskID,
		Signature: domain.Sign(signer),
	}
}

// publish blocks rather than drops: event order is load-bearing here.
func (d *Domain) publish(evt event.DomainEvent) {
	d.events <- evt
}

func (d *Domain) snapshotInfo() domain.Info {
	info := d.info
	info.Users = append([]string(nil), d.joinOrder...)
	return info
}

func targetPath(info domain.Info) string {
	return path.Join(string(info.Kind), string(info.Target)+".json")
}

func writeWorkFile(repo vcs.Repository, rel string, data []byte) error {
	abs := filepath.Join(repo.WorkPath(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, data, 0o644)
}
