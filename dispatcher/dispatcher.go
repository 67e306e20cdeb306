// Package dispatcher provides the serialized-access primitive every stateful
// entity (Domain, DomainContext, repository handle) is built on. A Dispatcher
// owns a FIFO queue of tasks and a single worker goroutine: at most one task
// executes at any instant, tasks run in submission order, any goroutine may
// submit, only the worker executes.
//
// Reading or writing an entity's state is only legal from inside one of its
// dispatcher's tasks. Cross-entity operations hop from one dispatcher to the
// next sequentially; a task already running on a dispatcher may re-enter that
// same dispatcher with Invoke, which executes inline since the caller already
// holds the execution slot.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"gridlab/errors"
)

type taskState int32

const (
	taskPending taskState = iota
	taskRunning
	taskFinished
	taskCancelled
)

// Task is the handle returned by InvokeAsync. It completes exactly once:
// either the function ran (Err carries its result) or the task was cancelled
// before starting.
type Task struct {
	fn    func() error
	state atomic.Int32
	err   error
	done  chan struct{}
}

// Done is closed when the task finished, failed, or was cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel removes a still-pending task from the queue without side effects.
// A task that already started always runs to completion; Cancel then reports
// false.
func (t *Task) Cancel() bool {
	if t.state.CompareAndSwap(int32(taskPending), int32(taskCancelled)) {
		t.err = errors.ErrTaskCancelled
		close(t.done)
		return true
	}
	return false
}

func (t *Task) finish(err error) {
	t.err = err
	t.state.Store(int32(taskFinished))
	close(t.done)
}

type Dispatcher struct {
	owner string
	log   *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Task
	disposed bool

	workerID atomic.Uint64
	stopped  chan struct{}
}

// New creates a dispatcher bound to one owner object and starts its worker
// goroutine. The owner name only appears in logs and error messages.
func New(owner string, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		owner:   owner,
		log:     log,
		stopped: make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	started := make(chan struct{})
	go d.loop(started)
	<-started
	return d
}

func (d *Dispatcher) loop(started chan struct{}) {
	d.workerID.Store(goroutineID())
	close(started)
	defer close(d.stopped)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.disposed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 && d.disposed {
			d.mu.Unlock()
			return
		}
		task := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		if !task.state.CompareAndSwap(int32(taskPending), int32(taskRunning)) {
			continue // cancelled while queued
		}
		task.finish(d.run(task.fn))
	}
}

// run executes one task, converting a panic into an error so the worker loop
// keeps serving subsequent tasks.
func (d *Dispatcher) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Task panicked", "owner", d.owner, "panic", r)
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return fn()
}

// Invoke submits fn and blocks until it completed, returning its error.
// Called from the dispatcher's own worker goroutine it executes fn inline:
// the caller already holds the execution slot, so queueing would deadlock.
func (d *Dispatcher) Invoke(fn func() error) error {
	if d.OnDispatcher() {
		return d.run(fn)
	}
	task, err := d.submit(fn)
	if err != nil {
		return err
	}
	<-task.done
	return task.err
}

// InvokeAsync submits fn without blocking. Ordering with every other
// submission, from any goroutine, is still FIFO.
func (d *Dispatcher) InvokeAsync(fn func() error) (*Task, error) {
	return d.submit(fn)
}

// InvokeContext behaves like Invoke but abandons a task that has not yet
// started when ctx is cancelled. A task that already began executing always
// runs to completion first, so a mutation is never observed half-applied.
func (d *Dispatcher) InvokeContext(ctx context.Context, fn func() error) error {
	if d.OnDispatcher() {
		return d.run(fn)
	}
	task, err := d.submit(fn)
	if err != nil {
		return err
	}
	select {
	case <-task.done:
		return task.err
	case <-ctx.Done():
		if task.Cancel() {
			return ctx.Err()
		}
		<-task.done
		return task.err
	}
}

func (d *Dispatcher) submit(fn func() error) (*Task, error) {
	task := &Task{fn: fn, done: make(chan struct{})}
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", errors.ErrDispatcherDisposed, d.owner)
	}
	d.queue = append(d.queue, task)
	d.cond.Signal()
	d.mu.Unlock()
	return task, nil
}

// OnDispatcher reports whether the calling goroutine is the worker.
func (d *Dispatcher) OnDispatcher() bool {
	return goroutineID() == d.workerID.Load()
}

// VerifyAccess fails unless called from inside one of this dispatcher's own
// tasks. Entity methods call it defensively so state invariants provably hold
// only in the zone of safety.
func (d *Dispatcher) VerifyAccess() error {
	if !d.OnDispatcher() {
		return fmt.Errorf("%w: %s", errors.ErrNotDispatcherGoroutine, d.owner)
	}
	return nil
}

// Dispose rejects further submissions, fails every still-pending task with
// ErrDispatcherDisposed, lets the currently running task finish, and waits
// for the worker to exit. Calling it from the worker goroutine itself would
// self-deadlock and fails with ErrInvalidOperation.
func (d *Dispatcher) Dispose() error {
	if d.OnDispatcher() {
		return fmt.Errorf("%w: dispose called from own dispatcher %s", errors.ErrInvalidOperation, d.owner)
	}
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		<-d.stopped
		return nil
	}
	d.disposed = true
	pending := d.queue
	d.queue = nil
	d.cond.Broadcast()
	d.mu.Unlock()

	for _, task := range pending {
		if task.state.CompareAndSwap(int32(taskPending), int32(taskCancelled)) {
			task.err = fmt.Errorf("%w: %s", errors.ErrDispatcherDisposed, d.owner)
			close(task.done)
		}
	}
	<-d.stopped
	return nil
}

// Pending reports how many submitted tasks have not started yet.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Disposed reports whether Dispose was called.
func (d *Dispatcher) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// InvokeResult runs fn on d and hands its value back to the caller.
func InvokeResult[T any](d *Dispatcher, fn func() (T, error)) (T, error) {
	var out T
	err := d.Invoke(func() error {
		var innerErr error
		out, innerErr = fn()
		return innerErr
	})
	return out, err
}

// goroutineID extracts the current goroutine id from the runtime stack
// header ("goroutine 123 [running]:"). Used instead of a counting mutex so
// re-entrancy is an explicit "I already hold the slot" check rather than
// recursive locking.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
