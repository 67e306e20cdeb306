package vcs

import (
	"fmt"
	"log/slog"
	"sync"

	"gridlab/errors"
)

// Registry maps backend names to providers and enforces the single-handle
// policy: a given base path has exactly one live Repository handle at a time.
type Registry struct {
	mu        sync.Mutex
	providers map[string]Provider
	handles   map[string]*trackedRepository
	log       *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		handles:   make(map[string]*trackedRepository),
		log:       log,
	}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: repository backend %q", errors.ErrTargetNotFound, name)
	}
	return p, nil
}

// Open reads the marker at basePath, dispatches to the matching provider and
// returns the one live handle. Opening a path that already has a live handle
// fails: all mutation to a working tree goes through a single serialized
// handle.
func (r *Registry) Open(basePath string) (Repository, error) {
	marker, err := ReadMarker(basePath)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, live := r.handles[basePath]; live {
		return nil, fmt.Errorf("%w: repository at %s already has a live handle", errors.ErrInvalidOperation, basePath)
	}
	p, ok := r.providers[marker.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: repository backend %q (marker at %s)", errors.ErrTargetNotFound, marker.Backend, basePath)
	}
	inner, err := p.CreateInstance(Settings{BasePath: basePath})
	if err != nil {
		return nil, err
	}
	handle := &trackedRepository{Repository: inner, registry: r, basePath: basePath}
	r.handles[basePath] = handle
	return handle, nil
}

func (r *Registry) release(basePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, basePath)
}

// trackedRepository releases the path slot when the handle is disposed.
type trackedRepository struct {
	Repository
	registry *Registry
	basePath string
	once     sync.Once
}

func (t *trackedRepository) Dispose() error {
	var err error
	t.once.Do(func() {
		err = t.Repository.Dispose()
		t.registry.release(t.basePath)
	})
	return err
}
