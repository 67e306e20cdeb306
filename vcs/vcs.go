//go:generate go run go.uber.org/mock/mockgen -source=vcs.go -destination=../mocks/mock_vcs.go -package=mocks
// Package vcs abstracts the version-controlled store that durably persists
// the outcome of editing sessions. Any backend satisfying Provider and
// Repository is pluggable; which backend owns a given base path is recorded
// in a marker file so restore and migration can dispatch without guessing.
package vcs

import (
	"time"

	"github.com/google/uuid"
)

// Settings binds a Repository handle to one store plus its working copy.
type Settings struct {
	BasePath string
}

// RevisionInfo describes one committed revision.
type RevisionInfo struct {
	ID         uuid.UUID         `json:"id"`
	Revision   int64             `json:"revision"`
	Author     string            `json:"author"`
	Comment    string            `json:"comment"`
	At         time.Time         `json:"at"`
	Properties map[string]string `json:"properties,omitempty"`
	Paths      []string          `json:"paths,omitempty"`
}

// RepositoryInfo is the read-only introspection result for a base path.
type RepositoryInfo struct {
	Backend   string    `json:"backend"`
	Head      int64     `json:"head"`
	CreatedAt time.Time `json:"created_at"`
}

// Status enumerates pending working-tree changes relative to the head
// revision.
type Status struct {
	Added     []string `json:"added"`
	Modified  []string `json:"modified"`
	Deleted   []string `json:"deleted"`
	Untracked []string `json:"untracked"`
}

func (s Status) Clean() bool {
	return len(s.Added) == 0 && len(s.Modified) == 0 && len(s.Deleted) == 0 && len(s.Untracked) == 0
}

// Repository is a live handle bound to one store and working copy. All
// mutating operations are fail-fast: the working tree is either fully
// applied or fully rolled back, never observably half-changed.
//
// BeginTransaction/EndTransaction/CancelTransaction nest only one deep per
// handle. A cancelled transaction leaves the working tree byte-for-byte
// identical to the state before Begin.
type Repository interface {
	Add(path string) error
	Move(from, to string) error
	Delete(path string) error
	Copy(from, to string) error

	// Commit turns all pending working-tree changes into exactly one new
	// revision. It fails with errors.ErrConflict when the store advanced
	// underneath this handle; the caller reconciles and retries.
	Commit(author, comment string, properties map[string]string) (RevisionInfo, error)

	// Revert discards uncommitted working-tree changes, restoring head.
	Revert() error

	// Status reports pending working-tree changes relative to the handle's
	// base revision. Without arguments it covers the whole tree; given
	// paths it is restricted to those files and directories.
	Status(paths ...string) (Status, error)
	Log(limit int) ([]RevisionInfo, error)

	BeginTransaction(author, name string) error
	EndTransaction() (RevisionInfo, error)
	CancelTransaction() error

	// WorkPath is the root of this handle's working copy.
	WorkPath() string

	Dispose() error
}

// Provider is the pluggable backend contract (git, svn, or a flat-file+log
// style implementation).
type Provider interface {
	Name() string

	// InitializeRepository creates a brand-new store at basePath seeded
	// from the files under seedPath. Fails if basePath already contains a
	// repository.
	InitializeRepository(basePath, seedPath string, properties map[string]string) error

	CreateInstance(settings Settings) (Repository, error)

	// GetRepositories lists the stores directly under basePath that this
	// backend owns, identified by their marker files.
	GetRepositories(basePath string) ([]string, error)

	GetLog(basePath string, limit int) ([]RevisionInfo, error)
	GetRepositoryInfo(basePath string) (RepositoryInfo, error)
}
