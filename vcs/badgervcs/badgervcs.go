// Package badgervcs is the flat-file+log backend of the vcs contract: a
// plain working-tree directory plus a badger store holding one full snapshot
// per revision. Revisions are keyed with a zero-padded revision number so a
// prefix scan walks history in order.
package badgervcs

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"gridlab/dispatcher"
	"gridlab/errors"
	"gridlab/vcs"
)

const (
	Name = "badger"

	workingDir = "working"
	storeDir   = "store"

	headKey   = "head"
	revPrefix = "rev:"
)

// revision is the stored form: revision metadata plus a full snapshot of the
// working tree at commit time.
type revision struct {
	Info  vcs.RevisionInfo  `json:"info"`
	Files map[string][]byte `json:"files"`
}

func revKey(n int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", revPrefix, n))
}

type Provider struct {
	log *slog.Logger
}

func NewProvider(log *slog.Logger) *Provider {
	return &Provider{log: log}
}

func (p *Provider) Name() string { return Name }

// InitializeRepository creates a brand-new store at basePath seeded from the
// files under seedPath: revision 1 is a snapshot of the seed.
func (p *Provider) InitializeRepository(basePath, seedPath string, properties map[string]string) error {
	if vcs.HasMarker(basePath) {
		return fmt.Errorf("%s already contains a repository: %w", basePath, os.ErrExist)
	}
	work := filepath.Join(basePath, workingDir)
	if err := os.MkdirAll(work, 0o755); err != nil {
		return err
	}
	if seedPath != "" {
		if err := vcs.CopyTree(seedPath, work); err != nil {
			return fmt.Errorf("seeding working tree: %w", err)
		}
	}

	db, err := openStore(basePath)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := snapshot(work)
	if err != nil {
		return err
	}
	rev := revision{
		Info: vcs.RevisionInfo{
			ID:         uuid.New(),
			Revision:   1,
			Author:     "system",
			Comment:    "initial import",
			At:         time.Now().UTC(),
			Properties: properties,
			Paths:      lo.Keys(files),
		},
		Files: files,
	}
	if err := writeRevision(db, rev); err != nil {
		return err
	}
	return vcs.WriteMarker(basePath, vcs.Marker{Backend: Name, Serializer: "json"})
}

func (p *Provider) CreateInstance(settings vcs.Settings) (vcs.Repository, error) {
	db, err := openStore(settings.BasePath)
	if err != nil {
		return nil, err
	}
	head, err := readHead(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	r := &repository{
		basePath: settings.BasePath,
		workPath: filepath.Join(settings.BasePath, workingDir),
		db:       db,
		base:     head,
		log:      p.log,
	}
	r.dispatcher = dispatcher.New("repository:"+settings.BasePath, p.log)
	return r, nil
}

// GetRepositories scans the direct children of basePath for stores this
// backend owns.
func (p *Provider) GetRepositories(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("listing repositories under %s: %w", basePath, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		marker, err := vcs.ReadMarker(filepath.Join(basePath, entry.Name()))
		if err != nil || marker.Backend != Name {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (p *Provider) GetLog(basePath string, limit int) ([]vcs.RevisionInfo, error) {
	db, err := openStore(basePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return readLog(db, limit)
}

func (p *Provider) GetRepositoryInfo(basePath string) (vcs.RepositoryInfo, error) {
	db, err := openStore(basePath)
	if err != nil {
		return vcs.RepositoryInfo{}, err
	}
	defer db.Close()

	head, err := readHead(db)
	if err != nil {
		return vcs.RepositoryInfo{}, err
	}
	first, err := readRevision(db, 1)
	if err != nil {
		return vcs.RepositoryInfo{}, err
	}
	return vcs.RepositoryInfo{Backend: Name, Head: head, CreatedAt: first.Info.At}, nil
}

// repository is the single live handle for a base path. Every operation runs
// on the handle's own dispatcher, so working tree and store mutate strictly
// one operation at a time.
type repository struct {
	basePath   string
	workPath   string
	db         *badger.DB
	dispatcher *dispatcher.Dispatcher
	log        *slog.Logger

	base   int64 // head revision this working tree is based on
	staged []string

	txn *transaction
}

// transaction is the single-depth begin/end/cancel grouping. backup holds a
// byte-for-byte copy of the working tree taken at Begin.
type transaction struct {
	author string
	name   string
	backup string
}

func (r *repository) WorkPath() string { return r.workPath }

func (r *repository) Add(path string) error {
	return r.dispatcher.Invoke(func() error {
		abs := filepath.Join(r.workPath, path)
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("add %s: %w", path, err)
		}
		r.stage(path)
		return nil
	})
}

func (r *repository) Move(from, to string) error {
	return r.dispatcher.Invoke(func() error {
		src := filepath.Join(r.workPath, from)
		dst := filepath.Join(r.workPath, to)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("move %s -> %s: %w", from, to, err)
		}
		r.stage(from)
		r.stage(to)
		return nil
	})
}

func (r *repository) Delete(path string) error {
	return r.dispatcher.Invoke(func() error {
		if err := os.RemoveAll(filepath.Join(r.workPath, path)); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		r.stage(path)
		return nil
	})
}

func (r *repository) Copy(from, to string) error {
	return r.dispatcher.Invoke(func() error {
		src := filepath.Join(r.workPath, from)
		dst := filepath.Join(r.workPath, to)
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("copy %s -> %s: %w", from, to, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		r.stage(to)
		return nil
	})
}

func (r *repository) stage(path string) {
	path = filepath.ToSlash(path)
	if !lo.Contains(r.staged, path) {
		r.staged = append(r.staged, path)
	}
}

func (r *repository) Commit(author, comment string, properties map[string]string) (vcs.RevisionInfo, error) {
	return dispatcher.InvokeResult(r.dispatcher, func() (vcs.RevisionInfo, error) {
		return r.commitLocked(author, comment, properties)
	})
}

// commitLocked runs inside the dispatcher. Shared by Commit and
// EndTransaction.
func (r *repository) commitLocked(author, comment string, properties map[string]string) (vcs.RevisionInfo, error) {
	head, err := readHead(r.db)
	if err != nil {
		return vcs.RevisionInfo{}, err
	}
	if head != r.base {
		return vcs.RevisionInfo{}, fmt.Errorf(
			"%w: store at revision %d, handle based on %d", errors.ErrConflict, head, r.base)
	}

	files, err := snapshot(r.workPath)
	if err != nil {
		return vcs.RevisionInfo{}, err
	}
	changed, err := r.changedPaths(files, head)
	if err != nil {
		return vcs.RevisionInfo{}, err
	}
	rev := revision{
		Info: vcs.RevisionInfo{
			ID:         uuid.New(),
			Revision:   head + 1,
			Author:     author,
			Comment:    comment,
			At:         time.Now().UTC(),
			Properties: properties,
			Paths:      changed,
		},
		Files: files,
	}
	if err := writeRevision(r.db, rev); err != nil {
		return vcs.RevisionInfo{}, err
	}
	r.base = rev.Info.Revision
	r.staged = nil
	r.log.Info("Committed revision", "base", r.basePath, "revision", rev.Info.Revision, "author", author)
	return rev.Info, nil
}

func (r *repository) changedPaths(files map[string][]byte, head int64) ([]string, error) {
	prev, err := readRevision(r.db, head)
	if err != nil {
		return nil, err
	}
	var changed []string
	for path, data := range files {
		if old, ok := prev.Files[path]; !ok || !bytes.Equal(old, data) {
			changed = append(changed, path)
		}
	}
	for path := range prev.Files {
		if _, ok := files[path]; !ok {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

func (r *repository) Revert() error {
	return r.dispatcher.Invoke(func() error {
		rev, err := readRevision(r.db, r.base)
		if err != nil {
			return err
		}
		if err := restoreTree(r.workPath, rev.Files); err != nil {
			return err
		}
		r.staged = nil
		return nil
	})
}

func (r *repository) Status(paths ...string) (vcs.Status, error) {
	return dispatcher.InvokeResult(r.dispatcher, func() (vcs.Status, error) {
		rev, err := readRevision(r.db, r.base)
		if err != nil {
			return vcs.Status{}, err
		}
		files, err := snapshot(r.workPath)
		if err != nil {
			return vcs.Status{}, err
		}

		var st vcs.Status
		for path, data := range files {
			if !underPaths(path, paths) {
				continue
			}
			old, tracked := rev.Files[path]
			switch {
			case !tracked && lo.Contains(r.staged, path):
				st.Added = append(st.Added, path)
			case !tracked:
				st.Untracked = append(st.Untracked, path)
			case !bytes.Equal(old, data):
				st.Modified = append(st.Modified, path)
			}
		}
		for path := range rev.Files {
			if _, ok := files[path]; !ok && underPaths(path, paths) {
				st.Deleted = append(st.Deleted, path)
			}
		}
		return st, nil
	})
}

// underPaths reports whether path is one of the requested paths or lives
// under one of them. An empty filter matches everything.
func underPaths(path string, paths []string) bool {
	if len(paths) == 0 {
		return true
	}
	for _, p := range paths {
		p = filepath.ToSlash(p)
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (r *repository) Log(limit int) ([]vcs.RevisionInfo, error) {
	return dispatcher.InvokeResult(r.dispatcher, func() ([]vcs.RevisionInfo, error) {
		return readLog(r.db, limit)
	})
}

func (r *repository) BeginTransaction(author, name string) error {
	return r.dispatcher.Invoke(func() error {
		if r.txn != nil {
			return fmt.Errorf("%w: %q", errors.ErrTransactionActive, r.txn.name)
		}
		backup, err := os.MkdirTemp("", "gridlab-txn-")
		if err != nil {
			return err
		}
		if err := vcs.CopyTree(r.workPath, backup); err != nil {
			os.RemoveAll(backup)
			return err
		}
		r.txn = &transaction{author: author, name: name, backup: backup}
		return nil
	})
}

func (r *repository) EndTransaction() (vcs.RevisionInfo, error) {
	return dispatcher.InvokeResult(r.dispatcher, func() (vcs.RevisionInfo, error) {
		if r.txn == nil {
			return vcs.RevisionInfo{}, errors.ErrNoTransaction
		}
		info, err := r.commitLocked(r.txn.author, r.txn.name, nil)
		if err != nil {
			// The transaction stays open so the caller may cancel or retry.
			return vcs.RevisionInfo{}, err
		}
		os.RemoveAll(r.txn.backup)
		r.txn = nil
		return info, nil
	})
}

func (r *repository) CancelTransaction() error {
	return r.dispatcher.Invoke(func() error {
		if r.txn == nil {
			return errors.ErrNoTransaction
		}
		files, err := snapshot(r.txn.backup)
		if err != nil {
			return err
		}
		if err := restoreTree(r.workPath, files); err != nil {
			return err
		}
		os.RemoveAll(r.txn.backup)
		r.txn = nil
		r.staged = nil
		return nil
	})
}

func (r *repository) Dispose() error {
	err := r.dispatcher.Invoke(func() error {
		if r.txn != nil {
			os.RemoveAll(r.txn.backup)
			r.txn = nil
		}
		return r.db.Close()
	})
	if disposeErr := r.dispatcher.Dispose(); disposeErr != nil && err == nil {
		err = disposeErr
	}
	return err
}

func openStore(basePath string) (*badger.DB, error) {
	opts := badger.DefaultOptions(filepath.Join(basePath, storeDir)).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening revision store at %s: %w", basePath, err)
	}
	return db, nil
}

func snapshot(root string) (map[string][]byte, error) {
	paths, err := vcs.ListFiles(root)
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte, len(paths))
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		files[rel] = data
	}
	return files, nil
}

// restoreTree makes root contain exactly files: extras are removed, every
// listed file is rewritten.
func restoreTree(root string, files map[string][]byte) error {
	existing, err := vcs.ListFiles(root)
	if err != nil {
		return err
	}
	for _, rel := range existing {
		if _, keep := files[rel]; !keep {
			if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
				return err
			}
		}
	}
	for rel, data := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeRevision(db *badger.DB, rev revision) error {
	data, err := json.Marshal(rev)
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(revKey(rev.Info.Revision), data); err != nil {
			return err
		}
		var head [8]byte
		binary.BigEndian.PutUint64(head[:], uint64(rev.Info.Revision))
		return txn.Set([]byte(headKey), head[:])
	})
}

func readHead(db *badger.DB) (int64, error) {
	var head int64
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(headKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			head = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("reading head: %w", err)
	}
	return head, nil
}

func readRevision(db *badger.DB, n int64) (revision, error) {
	var rev revision
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(revKey(n))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rev)
		})
	})
	if err != nil {
		return revision{}, fmt.Errorf("reading revision %d: %w", n, err)
	}
	return rev, nil
}

// readLog walks revisions newest first, thanks to the zero-padded keys.
func readLog(db *badger.DB, limit int) ([]vcs.RevisionInfo, error) {
	var infos []vcs.RevisionInfo
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(revPrefix)
		seek := append([]byte{}, prefix...)
		seek = append(seek, []byte("9999999999999999999")...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(infos) == limit {
				break
			}
			var rev revision
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rev)
			})
			if err != nil {
				return err
			}
			infos = append(infos, rev.Info)
		}
		return nil
	})
	return infos, err
}
