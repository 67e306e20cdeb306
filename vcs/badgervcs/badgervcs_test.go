package badgervcs

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"gridlab/errors"
	"gridlab/vcs"
)

func seedDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return dir
}

func newRepo(t *testing.T, files map[string]string) (vcs.Repository, string) {
	t.Helper()
	provider := NewProvider(slog.Default())
	base := filepath.Join(t.TempDir(), "repo")
	require.NoError(t, provider.InitializeRepository(base, seedDir(t, files), nil))
	repo, err := provider.CreateInstance(vcs.Settings{BasePath: base})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Dispose() })
	return repo, base
}

func readWorkFile(t *testing.T, repo vcs.Repository, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repo.WorkPath(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestInitializeRepository_Rejects_Existing_Repository(t *testing.T) {
	req := require.New(t)
	provider := NewProvider(slog.Default())
	base := filepath.Join(t.TempDir(), "repo")

	req.NoError(provider.InitializeRepository(base, seedDir(t, map[string]string{"a.json": "1"}), nil))
	req.ErrorIs(provider.InitializeRepository(base, "", nil), os.ErrExist)
}

func TestCommit_Produces_One_Revision_With_Changed_Paths(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"tables/orders.json": `{"rows":[]}`})

	req.NoError(os.WriteFile(
		filepath.Join(repo.WorkPath(), "tables", "orders.json"), []byte(`{"rows":[1]}`), 0o644))
	req.NoError(repo.Add("tables/orders.json"))

	info, err := repo.Commit("alice", "edit orders", map[string]string{"schema": "2"})
	req.NoError(err)
	req.Equal(int64(2), info.Revision)
	req.Equal("alice", info.Author)
	req.Equal([]string{"tables/orders.json"}, info.Paths)
	req.Equal("2", info.Properties["schema"])

	log, err := repo.Log(0)
	req.NoError(err)
	req.Len(log, 2)
	req.Equal(int64(2), log[0].Revision)
	req.Equal(int64(1), log[1].Revision)
}

func TestCommit_Fails_With_Conflict_When_Store_Advanced(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"a.json": "1"})

	// Simulate an external writer bumping the head underneath the handle.
	inner := repo.(*repository)
	req.NoError(inner.db.Update(func(txn *badger.Txn) error {
		var head [8]byte
		binary.BigEndian.PutUint64(head[:], 7)
		return txn.Set([]byte(headKey), head[:])
	}))

	_, err := repo.Commit("alice", "stale", nil)
	req.ErrorIs(err, errors.ErrConflict)
}

func TestRevert_Restores_Head(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"a.json": "original"})

	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "a.json"), []byte("dirty"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "stray.json"), []byte("x"), 0o644))

	req.NoError(repo.Revert())
	req.Equal("original", readWorkFile(t, repo, "a.json"))
	_, err := os.Stat(filepath.Join(repo.WorkPath(), "stray.json"))
	req.ErrorIs(err, os.ErrNotExist)
}

func TestStatus_Classifies_Pending_Changes(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"kept.json": "1", "gone.json": "2"})

	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "kept.json"), []byte("changed"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "new.json"), []byte("3"), 0o644))
	req.NoError(repo.Add("new.json"))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "stray.json"), []byte("4"), 0o644))
	req.NoError(repo.Delete("gone.json"))

	st, err := repo.Status()
	req.NoError(err)
	req.Equal([]string{"new.json"}, st.Added)
	req.ElementsMatch([]string{"kept.json"}, st.Modified)
	req.Equal([]string{"gone.json"}, st.Deleted)
	req.Equal([]string{"stray.json"}, st.Untracked)
}

func TestStatus_Restricted_To_Requested_Paths(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{
		"tables/orders.json":  "1",
		"tables/clients.json": "2",
		"views/summary.json":  "3",
	})

	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "tables", "orders.json"), []byte("x"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "views", "summary.json"), []byte("y"), 0o644))
	req.NoError(repo.Delete("tables/clients.json"))

	st, err := repo.Status("tables")
	req.NoError(err)
	req.ElementsMatch([]string{"tables/orders.json"}, st.Modified)
	req.Equal([]string{"tables/clients.json"}, st.Deleted)

	st, err = repo.Status("views/summary.json")
	req.NoError(err)
	req.Equal([]string{"views/summary.json"}, st.Modified)
	req.Empty(st.Deleted)
}

func TestTransaction_Cancel_Restores_Tree_Byte_For_Byte(t *testing.T) {
	for _, changes := range []int{0, 1, 10} {
		t.Run(map[int]string{0: "no changes", 1: "one change", 10: "ten changes"}[changes], func(t *testing.T) {
			req := require.New(t)
			repo, _ := newRepo(t, map[string]string{"base.json": "untouched"})

			before, err := vcs.ListFiles(repo.WorkPath())
			req.NoError(err)

			req.NoError(repo.BeginTransaction("alice", "doomed edit"))
			for i := 0; i < changes; i++ {
				name := filepath.Join(repo.WorkPath(), "staged", string(rune('a'+i))+".json")
				req.NoError(os.MkdirAll(filepath.Dir(name), 0o755))
				req.NoError(os.WriteFile(name, []byte("staged"), 0o644))
			}
			if changes > 0 {
				req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "base.json"), []byte("mutated"), 0o644))
			}
			req.NoError(repo.CancelTransaction())

			after, err := vcs.ListFiles(repo.WorkPath())
			req.NoError(err)
			req.Equal(before, after)
			req.Equal("untouched", readWorkFile(t, repo, "base.json"))

			st, err := repo.Status()
			req.NoError(err)
			req.True(st.Clean())
		})
	}
}

func TestTransaction_End_Commits_All_Staged_Changes_At_Once(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"a.json": "1"})

	req.NoError(repo.BeginTransaction("bob", "batch edit"))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "a.json"), []byte("2"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "b.json"), []byte("3"), 0o644))
	req.NoError(repo.Add("b.json"))

	info, err := repo.EndTransaction()
	req.NoError(err)
	req.Equal("bob", info.Author)
	req.Equal("batch edit", info.Comment)
	req.ElementsMatch([]string{"a.json", "b.json"}, info.Paths)
}

func TestTransaction_Nests_Only_One_Deep(t *testing.T) {
	req := require.New(t)
	repo, _ := newRepo(t, map[string]string{"a.json": "1"})

	req.NoError(repo.BeginTransaction("alice", "outer"))
	req.ErrorIs(repo.BeginTransaction("alice", "inner"), errors.ErrTransactionActive)
	req.NoError(repo.CancelTransaction())
	req.ErrorIs(repo.CancelTransaction(), errors.ErrNoTransaction)
}

func TestGetRepositories_Lists_Owned_Stores(t *testing.T) {
	req := require.New(t)
	provider := NewProvider(slog.Default())
	base := t.TempDir()

	req.NoError(provider.InitializeRepository(filepath.Join(base, "warehouse"), "", nil))
	req.NoError(provider.InitializeRepository(filepath.Join(base, "catalog"), "", nil))
	req.NoError(os.MkdirAll(filepath.Join(base, "not-a-repo"), 0o755))
	// A store claimed by another backend is not ours to report.
	req.NoError(os.MkdirAll(filepath.Join(base, "foreign"), 0o755))
	req.NoError(vcs.WriteMarker(filepath.Join(base, "foreign"), vcs.Marker{Backend: "git", Serializer: "json"}))

	names, err := provider.GetRepositories(base)
	req.NoError(err)
	req.ElementsMatch([]string{"warehouse", "catalog"}, names)
}

func TestGetRepositoryInfo_Reports_Head(t *testing.T) {
	req := require.New(t)
	provider := NewProvider(slog.Default())
	repo, base := newRepo(t, map[string]string{"a.json": "1"})

	req.NoError(os.WriteFile(filepath.Join(repo.WorkPath(), "a.json"), []byte("2"), 0o644))
	_, err := repo.Commit("alice", "bump", nil)
	req.NoError(err)
	req.NoError(repo.Dispose())

	info, err := provider.GetRepositoryInfo(base)
	req.NoError(err)
	req.Equal(Name, info.Backend)
	req.Equal(int64(2), info.Head)
}
