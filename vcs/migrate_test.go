package vcs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridlab/vcs"
	"gridlab/vcs/badgervcs"
)

// renamedProvider stands in for a second backend implementation: identical
// storage engine, distinct registry name.
type renamedProvider struct {
	vcs.Provider
	name string
}

func (p renamedProvider) Name() string { return p.name }

// failingProvider breaks during store initialization to exercise rollback.
type failingProvider struct {
	vcs.Provider
	name string
}

func (p failingProvider) Name() string { return p.name }

func (p failingProvider) InitializeRepository(basePath, seedPath string, properties map[string]string) error {
	return os.ErrPermission
}

func TestMigrate_Swaps_Backend_And_Keeps_Head_Files(t *testing.T) {
	req := require.New(t)
	base, reg := initRepo(t, map[string]string{"tables/orders.json": `{"rows":[1,2]}`})
	reg.Register(renamedProvider{Provider: badgervcs.NewProvider(slog.Default()), name: "badger-v2"})

	req.NoError(vcs.Migrate(reg, base, "badger-v2"))

	marker, err := vcs.ReadMarker(base)
	req.NoError(err)
	req.Equal("badger-v2", marker.Backend)

	repo, err := reg.Open(base)
	req.NoError(err)
	defer repo.Dispose()

	data, err := os.ReadFile(filepath.Join(repo.WorkPath(), "tables", "orders.json"))
	req.NoError(err)
	req.Equal(`{"rows":[1,2]}`, string(data))

	// No leftover backup after a successful migration.
	_, err = os.Stat(base + ".premigrate")
	req.ErrorIs(err, os.ErrNotExist)
}

func TestMigrate_To_Same_Backend_Fails(t *testing.T) {
	req := require.New(t)
	base, reg := initRepo(t, map[string]string{"a.json": "1"})
	req.Error(vcs.Migrate(reg, base, badgervcs.Name))
}

func TestMigrate_Failure_Leaves_Original_Intact(t *testing.T) {
	req := require.New(t)
	base, reg := initRepo(t, map[string]string{"a.json": "precious"})
	reg.Register(failingProvider{name: "broken"})

	err := vcs.Migrate(reg, base, "broken")
	req.ErrorIs(err, os.ErrPermission)

	marker, markerErr := vcs.ReadMarker(base)
	req.NoError(markerErr)
	req.Equal(badgervcs.Name, marker.Backend)

	repo, err := reg.Open(base)
	req.NoError(err)
	defer repo.Dispose()

	data, err := os.ReadFile(filepath.Join(repo.WorkPath(), "a.json"))
	req.NoError(err)
	req.Equal("precious", string(data))
}
