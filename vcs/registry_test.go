package vcs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridlab/errors"
	"gridlab/vcs"
	"gridlab/vcs/badgervcs"
)

func initRepo(t *testing.T, files map[string]string) (string, *vcs.Registry) {
	t.Helper()
	req := require.New(t)
	seed := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(seed, filepath.FromSlash(rel))
		req.NoError(os.MkdirAll(filepath.Dir(abs), 0o755))
		req.NoError(os.WriteFile(abs, []byte(content), 0o644))
	}

	provider := badgervcs.NewProvider(slog.Default())
	base := filepath.Join(t.TempDir(), "repo")
	req.NoError(provider.InitializeRepository(base, seed, nil))

	reg := vcs.NewRegistry(slog.Default())
	reg.Register(provider)
	return base, reg
}

func TestRegistry_Open_Dispatches_By_Marker(t *testing.T) {
	req := require.New(t)
	base, reg := initRepo(t, map[string]string{"a.json": "1"})

	repo, err := reg.Open(base)
	req.NoError(err)
	defer repo.Dispose()

	st, err := repo.Status()
	req.NoError(err)
	req.True(st.Clean())
}

func TestRegistry_Enforces_Single_Live_Handle_Per_Path(t *testing.T) {
	req := require.New(t)
	base, reg := initRepo(t, map[string]string{"a.json": "1"})

	first, err := reg.Open(base)
	req.NoError(err)

	_, err = reg.Open(base)
	req.ErrorIs(err, errors.ErrInvalidOperation)

	req.NoError(first.Dispose())

	second, err := reg.Open(base)
	req.NoError(err)
	req.NoError(second.Dispose())
}

func TestRegistry_Open_Unknown_Backend_Fails(t *testing.T) {
	req := require.New(t)
	base, _ := initRepo(t, map[string]string{"a.json": "1"})
	req.NoError(vcs.WriteMarker(base, vcs.Marker{Backend: "svn", Serializer: "xml"}))

	reg := vcs.NewRegistry(slog.Default())
	_, err := reg.Open(base)
	req.ErrorIs(err, errors.ErrTargetNotFound)
}
