package vcs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Migrate moves the historical head of basePath from its current backend to
// target. The operation is all-or-nothing: the head is exported into a
// scratch directory, the target backend is initialized from it, and the base
// path is swapped in place; on any failure the original directory is
// restored from the pre-migration backup before the error propagates.
//
// History before the migration point stays with the old backend's backup;
// the new store starts at revision one with the migrated head as seed.
func Migrate(reg *Registry, basePath, target string) error {
	marker, err := ReadMarker(basePath)
	if err != nil {
		return err
	}
	if marker.Backend == target {
		return fmt.Errorf("repository at %s already uses backend %q", basePath, target)
	}
	targetProvider, err := reg.Provider(target)
	if err != nil {
		return err
	}

	// Export the current head into a scratch directory through a regular
	// handle, so whatever the source backend is, the exported files are
	// exactly revision head.
	source, err := reg.Open(basePath)
	if err != nil {
		return err
	}
	scratch, err := os.MkdirTemp("", "gridlab-migrate-head-")
	if err != nil {
		source.Dispose()
		return err
	}
	defer os.RemoveAll(scratch)

	exportErr := func() error {
		if err := source.Revert(); err != nil {
			return err
		}
		return CopyTree(source.WorkPath(), scratch)
	}()
	if err := source.Dispose(); err != nil && exportErr == nil {
		exportErr = err
	}
	if exportErr != nil {
		return fmt.Errorf("exporting head of %s: %w", basePath, exportErr)
	}

	// Build the replacement store next to the original, then swap.
	staging, err := os.MkdirTemp(filepath.Dir(basePath), ".migrate-staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	newStore := filepath.Join(staging, "store")
	if err := targetProvider.InitializeRepository(newStore, scratch, map[string]string{
		"migrated-from": marker.Backend,
	}); err != nil {
		return fmt.Errorf("initializing %s backend: %w", target, err)
	}

	backup := basePath + ".premigrate"
	if err := os.Rename(basePath, backup); err != nil {
		return err
	}
	if err := os.Rename(newStore, basePath); err != nil {
		// Rollback: the original directory is intact under backup.
		if restoreErr := os.Rename(backup, basePath); restoreErr != nil {
			return fmt.Errorf("migration failed (%v) and rollback failed: %w", err, restoreErr)
		}
		return err
	}
	// InitializeRepository writes the new backend's marker; make sure the
	// pointer really changed before discarding the backup.
	if m, err := ReadMarker(basePath); err != nil || m.Backend != target {
		if writeErr := WriteMarker(basePath, Marker{Backend: target, Serializer: marker.Serializer}); writeErr != nil {
			os.RemoveAll(basePath)
			if restoreErr := os.Rename(backup, basePath); restoreErr != nil {
				return fmt.Errorf("marker rewrite failed (%v) and rollback failed: %w", writeErr, restoreErr)
			}
			return writeErr
		}
	}
	return os.RemoveAll(backup)
}
