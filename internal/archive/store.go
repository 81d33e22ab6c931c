package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const stagingDirName = ".staging"

// Store manages the on-disk archive tree. Existence of an entry
// directory is the only deduplication signal; there is no separate
// index. Entries are written to a staging directory first and renamed
// into place once complete, so a crash mid-write never leaves a
// half-built directory that later runs would mistake for an archived
// message.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// EntryPath returns the final directory for a derived key.
func (s *Store) EntryPath(year, name string) string {
	return filepath.Join(s.root, year, name)
}

// Exists reports whether an entry directory is already present.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Stage creates a fresh staging directory for one entry.
func (s *Store) Stage() (string, error) {
	staging := filepath.Join(s.root, stagingDirName, uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return staging, nil
}

// Commit renames a fully materialized staging directory into its final
// location. It returns false without error when the final directory
// appeared in the meantime; the staging copy is discarded and the
// message counts as already archived.
func (s *Store) Commit(staging, final string) (bool, error) {
	if s.Exists(final) {
		s.Discard(staging)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return false, fmt.Errorf("create entry parent: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		if s.Exists(final) {
			// Lost a race against a concurrent writer.
			s.Discard(staging)
			return false, nil
		}
		return false, fmt.Errorf("commit entry: %w", err)
	}
	return true, nil
}

// Discard removes a staging directory and everything in it.
func (s *Store) Discard(staging string) {
	_ = os.RemoveAll(staging)
}
