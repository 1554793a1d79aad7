package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veridion-labs/facegate/internal/provider"
)

// defaultArtifactSuffixes are the cache files the sidecar matcher drops
// into the reference directory.
var defaultArtifactSuffixes = []string{".pkl"}

// FileIndex is the index of a matcher that caches its artifacts as files
// inside the reference directory. Invalidate deletes them all, forcing a
// full re-index on the next match query.
type FileIndex struct {
	dir      string
	suffixes []string
}

func NewFileIndex(dir string, suffixes ...string) *FileIndex {
	if len(suffixes) == 0 {
		suffixes = defaultArtifactSuffixes
	}
	return &FileIndex{dir: dir, suffixes: suffixes}
}

func (i *FileIndex) Invalidate(ctx context.Context) error {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read index dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !i.isArtifact(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(i.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove index artifact %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (i *FileIndex) isArtifact(name string) bool {
	for _, suffix := range i.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

var _ provider.Index = (*FileIndex)(nil)
