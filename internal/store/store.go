// Package store is the file-backed identity store: one reference image per
// enrolled user, plus the invalidation contract for whatever index the
// matcher has cached over the directory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/provider"
)

// referenceExt is the extension reference images are stored under. The
// filename is derived from the sanitized username, so re-enrollment
// overwrites the previous reference image.
const referenceExt = ".jpg"

// Store owns a reference-image directory and the matcher index built over
// it. Writers and the invalidation step are serialized per store: a reader
// can never observe a half-written image or an index rebuilt from a
// partially invalidated state.
type Store struct {
	dir      string
	detector provider.FaceDetector
	index    provider.Index
	logger   *slog.Logger

	mu sync.Mutex
}

func New(dir string, detector provider.FaceDetector, index provider.Index, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create identity store dir: %w", err)
	}
	return &Store{
		dir:      dir,
		detector: detector,
		index:    index,
		logger:   logger,
	}, nil
}

// Dir returns the reference-image directory queried by the matcher.
func (s *Store) Dir() string {
	return s.dir
}

// Enroll persists a reference image for username and invalidates the
// matcher index before returning. A register response therefore
// happens-before any login that could observe the new membership.
func (s *Store) Enroll(ctx context.Context, username string, image []byte) (*domain.UserRecord, error) {
	safe := SanitizeUsername(username)
	if safe == "" {
		return nil, domain.ErrInvalidUsername
	}

	// Face pre-check happens before anything is persisted or invalidated.
	regions, err := s.detector.DetectFaces(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("enroll %q: detect faces: %w", safe, err)
	}
	if len(regions) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, safe+referenceExt)
	if err := writeAtomic(s.dir, path, image); err != nil {
		s.logger.Error("enroll: persist reference image", slog.String("username", safe), slog.Any("error", err))
		return nil, domain.ErrStoreIO.WithError(err)
	}

	// The invalidation must complete before the enroll returns; a match
	// pipeline reading a cache built before this enrollment must be
	// unreachable once the caller observes success.
	if err := s.index.Invalidate(ctx); err != nil {
		s.logger.Error("enroll: invalidate index", slog.String("username", safe), slog.Any("error", err))
		return nil, domain.ErrStoreIO.WithError(err)
	}

	s.logger.Info("enrolled user", slog.String("username", safe))

	return &domain.UserRecord{
		Username:   safe,
		ImagePath:  path,
		EnrolledAt: time.Now().UTC(),
	}, nil
}

// Usernames lists the enrolled usernames, derived from reference image
// filenames.
func (s *Store) Usernames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list identity store: %w", err)
	}

	var users []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), referenceExt) {
			continue
		}
		users = append(users, strings.TrimSuffix(entry.Name(), referenceExt))
	}
	return users, nil
}

// SanitizeUsername strips a username to letters, digits, spaces and
// underscores, then trims trailing whitespace. The empty result means the
// username is unusable.
func SanitizeUsername(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// UsernameFromIdentity derives the username from a matcher identity path:
// the filename stem up to the first dot.
func UsernameFromIdentity(identity string) string {
	base := filepath.Base(identity)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// writeAtomic writes via a temp file in the same directory plus rename, so
// concurrent readers of path never see partial content.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".enroll-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
