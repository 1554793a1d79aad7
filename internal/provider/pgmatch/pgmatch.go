// Package pgmatch implements the face matcher and index contracts on
// Postgres with pgvector. Reference embeddings are cached in the
// face_index table; those rows ARE the matcher's index artifacts, so
// invalidation is a keyed DELETE rather than a file purge.
package pgmatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/veridion-labs/facegate/internal/provider"
)

// PgxPool is the slice of pgxpool.Pool the matcher uses, extracted so
// tests can substitute pgxmock.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Embedder produces a face representation vector for an image. The
// DeepFace provider satisfies this via its /represent endpoint.
type Embedder interface {
	Embedding(ctx context.Context, image []byte) ([]float64, error)
}

// Config controls candidate filtering.
type Config struct {
	// Threshold is the minimum cosine similarity for a candidate.
	Threshold float64
	// Limit caps the number of candidates returned per probe.
	Limit int
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.5,
		Limit:     5,
	}
}

// Matcher implements provider.FaceMatcher and provider.Index.
type Matcher struct {
	pool     PgxPool
	embedder Embedder
	dir      string
	cfg      Config
	logger   *slog.Logger

	// mu serializes index rebuilds so concurrent probes against a cold
	// index do not embed the reference set twice.
	mu sync.Mutex
}

// New creates a matcher for the reference directory dir. Rows in
// face_index are keyed by dir, so several stores can share one table.
func New(pool PgxPool, embedder Embedder, dir string, cfg Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Matcher{
		pool:     pool,
		embedder: embedder,
		dir:      dir,
		cfg:      cfg,
		logger:   logger,
	}
}

// Find embeds the probe image and returns reference identities ranked by
// cosine similarity, highest first. A cold index is rebuilt from the
// reference directory before the first search.
func (m *Matcher) Find(ctx context.Context, image []byte, referenceDir string) ([]provider.Match, error) {
	probe, err := m.embedder.Embedding(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed probe: %w", err)
	}

	if err := m.ensureIndexed(ctx, referenceDir); err != nil {
		return nil, err
	}

	query := `
		SELECT identity, 1 - (embedding <=> $2) AS similarity
		FROM face_index
		WHERE store_dir = $1 AND 1 - (embedding <=> $2) >= $3
		ORDER BY embedding <=> $2
		LIMIT $4
	`

	rows, err := m.pool.Query(ctx, query, referenceDir, toVector(probe), m.cfg.Threshold, m.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("search face index: %w", err)
	}
	defer rows.Close()

	var matches []provider.Match
	for rows.Next() {
		var match provider.Match
		if err := rows.Scan(&match.Identity, &match.Confidence); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read matches: %w", err)
	}

	return matches, nil
}

// Invalidate drops every cached embedding for this matcher's directory.
// The next Find rebuilds the index from the files on disk.
func (m *Matcher) Invalidate(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `DELETE FROM face_index WHERE store_dir = $1`, m.dir)
	if err != nil {
		return fmt.Errorf("invalidate face index: %w", err)
	}
	return nil
}

// ensureIndexed rebuilds the cached embeddings when the directory has no
// rows. A reference image that fails to embed is skipped with a warning
// rather than failing the whole rebuild.
func (m *Matcher) ensureIndexed(ctx context.Context, referenceDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int
	err := m.pool.QueryRow(ctx, `SELECT COUNT(*) FROM face_index WHERE store_dir = $1`, referenceDir).Scan(&count)
	if err != nil {
		return fmt.Errorf("count face index: %w", err)
	}
	if count > 0 {
		return nil
	}

	entries, err := os.ReadDir(referenceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read reference directory: %w", err)
	}

	insert := `
		INSERT INTO face_index (id, store_dir, identity, embedding, indexed_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		path := filepath.Join(referenceDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read reference image: %w", err)
		}

		embedding, err := m.embedder.Embedding(ctx, data)
		if err != nil {
			m.logger.Warn("skipping unembeddable reference image",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		_, err = m.pool.Exec(ctx, insert, uuid.New(), referenceDir, path, toVector(embedding))
		if err != nil {
			return fmt.Errorf("index reference image: %w", err)
		}
		indexed++
	}

	m.logger.Info("rebuilt face index",
		slog.String("dir", referenceDir),
		slog.Int("indexed", indexed),
	)
	return nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func toVector(embedding []float64) pgvector.Vector {
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	return pgvector.NewVector(floats)
}

var (
	_ provider.FaceMatcher = (*Matcher)(nil)
	_ provider.Index       = (*Matcher)(nil)
)
