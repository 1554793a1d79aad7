// Package repository persists the audit trail for liveness and
// authentication attempts.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veridion-labs/facegate/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use, extracted
// so tests can substitute pgxmock.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AttemptRepositoryInterface defines operations for attempt audit rows.
type AttemptRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.Attempt) error
	ListRecent(ctx context.Context, kind domain.AttemptKind, limit int) ([]domain.Attempt, error)
}

type AttemptRepository struct {
	pool PgxPool
}

func NewAttemptRepository(pool PgxPool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.Attempt) error {
	query := `
		INSERT INTO attempts (id, kind, username, success, score, reason, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		attempt.ID,
		attempt.Kind,
		attempt.Username,
		attempt.Success,
		attempt.Score,
		attempt.Reason,
		attempt.LatencyMs,
	).Scan(&attempt.CreatedAt)

	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}

	return nil
}

func (r *AttemptRepository) ListRecent(ctx context.Context, kind domain.AttemptKind, limit int) ([]domain.Attempt, error) {
	query := `
		SELECT id, kind, username, success, score, reason, latency_ms, created_at
		FROM attempts
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		err := rows.Scan(
			&a.ID,
			&a.Kind,
			&a.Username,
			&a.Success,
			&a.Score,
			&a.Reason,
			&a.LatencyMs,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}

	return attempts, nil
}

var _ AttemptRepositoryInterface = (*AttemptRepository)(nil)
