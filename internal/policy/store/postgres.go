package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gdprkv/internal/policy/models"
	"gdprkv/pkg/platform/sentinel"
	txcontext "gdprkv/pkg/platform/tx"
)

// PostgresStore persists retention policies.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) FindByPurpose(ctx context.Context, purpose string) (*models.Policy, error) {
	var p models.Policy
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT purpose, retention_days, description, last_updated_at
		FROM policies
		WHERE purpose = $1
	`, purpose).Scan(&p.Purpose, &p.RetentionDays, &p.Description, &p.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy by purpose: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, policy *models.Policy) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO policies (purpose, retention_days, description, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (purpose) DO UPDATE SET
			retention_days = EXCLUDED.retention_days,
			description = EXCLUDED.description,
			last_updated_at = EXCLUDED.last_updated_at
	`, policy.Purpose, policy.RetentionDays, policy.Description, policy.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Policy, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT purpose, retention_days, description, last_updated_at
		FROM policies
		ORDER BY purpose
	`)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var out []models.Policy
	for rows.Next() {
		var p models.Policy
		if err := rows.Scan(&p.Purpose, &p.RetentionDays, &p.Description, &p.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return out, nil
}
