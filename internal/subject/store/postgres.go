package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gdprkv/internal/platform/postgres"
	"gdprkv/internal/subject/models"
	"gdprkv/pkg/platform/sentinel"
	txcontext "gdprkv/pkg/platform/tx"
)

// PostgresStore persists subjects.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID string) (*models.Subject, error) {
	var (
		subj        models.Subject
		residency   sql.NullString
		requestedAt sql.NullInt64
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT subject_id, created_at, version, residency, erasure_in_progress, erasure_requested_at, request_id
		FROM subjects
		WHERE subject_id = $1
	`, subjectID).Scan(
		&subj.SubjectID,
		&subj.CreatedAt,
		&subj.Version,
		&residency,
		&subj.ErasureInProgress,
		&requestedAt,
		&subj.RequestID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	subj.Residency = residency.String
	if requestedAt.Valid {
		subj.ErasureRequestedAt = &requestedAt.Int64
	}
	return &subj, nil
}

func (s *PostgresStore) Exists(ctx context.Context, subjectID string) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subjects WHERE subject_id = $1)`, subjectID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subject exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, subj *models.Subject) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO subjects (subject_id, created_at, version, residency, erasure_in_progress, erasure_requested_at, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, subj.SubjectID, subj.CreatedAt, subj.Version, nullString(subj.Residency), subj.ErasureInProgress, nullInt64(subj.ErasureRequestedAt), subj.RequestID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create subject %s: %w", subj.SubjectID, sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, subj *models.Subject, expectedVersion int64) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE subjects SET
			version = $2, residency = $3, erasure_in_progress = $4, erasure_requested_at = $5, request_id = $6
		WHERE subject_id = $1 AND version = $7
	`, subj.SubjectID, subj.Version, nullString(subj.Residency), subj.ErasureInProgress, nullInt64(subj.ErasureRequestedAt), subj.RequestID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.FindByID(ctx, subj.SubjectID); err != nil {
		return err
	}
	return fmt.Errorf("update subject: expected version %d: %w", expectedVersion, sentinel.ErrConflict)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
