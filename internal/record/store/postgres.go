package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gdprkv/internal/platform/postgres"
	"gdprkv/internal/record/models"
	"gdprkv/pkg/platform/sentinel"
	txcontext "gdprkv/pkg/platform/tx"
)

// PostgresStore persists records. The partial index on (purge_bucket,
// purge_due_at) serves FindDueForPurge.
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

const recordColumns = `subject_id, record_key, purpose, value, version, created_at, updated_at,
	retention_days, tombstoned, tombstoned_at, purge_due_at, purge_bucket, request_id`

func (s *PostgresStore) FindByKey(ctx context.Context, subjectID, key string) (*models.Record, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE subject_id = $1 AND record_key = $2
	`, subjectID, key)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindAllBySubject(ctx context.Context, subjectID string) ([]models.Record, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE subject_id = $1
		ORDER BY record_key COLLATE "C"
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) FindDueForPurge(ctx context.Context, bucket string, cutoff int64) ([]models.Record, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE purge_bucket = $1 AND purge_due_at <= $2
		ORDER BY purge_due_at
	`, bucket, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find records due for purge: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Save inserts when expectedVersion is 0 and otherwise updates only if the
// stored version still equals expectedVersion.
func (s *PostgresStore) Save(ctx context.Context, rec *models.Record, expectedVersion int64) error {
	args := []any{
		rec.SubjectID,
		rec.RecordKey,
		rec.Purpose,
		string(rec.Value),
		rec.Version,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.RetentionDays,
		rec.Tombstoned,
		nullInt64(rec.TombstonedAt),
		nullInt64(rec.PurgeDueAt),
		nullString(rec.PurgeBucket),
		rec.RequestID,
	}

	if expectedVersion == 0 {
		_, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO records (`+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, args...)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return fmt.Errorf("insert record: %w", sentinel.ErrConflict)
			}
			return fmt.Errorf("insert record: %w", err)
		}
		return nil
	}

	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE records SET
			purpose = $3, value = $4, version = $5, created_at = $6, updated_at = $7,
			retention_days = $8, tombstoned = $9, tombstoned_at = $10, purge_due_at = $11,
			purge_bucket = $12, request_id = $13
		WHERE subject_id = $1 AND record_key = $2 AND version = $14
	`, append(args, expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update record: expected version %d: %w", expectedVersion, sentinel.ErrConflict)
	}
	return nil
}

// Delete removes rec only if it is still at rec.Version.
func (s *PostgresStore) Delete(ctx context.Context, rec *models.Record) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM records
		WHERE subject_id = $1 AND record_key = $2 AND version = $3
	`, rec.SubjectID, rec.RecordKey, rec.Version)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.FindByKey(ctx, rec.SubjectID, rec.RecordKey); err != nil {
		return err
	}
	return fmt.Errorf("delete record: version moved past %d: %w", rec.Version, sentinel.ErrConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		r            models.Record
		value        string
		tombstonedAt sql.NullInt64
		purgeDueAt   sql.NullInt64
		purgeBucket  sql.NullString
	)
	err := row.Scan(
		&r.SubjectID,
		&r.RecordKey,
		&r.Purpose,
		&value,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.RetentionDays,
		&r.Tombstoned,
		&tombstonedAt,
		&purgeDueAt,
		&purgeBucket,
		&r.RequestID,
	)
	if err != nil {
		return nil, err
	}
	r.Value = []byte(value)
	if tombstonedAt.Valid {
		r.TombstonedAt = &tombstonedAt.Int64
	}
	if purgeDueAt.Valid {
		r.PurgeDueAt = &purgeDueAt.Int64
	}
	r.PurgeBucket = purgeBucket.String
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
