package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gdprkv/internal/audit/models"
	"gdprkv/internal/platform/postgres"
	"gdprkv/pkg/platform/sentinel"
	txcontext "gdprkv/pkg/platform/tx"
)

// PostgresStore persists audit events. The (subject_id, prev_hash) unique
// constraint makes a second append against the same chain head fail with
// sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit event store.
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

const eventColumns = `subject_id, ts_ulid, event_type, request_id, timestamp, prev_hash, hash, item_key, purpose, details`

func (s *PostgresStore) Append(ctx context.Context, event *models.Event) error {
	details, err := models.CanonicalDetails(event.Details)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		event.SubjectID,
		event.TsUlid,
		string(event.EventType),
		event.RequestID,
		event.Timestamp,
		event.PrevHash,
		event.Hash,
		nullString(event.ItemKey),
		nullString(event.Purpose),
		details,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("append audit event: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindLatest(ctx context.Context, subjectID string) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY ts_ulid DESC
		LIMIT 1
	`
	event, err := scanEvent(s.execer(ctx).QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest audit event: %w", err)
	}
	return event, nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY ts_ulid ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) FindOlderThan(ctx context.Context, cutoffMillis int64) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE timestamp < $1
		ORDER BY timestamp ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, cutoffMillis)
	if err != nil {
		return nil, fmt.Errorf("find audit events older than cutoff: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID, tsUlid string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM audit_events WHERE subject_id = $1 AND ts_ulid = $2`, subjectID, tsUlid)
	if err != nil {
		return fmt.Errorf("delete audit event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete audit event: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT DISTINCT subject_id FROM audit_events ORDER BY subject_id`)
	if err != nil {
		return nil, fmt.Errorf("list audited subjects: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan audited subject: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e         models.Event
		eventType string
		itemKey   sql.NullString
		purpose   sql.NullString
		details   string
	)
	if err := row.Scan(
		&e.SubjectID,
		&e.TsUlid,
		&eventType,
		&e.RequestID,
		&e.Timestamp,
		&e.PrevHash,
		&e.Hash,
		&itemKey,
		&purpose,
		&details,
	); err != nil {
		return nil, err
	}
	e.EventType = models.EventType(eventType)
	e.ItemKey = itemKey.String
	e.Purpose = purpose.String
	decoded, err := models.DecodeDetails(details)
	if err != nil {
		return nil, err
	}
	e.Details = decoded
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
