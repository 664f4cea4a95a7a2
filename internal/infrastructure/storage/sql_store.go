package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

const recordsTable = "trend_records"

const createRecordsTable = `CREATE TABLE IF NOT EXISTS trend_records (
    id             TEXT PRIMARY KEY,
    created_at     TEXT NOT NULL,
    trend          TEXT NOT NULL UNIQUE,
    category       TEXT NOT NULL,
    instagram_post TEXT NOT NULL DEFAULT '',
    blog_draft     TEXT NOT NULL DEFAULT '',
    youtube_script TEXT NOT NULL DEFAULT '',
    thumbnail_idea TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL,
    updated_at     TEXT
)`

var recordColumns = []string{
	"id", "created_at", "trend", "category",
	"instagram_post", "blog_draft", "youtube_script", "thumbnail_idea",
	"status",
}

// SQLStore persists records into Postgres or SQLite through squirrel-built queries.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.RecordStore = (*SQLStore)(nil)

// NewSQLStore wires an open sql.DB; driver selects the placeholder format.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == config.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:     time.Now,
	}
}

// OpenSQLStore opens the database, verifies connectivity and ensures the schema.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent appends.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := NewSQLStore(db, driver)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the records table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createRecordsTable); err != nil {
		return fmt.Errorf("create %s: %w", recordsTable, err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts the record; the unique trend column enforces duplicates.
func (s *SQLStore) Append(ctx context.Context, record domain.Record) error {
	query, args, err := s.builder.
		Insert(recordsTable).
		Columns(recordColumns...).
		Values(
			record.ID,
			record.Timestamp.UTC().Format(time.RFC3339Nano),
			strings.TrimSpace(record.TrendText),
			string(record.Label),
			record.Content.ShortPost,
			record.Content.ArticleDraft,
			record.Content.Script,
			record.Content.VisualDescription,
			string(record.Status),
		).
		ToSql()
	if err != nil {
		return storeFailure("build insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sql append %q: %w", record.TrendText, domain.ErrDuplicate)
		}
		return storeFailure("insert record", err)
	}
	return nil
}

// List returns all records in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]domain.Record, error) {
	query, args, err := s.builder.
		Select(recordColumns...).
		From(recordsTable).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, storeFailure("build select", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeFailure("query records", err)
	}

	records := []domain.Record{}
	for rows.Next() {
		var (
			rec       domain.Record
			createdAt string
			label     string
			status    string
		)
		if err := rows.Scan(
			&rec.ID, &createdAt, &rec.TrendText, &label,
			&rec.Content.ShortPost, &rec.Content.ArticleDraft, &rec.Content.Script, &rec.Content.VisualDescription,
			&status,
		); err != nil {
			_ = rows.Close()
			return nil, storeFailure("scan record", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.Timestamp = ts.Local()
		}
		rec.Label = domain.Label(label)
		rec.Status = domain.Status(status)
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, storeFailure("rows iteration", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, storeFailure("close rows", closeErr)
	}
	return records, nil
}

// UpdateStatus sets status on the record whose trend matches exactly.
func (s *SQLStore) UpdateStatus(ctx context.Context, trendText string, status domain.Status) error {
	trend := strings.TrimSpace(trendText)
	query, args, err := s.builder.
		Update(recordsTable).
		Set("status", string(status)).
		Set("updated_at", s.now().UTC().Format(time.RFC3339Nano)).
		Where(sq.Eq{"trend": trend}).
		ToSql()
	if err != nil {
		return storeFailure("build update", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeFailure("update status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeFailure("rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("sql update %q: %w", trend, domain.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
