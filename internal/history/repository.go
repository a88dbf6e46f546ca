package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
	"github.com/tildaslashalef/revu/internal/ulid"
)

// Repository defines operations for managing sessions and entries
type Repository interface {
	// CreateSession creates a new session
	CreateSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id string) (*Session, error)

	// TouchSession bumps a session's updated_at timestamp
	TouchSession(ctx context.Context, id string) error

	// CreateEntry stores a completed review
	CreateEntry(ctx context.Context, entry *Entry) error

	// GetEntry retrieves an entry by ID
	GetEntry(ctx context.Context, id string) (*Entry, error)

	// ListEntries retrieves recent entries, newest first
	ListEntries(ctx context.Context, limit, offset int) ([]*Entry, error)

	// DeleteEntry removes an entry
	DeleteEntry(ctx context.Context, id string) error
}

// SQLRepository implements the Repository interface using a SQL database
type SQLRepository struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *loggy.Logger
}

// NewSQLRepository creates a new SQL repository
func NewSQLRepository(db *sql.DB, logger *loggy.Logger) *SQLRepository {
	return &SQLRepository{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: logger,
	}
}

// CreateSession creates a new session
func (r *SQLRepository) CreateSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = ulid.SessionID()
	}

	query, args, err := r.sq.Insert("sessions").
		Columns("id", "name", "created_at", "updated_at").
		Values(session.ID, session.Name, session.CreatedAt, session.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building session insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *SQLRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	query, args, err := r.sq.Select("id", "name", "created_at", "updated_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building session select: %w", err)
	}

	var session Session
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&session.ID, &session.Name, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return &session, nil
}

// TouchSession bumps a session's updated_at timestamp
func (r *SQLRepository) TouchSession(ctx context.Context, id string) error {
	query, args, err := r.sq.Update("sessions").
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building session update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	return nil
}

// CreateEntry stores a completed review
func (r *SQLRepository) CreateEntry(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = ulid.ReviewID()
	}

	result, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshalling review result: %w", err)
	}

	query, args, err := r.sq.Insert("reviews").
		Columns("id", "session_id", "language", "original_file_name", "code", "result", "created_at").
		Values(entry.ID, entry.SessionID, string(entry.Language), entry.OriginalFileName, entry.Code, string(result), entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building entry insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	return nil
}

// GetEntry retrieves an entry by ID
func (r *SQLRepository) GetEntry(ctx context.Context, id string) (*Entry, error) {
	query, args, err := r.entrySelect().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building entry select: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	entry, err := r.scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("review not found: %s", id)
		}
		return nil, err
	}

	return entry, nil
}

// ListEntries retrieves recent entries, newest first. Rows whose stored
// result no longer unmarshals are discarded rather than surfaced as errors.
func (r *SQLRepository) ListEntries(ctx context.Context, limit, offset int) ([]*Entry, error) {
	query, args, err := r.entrySelect().
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building entries select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			r.logger.Warn("Discarding unreadable history entry", "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// DeleteEntry removes an entry
func (r *SQLRepository) DeleteEntry(ctx context.Context, id string) error {
	query, args, err := r.sq.Delete("reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building entry delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review not found: %s", id)
	}

	return nil
}

func (r *SQLRepository) entrySelect() squirrel.SelectBuilder {
	return r.sq.Select("id", "session_id", "language", "original_file_name", "code", "result", "created_at").
		From("reviews")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry    Entry
		language string
		fileName sql.NullString
		result   string
	)

	if err := row.Scan(&entry.ID, &entry.SessionID, &language, &fileName, &entry.Code, &result, &entry.CreatedAt); err != nil {
		return nil, err
	}

	entry.Language = review.Language(language)
	if fileName.Valid {
		entry.OriginalFileName = fileName.String
	}

	if err := json.Unmarshal([]byte(result), &entry.Result); err != nil {
		return nil, fmt.Errorf("unmarshalling stored result for %s: %w", entry.ID, err)
	}

	return &entry, nil
}
