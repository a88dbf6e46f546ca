package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
)

func newTestRepository(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")

	repo := &SQLRepository{
		db:     db,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: loggy.NewNoopLogger(),
	}

	return repo, mock, func() { db.Close() }
}

func sampleEntry() *Entry {
	suggestion := "fixed code"
	return &Entry{
		ID:               "rev_01HTEST",
		SessionID:        "ses_01HTEST",
		Language:         review.LanguageGo,
		OriginalFileName: "main.go",
		Code:             "package main",
		Result: review.CodeReview{
			Review: review.StructuredReview{
				Summary: "Fine overall.",
				Points: []review.Point{
					{Topic: "Style", Feedback: "Prefer shorter names."},
				},
			},
			SuggestedCode: &suggestion,
		},
		CreatedAt: time.Now(),
	}
}

func TestCreateSession(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	session := NewSession("brave-otter")

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), session.Name, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateSession(context.Background(), session)
	assert.NoError(t, err, "CreateSession should not return an error")
	assert.NotEmpty(t, session.ID, "CreateSession should assign an ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSession(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
		AddRow("ses_01HTEST", "brave-otter", now, now)

	mock.ExpectQuery("SELECT .+ FROM sessions WHERE id = ?").
		WithArgs("ses_01HTEST").
		WillReturnRows(rows)

	session, err := repo.GetSession(context.Background(), "ses_01HTEST")
	require.NoError(t, err)
	assert.Equal(t, "brave-otter", session.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionNotFound(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM sessions WHERE id = ?").
		WithArgs("ses_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSession(context.Background(), "ses_missing")
	assert.ErrorContains(t, err, "session not found")
}

func TestCreateEntry(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	entry := sampleEntry()
	entry.ID = ""

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(
			sqlmock.AnyArg(),
			entry.SessionID,
			string(entry.Language),
			entry.OriginalFileName,
			entry.Code,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateEntry(context.Background(), entry)
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID, "CreateEntry should assign an ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEntry(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	entry := sampleEntry()
	result, err := json.Marshal(entry.Result)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "language", "original_file_name", "code", "result", "created_at",
	}).AddRow(entry.ID, entry.SessionID, string(entry.Language), entry.OriginalFileName, entry.Code, string(result), entry.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM reviews WHERE id = ?").
		WithArgs(entry.ID).
		WillReturnRows(rows)

	got, err := repo.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)

	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, review.LanguageGo, got.Language)
	assert.Equal(t, "Fine overall.", got.Result.Review.Summary)
	require.NotNil(t, got.Result.SuggestedCode, "The stored suggestion must round-trip")
	assert.Equal(t, "fixed code", *got.Result.SuggestedCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEntryNotFound(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM reviews WHERE id = ?").
		WithArgs("rev_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEntry(context.Background(), "rev_missing")
	assert.ErrorContains(t, err, "review not found")
}

func TestListEntriesDiscardsCorruptRows(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	entry := sampleEntry()
	result, err := json.Marshal(entry.Result)
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "language", "original_file_name", "code", "result", "created_at",
	}).
		AddRow("rev_good", entry.SessionID, "go", "main.go", entry.Code, string(result), now).
		AddRow("rev_bad", entry.SessionID, "go", "other.go", entry.Code, "{not json", now)

	mock.ExpectQuery("SELECT .+ FROM reviews ORDER BY created_at DESC").
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), 20, 0)
	require.NoError(t, err, "Corrupt rows must not fail the listing")

	require.Len(t, entries, 1, "The unreadable row should be discarded")
	assert.Equal(t, "rev_good", entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntry(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM reviews").
		WithArgs("rev_01HTEST").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteEntry(context.Background(), "rev_01HTEST")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntryNotFound(t *testing.T) {
	repo, mock, cleanup := newTestRepository(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM reviews").
		WithArgs("rev_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteEntry(context.Background(), "rev_missing")
	assert.ErrorContains(t, err, "review not found")
}
