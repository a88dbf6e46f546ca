package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goombaio/namegenerator"

	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
)

// Service provides review history functionality
type Service struct {
	repo   Repository
	logger *loggy.Logger
}

// NewService creates a new history service
func NewService(db *sql.DB, logger *loggy.Logger) *Service {
	return &Service{
		repo:   NewSQLRepository(db, logger),
		logger: logger,
	}
}

// StartSession creates a new session. When no name is supplied a friendly
// generated one is used instead.
func (s *Service) StartSession(ctx context.Context, name string) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		name = generateSessionName()
	}

	session := NewSession(name)
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("Session started", "session_id", session.ID, "name", session.Name)

	return session, nil
}

// SaveReview stores a completed review under the given session
func (s *Service) SaveReview(ctx context.Context, sessionID string, req review.Request, language review.Language, result review.CodeReview) (*Entry, error) {
	entry := NewEntry(sessionID, req, language, result)

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving review: %w", err)
	}

	if err := s.repo.TouchSession(ctx, sessionID); err != nil {
		// The entry is already saved; a stale session timestamp is not
		// worth failing the operation over
		s.logger.Warn("Failed to touch session", "session_id", sessionID, "error", err)
	}

	return entry, nil
}

// GetReview retrieves a stored review by ID
func (s *Service) GetReview(ctx context.Context, id string) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListReviews retrieves recent stored reviews, newest first
func (s *Service) ListReviews(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListEntries(ctx, limit, offset)
}

// DeleteReview removes a stored review
func (s *Service) DeleteReview(ctx context.Context, id string) error {
	return s.repo.DeleteEntry(ctx, id)
}

// generateSessionName creates a random, memorable session name
func generateSessionName() string {
	seed := time.Now().UTC().UnixNano()
	name := namegenerator.NewNameGenerator(seed).Generate()

	// Some names might have underscores; convert to hyphens for consistency
	return strings.ReplaceAll(name, "_", "-")
}
