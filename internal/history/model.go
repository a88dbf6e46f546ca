// Package history persists review sessions and their results
package history

import (
	"time"

	"github.com/tildaslashalef/revu/internal/review"
)

// Session groups the reviews performed in one sitting
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one stored review: the request that triggered it plus its result
type Entry struct {
	ID               string            `json:"id"`
	SessionID        string            `json:"session_id"`
	Language         review.Language   `json:"language"`
	OriginalFileName string            `json:"original_file_name,omitempty"`
	Code             string            `json:"code"`
	Result           review.CodeReview `json:"result"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NewSession creates a new session instance
func NewSession(name string) *Session {
	now := time.Now()
	return &Session{
		ID:        "", // Will be set by the repository
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewEntry creates a new entry for a completed review
func NewEntry(sessionID string, req review.Request, language review.Language, result review.CodeReview) *Entry {
	return &Entry{
		ID:               "", // Will be set by the repository
		SessionID:        sessionID,
		Language:         language,
		OriginalFileName: req.OriginalFileName,
		Code:             req.Code,
		Result:           result,
		CreatedAt:        time.Now(),
	}
}
