// Package ulid wraps github.com/oklog/ulid/v2 with prefixed, sortable
// identifiers for application entities.
package ulid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Common prefixes for different parts of the application
const (
	// Prefix for review session ULIDs
	PrefixSession = "ses"

	// Prefix for review-related ULIDs
	PrefixReview = "rev"

	// Prefix for request IDs
	PrefixRequest = "req"

	// PrefixSeparator is used to separate the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp.
func Generate() string {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyLock.Unlock()
	return id.String()
}

// GenerateWithPrefix creates a new ULID string with the current timestamp and
// a prefix identifying what the ID represents (e.g., "ses" for session).
func GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s%s%s", prefix, PrefixSeparator, Generate())
}

// SessionID generates an ID for a review session
func SessionID() string {
	return GenerateWithPrefix(PrefixSession)
}

// ReviewID generates an ID for a stored review
func ReviewID() string {
	return GenerateWithPrefix(PrefixReview)
}

// RequestID generates an ID for an inflight request
func RequestID() string {
	return GenerateWithPrefix(PrefixRequest)
}

// Validate checks if a string is a valid, optionally prefixed, ULID.
func Validate(id string) bool {
	raw := id
	if idx := strings.Index(id, PrefixSeparator); idx >= 0 {
		raw = id[idx+1:]
	}

	_, err := ulid.Parse(raw)
	return err == nil
}

// Timestamp extracts the embedded time from a ULID string, ignoring any prefix.
func Timestamp(id string) (time.Time, error) {
	raw := id
	if idx := strings.Index(id, PrefixSeparator); idx >= 0 {
		raw = id[idx+1:]
	}

	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing ulid: %w", err)
	}

	return time.UnixMilli(int64(parsed.Time())), nil
}
