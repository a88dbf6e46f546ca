package ulid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	assert.Len(t, id, 26, "A raw ULID string is 26 characters")
	assert.True(t, Validate(id), "Generated ULID should validate")

	// Verify it contains a valid timestamp close to now
	ts, err := Timestamp(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Second, "ULID timestamp should be close to now")
}

func TestGenerateWithPrefix(t *testing.T) {
	prefixes := []string{PrefixSession, PrefixReview, PrefixRequest, "custom"}

	for _, prefix := range prefixes {
		id := GenerateWithPrefix(prefix)

		assert.True(t, strings.HasPrefix(id, prefix+PrefixSeparator),
			"String representation should start with the prefix")
		assert.True(t, Validate(id), "Prefixed ULID should validate")
	}
}

func TestGenerateMonotonic(t *testing.T) {
	previous := Generate()
	for i := 0; i < 100; i++ {
		next := Generate()
		assert.True(t, next > previous, "ULIDs generated in sequence should sort ascending")
		previous = next
	}
}

func TestEntityIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(SessionID(), "ses-"))
	assert.True(t, strings.HasPrefix(ReviewID(), "rev-"))
	assert.True(t, strings.HasPrefix(RequestID(), "req-"))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate(Generate()))
	assert.True(t, Validate(SessionID()))
	assert.False(t, Validate("not-a-ulid"))
	assert.False(t, Validate(""))
	assert.False(t, Validate("ses-"))
}

func TestTimestampInvalid(t *testing.T) {
	_, err := Timestamp("rev-garbage")
	assert.Error(t, err)
}
