package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json",
			input:    `{"language":"go"}`,
			expected: `{"language":"go"}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"language\":\"go\"}\n```",
			expected: `{"language":"go"}`,
		},
		{
			name:     "anonymous fence",
			input:    "```\n{\"language\":\"go\"}\n```",
			expected: `{"language":"go"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```json\n{\"language\":\"go\"}\n```\n  ",
			expected: `{"language":"go"}`,
		},
		{
			name:     "fence inside content is preserved",
			input:    `{"feedback":"use ` + "```go```" + ` blocks"}`,
			expected: `{"feedback":"use ` + "```go```" + ` blocks"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFence(tt.input))
		})
	}
}

func TestParseDetection(t *testing.T) {
	result, err := ParseDetection(`{"language":"python","confidence":"high"}`, LanguageJavaScript)
	require.NoError(t, err)
	assert.Equal(t, LanguagePython, result.Language)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
}

func TestParseDetectionNormalizesCase(t *testing.T) {
	result, err := ParseDetection(`{"language":"Python","confidence":"HIGH"}`, LanguageJavaScript)
	require.NoError(t, err)
	assert.Equal(t, LanguagePython, result.Language)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
}

func TestParseDetectionInvalidJSON(t *testing.T) {
	_, err := ParseDetection("I think this is Python code.", LanguageJavaScript)
	require.Error(t, err, "Non-JSON output must be a parsing error")

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrKindResponseParsing, classified.Kind)
}

func TestParseDetectionOutOfSetFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown language", `{"language":"cobol","confidence":"high"}`},
		{"auto is not a detection result", `{"language":"auto","confidence":"high"}`},
		{"unknown confidence", `{"language":"go","confidence":"certain"}`},
		{"empty fields", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDetection(tt.raw, LanguageJavaScript)
			require.NoError(t, err, "Out-of-set values substitute the fallback instead of failing")
			assert.Equal(t, LanguageJavaScript, result.Language)
			assert.Equal(t, ConfidenceLow, result.Confidence)
		})
	}
}

func TestParseCodeReview(t *testing.T) {
	raw := `{
		"summary": "Solid overall, two issues found.",
		"points": [
			{"topic": "Correctness", "feedback": "Off-by-one in the loop bound."},
			{"topic": "Readability", "feedback": "Rename ` + "`x`" + ` to something meaningful."}
		],
		"suggestedCode": "for i := 0; i < n; i++ {}"
	}`

	result, err := ParseCodeReview(raw)
	require.NoError(t, err)

	assert.Equal(t, "Solid overall, two issues found.", result.Review.Summary)
	require.Len(t, result.Review.Points, 2)
	assert.Equal(t, "Correctness", result.Review.Points[0].Topic, "Point order must be preserved")
	assert.Equal(t, "Readability", result.Review.Points[1].Topic)
	require.NotNil(t, result.SuggestedCode)
	assert.Equal(t, "for i := 0; i < n; i++ {}", *result.SuggestedCode)
}

func TestParseCodeReviewNullSuggestion(t *testing.T) {
	raw := `{"summary":"Looks good.","points":[],"suggestedCode":null}`

	result, err := ParseCodeReview(raw)
	require.NoError(t, err)

	assert.Nil(t, result.SuggestedCode, "A null suggestion must stay nil, not become an empty string")
	assert.NotNil(t, result.Review.Points, "Points should be an empty slice, never nil")
	assert.Empty(t, result.Review.Points)
}

func TestParseCodeReviewMissingPoints(t *testing.T) {
	result, err := ParseCodeReview(`{"summary":"Fine.","suggestedCode":null}`)
	require.NoError(t, err)
	assert.NotNil(t, result.Review.Points)
	assert.Empty(t, result.Review.Points)
}

func TestParseCodeReviewInvalidJSON(t *testing.T) {
	_, err := ParseCodeReview("```json\n{\"summary\": \"truncated")
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrKindResponseParsing, classified.Kind)
}

func TestParseCodeReviewFenced(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\",\"points\":[],\"suggestedCode\":null}\n```"

	result, err := ParseCodeReview(raw)
	require.NoError(t, err, "A fenced response should still parse")
	assert.Equal(t, "ok", result.Review.Summary)
}
