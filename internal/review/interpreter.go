package review

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tildaslashalef/revu/internal/loggy"
)

// The model is asked for bare JSON via responseMimeType, but wrapped
// ```json fences still show up occasionally and are tolerated here.
var codeFenceRegex = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeFence removes a surrounding markdown code fence, if any
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if match := codeFenceRegex.FindStringSubmatch(trimmed); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return trimmed
}

// ParseDetection interprets the raw detect response. Detection is best-effort
// by design: an out-of-set language tag or confidence level is substituted
// with the fallback result rather than failing. Only syntactically invalid
// JSON is an error.
func ParseDetection(raw string, fallback Language) (*LanguageDetection, error) {
	var payload struct {
		Language   string `json:"language"`
		Confidence string `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, NewError(ErrKindResponseParsing, "the detection response could not be parsed", err)
	}

	result := &LanguageDetection{
		Language:   Language(strings.ToLower(strings.TrimSpace(payload.Language))),
		Confidence: Confidence(strings.ToLower(strings.TrimSpace(payload.Confidence))),
	}

	if !result.Language.IsSupported() || !result.Confidence.IsValid() {
		loggy.Warn("Detection response outside the allowed set, substituting fallback",
			"language", payload.Language,
			"confidence", payload.Confidence)
		return &LanguageDetection{Language: fallback, Confidence: ConfidenceLow}, nil
	}

	return result, nil
}

// ParseCodeReview interprets the raw review response into a CodeReview.
// A null suggestedCode survives as nil all the way to the caller.
func ParseCodeReview(raw string) (*CodeReview, error) {
	var payload struct {
		Summary       string  `json:"summary"`
		Points        []Point `json:"points"`
		SuggestedCode *string `json:"suggestedCode"`
	}

	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, NewError(ErrKindResponseParsing, "the review response could not be parsed", err)
	}

	if payload.Points == nil {
		payload.Points = []Point{}
	}

	return &CodeReview{
		Review: StructuredReview{
			Summary: payload.Summary,
			Points:  payload.Points,
		},
		SuggestedCode: payload.SuggestedCode,
	}, nil
}
