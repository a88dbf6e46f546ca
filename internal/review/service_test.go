package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/revu/internal/config"
	"github.com/tildaslashalef/revu/internal/gemini"
	"github.com/tildaslashalef/revu/internal/loggy"
)

// stubGenerator replays canned responses and records the requests it saw
type stubGenerator struct {
	responses []string
	err       error
	requests  []gemini.GenerateRequest
}

func (s *stubGenerator) GenerateContent(_ context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}

	var text string
	if len(s.responses) > 0 {
		text = s.responses[0]
		s.responses = s.responses[1:]
	}

	return &gemini.GenerateResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Parts: []gemini.Part{{Text: text}}}},
		},
	}, nil
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Review.DetectMaxChars = 2000
	cfg.Review.DetectMinLength = 20
	cfg.Review.FallbackTag = "javascript"
	return cfg
}

func newTestService(t *testing.T, stub *stubGenerator) *Service {
	t.Helper()
	svc, err := NewService(stub, testConfig(), loggy.NewNoopLogger())
	require.NoError(t, err, "NewService should succeed with an API key configured")
	return svc
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Gemini.APIKey = ""

	_, err := NewService(&stubGenerator{}, cfg, loggy.NewNoopLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey, "Construction must fail without a key")
}

func TestDetectLanguage(t *testing.T) {
	stub := &stubGenerator{responses: []string{`{"language":"go","confidence":"high"}`}}
	svc := newTestService(t, stub)

	result, err := svc.DetectLanguage(context.Background(), "package main\n\nfunc main() {}\n")
	require.NoError(t, err)

	assert.Equal(t, LanguageGo, result.Language)
	assert.Equal(t, ConfidenceHigh, result.Confidence)

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	require.NotNil(t, req.GenerationConfig, "Detection must declare a response schema")
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
	assert.NotNil(t, req.GenerationConfig.ResponseSchema)
}

func TestDetectLanguageEmptySnippet(t *testing.T) {
	stub := &stubGenerator{}
	svc := newTestService(t, stub)

	_, err := svc.DetectLanguage(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptySnippet)
	assert.Empty(t, stub.requests, "An empty snippet must not trigger a network call")
}

func TestDetectLanguageShortSnippet(t *testing.T) {
	stub := &stubGenerator{}
	svc := newTestService(t, stub)

	result, err := svc.DetectLanguage(context.Background(), "x = 1")
	require.NoError(t, err)

	assert.Equal(t, LanguageJavaScript, result.Language, "Short snippets resolve to the fallback tag")
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Empty(t, stub.requests, "Snippets below the minimum length must not trigger a network call")
}

func TestReviewCode(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"summary":"One issue.","points":[{"topic":"Correctness","feedback":"Unchecked error."}],"suggestedCode":null}`,
	}}
	svc := newTestService(t, stub)

	result, err := svc.ReviewCode(context.Background(), "f, _ := os.Open(p)", LanguageGo)
	require.NoError(t, err)

	assert.Equal(t, "One issue.", result.Review.Summary)
	require.Len(t, result.Review.Points, 1)
	assert.Nil(t, result.SuggestedCode)

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	require.NotNil(t, req.SystemInstruction, "Review must carry a system instruction")
	require.NotNil(t, req.GenerationConfig)
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
}

func TestReviewCodeRejectsAuto(t *testing.T) {
	stub := &stubGenerator{}
	svc := newTestService(t, stub)

	_, err := svc.ReviewCode(context.Background(), "some code", LanguageAuto)
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrKindBadRequest, classified.Kind)
	assert.Empty(t, stub.requests)
}

func TestReviewAutoDetects(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"language":"python","confidence":"high"}`,
		`{"summary":"Fine.","points":[],"suggestedCode":null}`,
	}}
	svc := newTestService(t, stub)

	req := Request{Code: "def greet(name):\n    print(name)\n", Language: LanguageAuto}
	result, language, err := svc.Review(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, LanguagePython, language, "The review must run as the detected language")
	assert.Equal(t, "Fine.", result.Review.Summary)
	assert.Len(t, stub.requests, 2, "Auto mode performs detect then review")
}

func TestReviewAbortsOnLowConfidence(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"language":"javascript","confidence":"low"}`,
	}}
	svc := newTestService(t, stub)

	req := Request{Code: "some thoroughly ambiguous text here", Language: LanguageAuto}
	_, _, err := svc.Review(context.Background(), req)

	assert.ErrorIs(t, err, ErrDetectionInconclusive)
	assert.Len(t, stub.requests, 1, "No review request may follow an inconclusive detection")
}

func TestReviewExplicitLanguageSkipsDetection(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"summary":"Fine.","points":[],"suggestedCode":null}`,
	}}
	svc := newTestService(t, stub)

	req := Request{Code: "SELECT id FROM users;", Language: LanguageSQL}
	_, language, err := svc.Review(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, LanguageSQL, language)
	assert.Len(t, stub.requests, 1, "An explicit tag must not trigger detection")
}

func TestReviewPropagatesTransportError(t *testing.T) {
	stub := &stubGenerator{err: &gemini.APIError{ErrorDetail: &gemini.ErrorDetails{
		Code:    401,
		Message: "API key not valid",
		Status:  "UNAUTHENTICATED",
	}}}
	svc := newTestService(t, stub)

	_, err := svc.ReviewCode(context.Background(), "some code to review", LanguageGo)
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrKindAPIKey, classified.Kind)
}

func TestExplainFurther(t *testing.T) {
	stub := &stubGenerator{responses: []string{"Ignoring errors hides failures.\n\n**Before:**..."}}
	svc := newTestService(t, stub)

	point := Point{Topic: "Error handling", Feedback: "The error is ignored."}
	explanation, err := svc.ExplainFurther(context.Background(), "f, _ := os.Open(p)", LanguageGo, point)
	require.NoError(t, err)

	assert.Contains(t, explanation, "Ignoring errors")

	require.Len(t, stub.requests, 1)
	assert.Nil(t, stub.requests[0].GenerationConfig, "Explanations are free-form markdown, not schema-bound")
}

func TestGenerateEmptyResponse(t *testing.T) {
	stub := &stubGenerator{responses: []string{""}}
	svc := newTestService(t, stub)

	_, err := svc.ReviewCode(context.Background(), "some code to review", LanguageGo)
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrKindUnknown, classified.Kind)
}
