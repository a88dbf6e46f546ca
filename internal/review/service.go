package review

import (
	"context"
	"errors"
	"strings"

	"github.com/tildaslashalef/revu/internal/config"
	"github.com/tildaslashalef/revu/internal/gemini"
	"github.com/tildaslashalef/revu/internal/loggy"
)

// ErrDetectionInconclusive is surfaced when auto-detection cannot decide with
// enough confidence. No partial review is attempted; the user is asked to
// select the language manually.
var ErrDetectionInconclusive = errors.New("could not confidently detect the language; please select it manually")

// Generator is the inference call the orchestrator depends on
type Generator interface {
	GenerateContent(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// Service orchestrates the detect, review and explain operations. Calls are
// sequential; at most one inference request is in flight per user action.
type Service struct {
	client Generator
	model  string
	cfg    config.ReviewConfig
	logger *loggy.Logger
}

// NewService creates the review orchestrator. A missing API key is a
// construction-time failure, not a per-call one.
func NewService(client Generator, cfg *config.Config, logger *loggy.Logger) (*Service, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &Service{
		client: client,
		model:  cfg.Gemini.Model,
		cfg:    cfg.Review,
		logger: logger,
	}, nil
}

// DetectLanguage classifies the snippet's language. Snippets below the
// minimum length short-circuit to the fallback result without a network call;
// they cannot be classified with confidence anyway.
func (s *Service) DetectLanguage(ctx context.Context, code string) (*LanguageDetection, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptySnippet
	}

	if len(strings.TrimSpace(code)) < s.cfg.DetectMinLength {
		s.logger.Debug("Snippet below detection threshold, using fallback",
			"length", len(code),
			"min_length", s.cfg.DetectMinLength)
		return &LanguageDetection{
			Language:   s.fallbackTag(),
			Confidence: ConfidenceLow,
		}, nil
	}

	instruction, err := BuildDetectPrompt(code, s.cfg.DetectMaxChars, s.fallbackTag())
	if err != nil {
		return nil, Classify(err)
	}

	raw, err := s.generate(ctx, "", instruction, DetectSchema())
	if err != nil {
		return nil, Classify(err)
	}

	result, err := ParseDetection(raw, s.fallbackTag())
	if err != nil {
		return nil, Classify(err)
	}

	s.logger.Debug("Language detected",
		"language", result.Language,
		"confidence", result.Confidence)

	return result, nil
}

// ReviewCode reviews the snippet as the given concrete language tag
func (s *Service) ReviewCode(ctx context.Context, code string, language Language) (*CodeReview, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptySnippet
	}

	if !language.IsSupported() {
		return nil, NewError(ErrKindBadRequest, "a concrete language tag is required for review", nil)
	}

	system, user, err := BuildReviewPrompt(code, language)
	if err != nil {
		return nil, Classify(err)
	}

	raw, err := s.generate(ctx, system, user, ReviewSchema())
	if err != nil {
		return nil, Classify(err)
	}

	result, err := ParseCodeReview(raw)
	if err != nil {
		return nil, Classify(err)
	}

	s.logger.Info("Review completed",
		"language", language,
		"points", len(result.Review.Points),
		"has_suggestion", result.SuggestedCode != nil)

	return result, nil
}

// Review handles one review request end to end. When the requested language
// is "auto" it runs the composite detect-then-review flow: a low-confidence
// detection aborts the whole operation with ErrDetectionInconclusive.
// It returns the review together with the language it was performed as.
func (s *Service) Review(ctx context.Context, req Request) (*CodeReview, Language, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, req.Language, ErrEmptySnippet
	}

	language := req.Language
	if language == LanguageAuto {
		detection, err := s.DetectLanguage(ctx, req.Code)
		if err != nil {
			return nil, language, err
		}

		if detection.Confidence == ConfidenceLow {
			return nil, language, ErrDetectionInconclusive
		}

		language = detection.Language
	}

	result, err := s.ReviewCode(ctx, req.Code, language)
	if err != nil {
		return nil, language, err
	}

	return result, language, nil
}

// ExplainFurther elaborates on one feedback point. The response is free-form
// markdown and is returned unparsed.
func (s *Service) ExplainFurther(ctx context.Context, code string, language Language, point Point) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptySnippet
	}

	if !language.IsSupported() {
		return "", NewError(ErrKindBadRequest, "a concrete language tag is required for explanations", nil)
	}

	instruction, err := BuildExplainPrompt(code, language, point)
	if err != nil {
		return "", Classify(err)
	}

	raw, err := s.generate(ctx, "", instruction, nil)
	if err != nil {
		return "", Classify(err)
	}

	return raw, nil
}

// generate performs one inference call, attaching the declared output schema
// when one is supplied
func (s *Service) generate(ctx context.Context, system, user string, schema *gemini.Schema) (string, error) {
	req := gemini.GenerateRequest{
		Model: s.model,
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: user}}},
		},
	}

	if system != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
	}

	if schema != nil {
		req.GenerationConfig = &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	resp, err := s.client.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", NewError(ErrKindUnknown, "the model returned an empty response", nil)
	}

	return text, nil
}

func (s *Service) fallbackTag() Language {
	tag := Language(s.cfg.FallbackTag)
	if tag.IsSupported() {
		return tag
	}
	return LanguageJavaScript
}
