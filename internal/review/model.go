// Package review provides snippet code review orchestration backed by an LLM
package review

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// Language is a tag identifying the programming language of a snippet
type Language string

const (
	// LanguageAuto asks the orchestrator to detect the language first
	LanguageAuto Language = "auto"

	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageSQL        Language = "sql"
	LanguageJSON       Language = "json"
)

// SupportedLanguages is the fixed set of reviewable language tags, in the
// order they are offered to users and enumerated in prompts.
var SupportedLanguages = []Language{
	LanguageJavaScript,
	LanguageTypeScript,
	LanguagePython,
	LanguageJava,
	LanguageCSharp,
	LanguageGo,
	LanguageRust,
	LanguageHTML,
	LanguageCSS,
	LanguageSQL,
	LanguageJSON,
}

// IsSupported reports whether the tag is in the fixed language set.
// The "auto" pseudo-tag is not a reviewable language.
func (l Language) IsSupported() bool {
	for _, lang := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable name used in prompts and exports
func (l Language) DisplayName() string {
	switch l {
	case LanguageJavaScript:
		return "JavaScript"
	case LanguageTypeScript:
		return "TypeScript"
	case LanguagePython:
		return "Python"
	case LanguageJava:
		return "Java"
	case LanguageCSharp:
		return "C#"
	case LanguageGo:
		return "Go"
	case LanguageRust:
		return "Rust"
	case LanguageHTML:
		return "HTML"
	case LanguageCSS:
		return "CSS"
	case LanguageSQL:
		return "SQL"
	case LanguageJSON:
		return "JSON"
	case LanguageAuto:
		return "Auto-detect"
	default:
		return string(l)
	}
}

// ParseLanguage normalizes a string to a Language tag; unknown values map to
// LanguageAuto so that callers fall back to detection rather than failing.
func ParseLanguage(s string) Language {
	tag := Language(strings.ToLower(strings.TrimSpace(s)))
	if tag.IsSupported() {
		return tag
	}
	return LanguageAuto
}

// Confidence is the coarse certainty attached to language detection
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid reports whether the confidence is one of the three levels
func (c Confidence) IsValid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Request describes one user-triggered review action. Immutable per call.
type Request struct {
	Code             string   `json:"code"`
	Language         Language `json:"language"`
	OriginalFileName string   `json:"original_file_name,omitempty"`
}

// Point is one discrete piece of feedback with a topic label and markdown body
type Point struct {
	Topic    string `json:"topic"`
	Feedback string `json:"feedback"`
}

// StructuredReview is the model's feedback: a summary plus ordered points.
// Point order is display order; no reordering is performed.
type StructuredReview struct {
	Summary string  `json:"summary"`
	Points  []Point `json:"points"`
}

// CodeReview is the result of reviewing a snippet. SuggestedCode of nil means
// the model recommends no changes.
type CodeReview struct {
	Review        StructuredReview `json:"review"`
	SuggestedCode *string          `json:"suggested_code"`
}

// LanguageDetection is the result of the detect operation
type LanguageDetection struct {
	Language   Language   `json:"language"`
	Confidence Confidence `json:"confidence"`
}

// Value implements driver.Valuer so a CodeReview can be stored as JSON
func (r CodeReview) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for database deserialization
func (r *CodeReview) Scan(src interface{}) error {
	var source []byte
	switch src := src.(type) {
	case string:
		source = []byte(src)
	case []byte:
		source = src
	case nil:
		return nil
	default:
		return errors.New("incompatible type for CodeReview")
	}

	if len(source) == 0 {
		return nil
	}

	return json.Unmarshal(source, r)
}
