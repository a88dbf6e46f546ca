package review

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tildaslashalef/revu/internal/gemini"
)

// Templates for building instructions. Code is always embedded verbatim
// inside a fenced block.

const detectInstructionTemplate = `Identify the programming language of the code snippet below.

You MUST answer with one of these language tags and nothing else: {{.Tags}}.

Rules:
- "confidence" is "high" when the language is unmistakable, "medium" when it is likely, and "low" when you are guessing.
- If the snippet is too short or too ambiguous to classify, set "language" to "{{.Fallback}}" and "confidence" to "low".

The snippet may be truncated:

` + "```" + `
{{.Code}}
` + "```" + ``

const reviewSystemInstructionTemplate = `You are a senior software engineer performing a thorough code review of {{.Language}} code.

Examine the snippet along exactly these dimensions:
1. Correctness: bugs, logic errors, unhandled edge cases.
2. Best practices and readability: idiomatic {{.Language}} style, naming, structure.
3. Performance: wasted work, algorithmic issues, resource usage.
4. Security: injection, unsafe handling of input, leaked secrets.
5. Actionable suggestions: concrete, prioritized improvements.

Respond with a short overall "summary" and a list of "points", each with a brief "topic" label and markdown "feedback".

For "suggestedCode", provide a complete drop-in replacement of the entire snippet with your improvements applied. If no change is warranted, set "suggestedCode" to null; never return an empty string or a partial fragment.`

const reviewUserMessageTemplate = `Review the following {{.Language}} code:

` + "```{{.Tag}}" + `
{{.Code}}
` + "```" + ``

const explainInstructionTemplate = `During a code review of the {{.Language}} code below, the following feedback was given:

Topic: {{.Topic}}

Feedback:
{{.Feedback}}

Explain this feedback in more depth for a developer who wants to understand the reasoning. Use markdown. Where applicable, include a short illustrative before/after example. Do not repeat the full original snippet.

Original code:

` + "```{{.Tag}}" + `
{{.Code}}
` + "```" + ``

// DetectSchema declares the output shape of the detect operation
func DetectSchema() *gemini.Schema {
	return &gemini.Schema{
		Type: gemini.TypeObject,
		Properties: map[string]*gemini.Schema{
			"language": {
				Type:        gemini.TypeString,
				Description: "The detected language tag",
				Enum:        languageTagStrings(),
			},
			"confidence": {
				Type:        gemini.TypeString,
				Description: "How certain the classification is",
				Enum:        []string{string(ConfidenceHigh), string(ConfidenceMedium), string(ConfidenceLow)},
			},
		},
		Required: []string{"language", "confidence"},
	}
}

// ReviewSchema declares the output shape of the review operation
func ReviewSchema() *gemini.Schema {
	return &gemini.Schema{
		Type: gemini.TypeObject,
		Properties: map[string]*gemini.Schema{
			"summary": {
				Type:        gemini.TypeString,
				Description: "A short overall assessment of the snippet",
			},
			"points": {
				Type: gemini.TypeArray,
				Items: &gemini.Schema{
					Type: gemini.TypeObject,
					Properties: map[string]*gemini.Schema{
						"topic": {
							Type:        gemini.TypeString,
							Description: "Short label for the feedback point",
						},
						"feedback": {
							Type:        gemini.TypeString,
							Description: "Markdown body of the feedback point",
						},
					},
					Required: []string{"topic", "feedback"},
				},
			},
			"suggestedCode": {
				Type:        gemini.TypeString,
				Description: "Complete drop-in replacement snippet, or null when no change is warranted",
				Nullable:    true,
			},
		},
		Required: []string{"summary", "points", "suggestedCode"},
	}
}

// BuildDetectPrompt builds the instruction for language detection. The code
// is truncated to maxChars; detection is cheap and lossy on purpose.
func BuildDetectPrompt(code string, maxChars int, fallback Language) (string, error) {
	if maxChars > 0 && len(code) > maxChars {
		code = code[:maxChars]
	}

	return renderTemplate("detect", detectInstructionTemplate, map[string]string{
		"Tags":     languageTagList(),
		"Fallback": string(fallback),
		"Code":     code,
	})
}

// BuildReviewPrompt builds the system instruction and user message for a
// review. The language must be a concrete tag; "auto" is resolved by the
// orchestrator before any prompt is built.
func BuildReviewPrompt(code string, language Language) (system string, user string, err error) {
	if !language.IsSupported() {
		return "", "", fmt.Errorf("cannot build review prompt for language %q", language)
	}

	system, err = renderTemplate("review_system", reviewSystemInstructionTemplate, map[string]string{
		"Language": language.DisplayName(),
	})
	if err != nil {
		return "", "", err
	}

	user, err = renderTemplate("review_user", reviewUserMessageTemplate, map[string]string{
		"Language": language.DisplayName(),
		"Tag":      string(language),
		"Code":     code,
	})
	if err != nil {
		return "", "", err
	}

	return system, user, nil
}

// BuildExplainPrompt builds the instruction for elaborating on one feedback
// point. The output is free-form markdown, not schema-constrained.
func BuildExplainPrompt(code string, language Language, point Point) (string, error) {
	if !language.IsSupported() {
		return "", fmt.Errorf("cannot build explain prompt for language %q", language)
	}

	return renderTemplate("explain", explainInstructionTemplate, map[string]string{
		"Language": language.DisplayName(),
		"Tag":      string(language),
		"Topic":    point.Topic,
		"Feedback": point.Feedback,
		"Code":     code,
	})
}

func renderTemplate(name, text string, data map[string]string) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", name, err)
	}

	return buf.String(), nil
}
