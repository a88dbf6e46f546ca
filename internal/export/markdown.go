// Package export serializes reviews into downloadable Markdown documents
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tildaslashalef/revu/internal/history"
	"github.com/tildaslashalef/revu/internal/review"
)

// Options controls which parts of a review are included in the document
type Options struct {
	IncludeOriginalCode  bool
	IncludeSuggestedCode bool
}

// DefaultOptions includes everything
func DefaultOptions() Options {
	return Options{
		IncludeOriginalCode:  true,
		IncludeSuggestedCode: true,
	}
}

// Markdown renders a stored review as a Markdown document
func Markdown(entry *history.Entry, opts Options) string {
	var b strings.Builder

	title := entry.OriginalFileName
	if title == "" {
		title = fmt.Sprintf("%s snippet", entry.Language.DisplayName())
	}

	fmt.Fprintf(&b, "# Code Review: %s\n\n", title)
	fmt.Fprintf(&b, "- **Language:** %s\n", entry.Language.DisplayName())
	fmt.Fprintf(&b, "- **Reviewed:** %s\n\n", entry.CreatedAt.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "## Summary\n\n%s\n\n", entry.Result.Review.Summary)

	if len(entry.Result.Review.Points) > 0 {
		b.WriteString("## Feedback\n\n")
		for _, point := range entry.Result.Review.Points {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", point.Topic, point.Feedback)
		}
	}

	if opts.IncludeOriginalCode {
		fmt.Fprintf(&b, "## Original Code\n\n```%s\n%s\n```\n\n", entry.Language, entry.Code)
	}

	if opts.IncludeSuggestedCode {
		if entry.Result.SuggestedCode != nil {
			fmt.Fprintf(&b, "## Suggested Code\n\n```%s\n%s\n```\n", entry.Language, *entry.Result.SuggestedCode)
		} else {
			b.WriteString("## Suggested Code\n\nNo changes recommended.\n")
		}
	}

	return b.String()
}

// FileName derives the export filename from the original upload name by
// inserting a ".review" suffix before the extension, or falls back to a
// timestamp-based default when no name is known.
func FileName(entry *history.Entry, now time.Time) string {
	if entry.OriginalFileName == "" {
		return fmt.Sprintf("review-%s.md", now.Format("20060102-150405"))
	}

	base := filepath.Base(entry.OriginalFileName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return fmt.Sprintf("%s.review%s.md", stem, ext)
}

// ExplanationMarkdown renders an explain-further response as a small
// standalone document
func ExplanationMarkdown(point review.Point, explanation string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", point.Topic)
	fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(point.Feedback, "\n", "\n> "))
	b.WriteString(explanation)
	if !strings.HasSuffix(explanation, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}
