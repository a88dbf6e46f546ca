// Package commands implements the CLI subcommands
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/export"
	"github.com/tildaslashalef/revu/internal/history"
	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
	"github.com/tildaslashalef/revu/internal/utils"
)

// ReviewCommand returns the CLI command for reviewing a code snippet
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Review a code snippet with the configured model",
		ArgsUsage: "[FILE]",
		Description: "Reads code from FILE, or from stdin when no file is given, and prints\n" +
			"a structured review. The language is detected automatically unless --lang\n" +
			"is set or the file extension already decides it.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Language tag to review as (e.g. go, python); skips detection",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Do not record the review in history",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to record the review under (default: a new session)",
			},
		},
		Action: reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	svc, err := application.RequireReview()
	if err != nil {
		utils.PrintError("No API key configured. Set REVU_GEMINI_API_KEY and try again.")
		return err
	}

	code, fileName, err := readSnippet(c)
	if err != nil {
		return err
	}

	language, err := resolveLanguage(c.String("lang"), fileName)
	if err != nil {
		return err
	}

	req := review.Request{
		Code:             code,
		Language:         language,
		OriginalFileName: fileName,
	}

	if language == review.LanguageAuto {
		utils.PrintInfo("Detecting language...")
	}

	result, reviewedAs, err := svc.Review(c.Context, req)
	if err != nil {
		return reportReviewError(err)
	}

	loggy.Info("Review complete", "language", reviewedAs, "points", len(result.Review.Points))

	entry := history.NewEntry("", req, reviewedAs, *result)

	utils.PrintKeyValue("Language", reviewedAs.DisplayName())
	fmt.Print(utils.RenderMarkdown(export.Markdown(entry, export.DefaultOptions())))

	if !c.Bool("no-save") {
		saved, err := persistReview(c, application, req, reviewedAs, *result)
		if err != nil {
			utils.PrintWarning(fmt.Sprintf("Review was not saved to history: %s", err))
		} else {
			utils.PrintSubtle(fmt.Sprintf("Saved as %s", saved.ID))
		}
	}

	return nil
}

func persistReview(c *cli.Context, application *app.App, req review.Request, language review.Language, result review.CodeReview) (*history.Entry, error) {
	sessionID := c.String("session")
	if sessionID == "" {
		session, err := application.History.StartSession(c.Context, "")
		if err != nil {
			return nil, err
		}
		sessionID = session.ID
	}

	return application.History.SaveReview(c.Context, sessionID, req, language, result)
}

// resolveLanguage decides the review tag before any network call: an explicit
// --lang wins, then the file extension, then automatic detection.
func resolveLanguage(lang, fileName string) (review.Language, error) {
	if lang != "" {
		parsed := review.ParseLanguage(lang)
		if parsed == review.LanguageAuto && !strings.EqualFold(lang, string(review.LanguageAuto)) {
			return "", fmt.Errorf("unsupported language %q", lang)
		}
		return parsed, nil
	}

	if fileName != "" {
		return review.LanguageFromFileName(fileName), nil
	}

	return review.LanguageAuto, nil
}

// readSnippet reads the snippet from the FILE argument or stdin
func readSnippet(c *cli.Context) (code string, fileName string, err error) {
	if c.Args().Len() > 0 {
		path := c.Args().First()
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), filepath.Base(path), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "", nil
}

// reportReviewError prints a friendly message for known failure modes and
// returns the error for the CLI exit code.
func reportReviewError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, review.ErrEmptySnippet):
		utils.PrintError("The snippet is empty. Paste or pipe some code first.")
	case errors.Is(err, review.ErrDetectionInconclusive):
		utils.PrintError("Could not determine the language with enough confidence.")
		utils.PrintInfo("Re-run with --lang to pick the language explicitly.")
	default:
		classified := review.Classify(err)
		utils.PrintError(classified.Message)
	}
	return err
}
