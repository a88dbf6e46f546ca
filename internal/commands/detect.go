package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/review"
	"github.com/tildaslashalef/revu/internal/utils"
)

// DetectCommand returns the CLI command for language detection
func DetectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect the programming language of a snippet",
		ArgsUsage: "[FILE]",
		Action:    detectAction,
	}
}

func detectAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	svc, err := application.RequireReview()
	if err != nil {
		utils.PrintError("No API key configured. Set REVU_GEMINI_API_KEY and try again.")
		return err
	}

	code, _, err := readSnippet(c)
	if err != nil {
		return err
	}

	result, err := svc.DetectLanguage(c.Context, code)
	if err != nil {
		return reportReviewError(err)
	}

	utils.PrintKeyValue("Language", result.Language.DisplayName())
	utils.PrintKeyValue("Confidence", string(result.Confidence))

	if result.Confidence == review.ConfidenceLow {
		fmt.Println()
		utils.PrintSubtle("Low confidence: the fallback language was substituted.")
	}

	return nil
}
