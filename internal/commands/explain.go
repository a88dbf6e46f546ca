package commands

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/export"
	"github.com/tildaslashalef/revu/internal/utils"
)

// ExplainCommand returns the CLI command for elaborating on a feedback point
func ExplainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Explain one feedback point of a saved review in more depth",
		ArgsUsage: "REVIEW_ID POINT_NUMBER",
		Description: "Takes the ID of a saved review and the number of one of its feedback\n" +
			"points (as shown in the review output, starting at 1) and asks the model\n" +
			"for a longer explanation with a before/after example.",
		Action: explainAction,
	}
}

func explainAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	svc, err := application.RequireReview()
	if err != nil {
		utils.PrintError("No API key configured. Set REVU_GEMINI_API_KEY and try again.")
		return err
	}

	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: revu explain REVIEW_ID POINT_NUMBER")
	}

	id := c.Args().Get(0)
	pointNum, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || pointNum < 1 {
		return fmt.Errorf("POINT_NUMBER must be a positive integer")
	}

	entry, err := application.History.GetReview(c.Context, id)
	if err != nil {
		utils.PrintError(fmt.Sprintf("Review %s not found", id))
		return err
	}

	points := entry.Result.Review.Points
	if pointNum > len(points) {
		return fmt.Errorf("review %s has %d feedback point(s), not %d", id, len(points), pointNum)
	}
	point := points[pointNum-1]

	utils.PrintKeyValue("Topic", point.Topic)

	explanation, err := svc.ExplainFurther(c.Context, entry.Code, entry.Language, point)
	if err != nil {
		return reportReviewError(err)
	}

	fmt.Print(utils.RenderMarkdown(export.ExplanationMarkdown(point, explanation)))
	return nil
}
