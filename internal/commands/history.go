package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/export"
	"github.com/tildaslashalef/revu/internal/utils"
)

// HistoryCommand returns the CLI command for browsing saved reviews
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse saved reviews",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of reviews to list",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of reviews to skip",
				Value: 0,
			},
		},
		Action: historyListAction,
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a saved review",
				ArgsUsage: "REVIEW_ID",
				Action:    historyShowAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved review",
				ArgsUsage: "REVIEW_ID",
				Action:    historyDeleteAction,
			},
		},
	}
}

func historyListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	entries, err := application.History.ListReviews(c.Context, c.Int("limit"), c.Int("offset"))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		utils.PrintInfo("No saved reviews yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.OriginalFileName
		if name == "" {
			name = "(pasted)"
		}
		rows = append(rows, []string{
			entry.ID,
			entry.Language.DisplayName(),
			name,
			truncateSummary(entry.Result.Review.Summary, 60),
			entry.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	utils.PrintTable("Saved Reviews", []string{"ID", "Language", "File", "Summary", "Created"}, rows)
	return nil
}

func historyShowAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: revu history show REVIEW_ID")
	}

	entry, err := application.History.GetReview(c.Context, c.Args().First())
	if err != nil {
		utils.PrintError(fmt.Sprintf("Review %s not found", c.Args().First()))
		return err
	}

	utils.PrintKeyValue("Language", entry.Language.DisplayName())
	if entry.OriginalFileName != "" {
		utils.PrintKeyValue("File", entry.OriginalFileName)
	}
	fmt.Print(utils.RenderMarkdown(export.Markdown(entry, export.DefaultOptions())))
	return nil
}

func historyDeleteAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: revu history delete REVIEW_ID")
	}

	id := c.Args().First()
	if err := application.History.DeleteReview(c.Context, id); err != nil {
		utils.PrintError(fmt.Sprintf("Failed to delete review %s", id))
		return err
	}

	utils.PrintSuccess(fmt.Sprintf("Deleted review %s", id))
	return nil
}

func truncateSummary(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
