package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/export"
	"github.com/tildaslashalef/revu/internal/utils"
)

// ExportCommand returns the CLI command for exporting a review as Markdown
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a saved review as a Markdown document",
		ArgsUsage: "REVIEW_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path ('-' writes to stdout, default: derived from the file name)",
			},
			&cli.BoolFlag{
				Name:  "no-code",
				Usage: "Omit the original code from the export",
			},
		},
		Action: exportAction,
	}
}

func exportAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: revu export REVIEW_ID")
	}

	id := c.Args().First()
	entry, err := application.History.GetReview(c.Context, id)
	if err != nil {
		utils.PrintError(fmt.Sprintf("Review %s not found", id))
		return err
	}

	opts := export.DefaultOptions()
	if c.Bool("no-code") {
		opts.IncludeOriginalCode = false
	}

	doc := export.Markdown(entry, opts)

	path := c.String("output")
	if path == "-" {
		fmt.Print(doc)
		return nil
	}
	if path == "" {
		path = export.FileName(entry, time.Now())
	}

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	utils.PrintSuccess(fmt.Sprintf("Exported review to %s", path))
	return nil
}
