// Package utils provides terminal output helpers shared by the CLI commands
package utils

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headingColor = color.New(color.FgHiCyan, color.Bold)
	subtleColor  = color.New(color.FgHiBlack)
)

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(successColor.Sprint("✓ ") + message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println(infoColor.Sprint("ℹ ") + message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(warningColor.Sprint("⚠ ") + message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(errorColor.Sprint("✗ ") + message)
}

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Println(headingColor.Sprint(title))
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", color.New(color.Bold).Sprint(key), value)
}

// PrintSubtle prints de-emphasized text
func PrintSubtle(message string) {
	fmt.Println(subtleColor.Sprint(message))
}

// TerminalWidth returns the current terminal width, falling back to 100
// columns when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 100
	}
	if width > 120 {
		return 120
	}
	return width
}

// RenderMarkdown renders a markdown document for terminal display. When
// rendering fails the raw markdown is returned wrapped to the terminal width
// so output is never lost.
func RenderMarkdown(doc string) string {
	width := TerminalWidth()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wordwrap.String(doc, width)
	}

	out, err := renderer.Render(doc)
	if err != nil {
		return wordwrap.String(doc, width)
	}

	return out
}

// PrintTable prints a table with headers and rows using a consistent style
func PrintTable(title string, headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	if title != "" {
		t.SetTitle(title)
	}

	style := table.StyleLight
	style.Color.Header = text.Colors{text.FgHiBlue, text.Bold}
	style.Color.Border = text.Colors{text.FgBlue}
	style.Title.Colors = text.Colors{text.FgHiCyan, text.Bold}
	style.Title.Align = text.AlignCenter
	t.SetStyle(style)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := table.Row{}
		for _, cell := range row {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	t.Render()
}
