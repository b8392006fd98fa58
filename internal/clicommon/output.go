package clicommon

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
)

func tableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Options.SeparateRows = false
	return style
}

// NewTable returns a go-pretty table writer preconfigured to mirror stdout
// in the style every command in this family uses.
func NewTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(tableStyle())
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// LabelValueTable renders rows as a two-column label/value table.
func LabelValueTable(title string, rows [][2]string) {
	t := NewTable(title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 18},
		{Number: 2, Colors: colorValue, WidthMin: 40},
	})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
}

// PrintSuccess prints a green status line.
func PrintSuccess(msg string) {
	fmt.Println(colorSuccess.Sprint(msg))
}

// PrintError prints a red status line.
func PrintError(msg string) {
	fmt.Println(colorError.Sprint(msg))
}
