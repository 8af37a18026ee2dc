// Package commandline renders vectors, Jacobian matrices and Values
// summaries for terminal output, used by the demo binaries.
//
// On terminals with color support matrices are drawn as bordered tables;
// otherwise output falls back to gonum's plain matrix formatting.
package commandline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exprgraph/exprs"
	"github.com/gomlx/exprgraph/types/vector"
	"github.com/muesli/termenv"
	"gonum.org/v1/gonum/mat"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("99"))
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
)

// styled reports whether the terminal supports styling; without it all
// rendering degrades to plain text.
func styled() bool {
	return termenv.ColorProfile() != termenv.Ascii
}

// Section formats a demo section title.
func Section(title string) string {
	if !styled() {
		return fmt.Sprintf("== %s ==", title)
	}
	return titleStyle.Render("== " + title + " ==")
}

// Vector formats a named vector on one line, e.g. "z: (1, 16, 81)".
func Vector(name string, v vector.Vector) string {
	return fmt.Sprintf("%s: %s", name, v)
}

// Matrix formats a named matrix, as a bordered table on styled terminals
// and via gonum's formatter otherwise.
func Matrix(name string, m mat.Matrix) string {
	if !styled() {
		return fmt.Sprintf("%s:\n%v", name, mat.Formatted(m, mat.Prefix(""), mat.Squeeze()))
	}
	rows, cols := m.Dims()
	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row%2 == 0 {
				return oddRowStyle
			}
			return evenRowStyle
		})
	for i := 0; i < rows; i++ {
		row := make([]string, cols)
		for j := 0; j < cols; j++ {
			row[j] = fmt.Sprintf("%g", m.At(i, j))
		}
		t.Row(row...)
	}
	return fmt.Sprintf("%s:\n%s", name, t.Render())
}

// ValuesSummary formats one line describing a Values container: number of
// entries, their keys and the memory they hold.
func ValuesSummary(values *exprs.Values) string {
	keyNames := make([]string, 0, values.Len())
	for _, key := range values.Keys() {
		keyNames = append(keyNames, key.String())
	}
	return fmt.Sprintf("%d values (%s), %s", values.Len(),
		strings.Join(keyNames, " "), humanize.Bytes(values.Memory()))
}
