package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sepStyle    = lipgloss.NewStyle().Faint(true)
)

// table renders rows of plain strings as aligned console columns
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

// AddRow adds a row; missing cells render empty
func (t *table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render returns the table, or only the title when there are no rows
func (t *table) Render() string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}
	if len(t.rows) == 0 {
		return sb.String()
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	// Width includes padding
	for i := range widths {
		widths[i] += 2
	}

	writeRow := func(cells []string, style lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers, headerStyle)
	for i, w := range widths {
		sb.WriteString(sepStyle.Render(strings.Repeat("-", w)))
		if i < len(widths)-1 {
			sb.WriteString(sepStyle.Render("+"))
		}
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(row, cellStyle)
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
