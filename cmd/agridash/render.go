package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-agridash/components/dashboard"
)

const (
	colorPositive = lipgloss.Color("2")
	colorNegative = lipgloss.Color("1")
	colorMuted    = lipgloss.Color("8")
)

// renderTable draws a dashboard table. The change column is colored by sign when color is set.
func renderTable(view dashboard.TableView, color bool) string {
	if len(view.Columns) == 0 {
		return ""
	}
	headers := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		headers[i] = strcase.ToCase(col.Key, strcase.TitleCase, ' ')
	}
	rows := make([][]string, len(view.Rows))
	for r, row := range view.Rows {
		rows[r] = make([]string, len(row))
		for c, cell := range row {
			rows[r][c] = cell.Text
		}
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := cellStyle.Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if !color {
		return t.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).String()
	}
	return t.
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(view.Rows) || col >= len(view.Rows[row]) {
				return cellStyle
			}
			switch view.Rows[row][col].Class {
			case "positive":
				return cellStyle.Foreground(colorPositive)
			case "negative":
				return cellStyle.Foreground(colorNegative)
			}
			return cellStyle
		}).String()
}

func renderProbeStatus(status dashboard.ProbeStatus) string {
	line := fmt.Sprintf("%s: %s", status.State, status.Label)
	if status.Message != "" {
		line += " (" + status.Message + ")"
	}
	return line
}

func renderFixturesSummary(f *dashboard.Fixtures) string {
	var b strings.Builder
	name := f.Name()
	if name == "" {
		name = f.Source()
	}
	fmt.Fprintf(&b, "✓ %s is valid\n", name)
	for _, dt := range dashboard.DataTypes() {
		fmt.Fprintf(&b, "  %-10s %d records\n", dt, f.Dataset(dt).Len())
	}
	fmt.Fprintf(&b, "  %-10s %d (%d unread)\n", "alerts", len(f.Alerts()), dashboard.UnreadCount(f.Alerts()))
	fmt.Fprintf(&b, "  %-10s %d", "metrics", len(f.Metrics()))
	return b.String()
}
