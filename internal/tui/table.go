package tui

import (
	"strings"
	"time"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
)

// formatCell renders one table cell, padded or truncated to the column
// width. Timestamps are shortened to a readable local form.
func formatCell(row api.Record, col catalog.Column) string {
	value := row.String(col.Key)
	if col.Key == "createdAt" || col.Key == "modifiedAt" || col.Key == "updatedAt" {
		value = formatTimestamp(value)
	}
	return pad(value, col.Width)
}

func formatTimestamp(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Local().Format("2006-01-02 15:04")
}

// pad fits s into width runes, truncating with an ellipsis when too long.
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// renderStatus colors the status cell.
func renderStatus(value string, width int) string {
	padded := pad(value, width)
	switch strings.TrimSpace(value) {
	case "Active":
		return statusActiveStyle.Render(padded)
	case "Inactive":
		return statusInactiveStyle.Render(padded)
	default:
		return padded
	}
}
