// Package logging writes the per-file silence analysis report. This file
// holds the reusable aligned-column table infrastructure the report is
// built from.
package logging

import (
	"fmt"
	"math"
	"strings"
)

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// Table formats rows of pre-formatted strings into aligned columns. The
// first column is left-aligned (labels), remaining columns right-aligned
// (values).
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row. Short rows render missing cells as "-".
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// String renders the table with aligned columns.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range t.Headers {
			cell := MissingValue
			if i < len(cells) && cells[i] != "" {
				cell = cells[i]
			}
			if i == 0 {
				fmt.Fprintf(&sb, "%-*s", widths[i], cell)
			} else {
				fmt.Fprintf(&sb, "  %*s", widths[i], cell)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}

	return sb.String()
}

// formatDB formats a dB value, mapping NaN/Inf to the missing placeholder.
func formatDB(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.2f dB", value)
}

// formatSeconds formats a time offset with millisecond precision.
func formatSeconds(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.3fs", value)
}

// formatPct formats a percentage with one decimal place.
func formatPct(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.1f%%", value)
}
