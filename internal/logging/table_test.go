package logging

import (
	"math"
	"strings"
	"testing"
)

func TestTableString(t *testing.T) {
	table := &Table{Headers: []string{"#", "Start", "End"}}
	table.AddRow("1", "2.000s", "3.000s")
	table.AddRow("2", "10.500s", "12.250s")

	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + separator + 2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "#") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("separator line = %q", lines[1])
	}
	// Value columns are right-aligned to the widest cell.
	if !strings.Contains(lines[2], " 2.000s") || !strings.Contains(lines[3], "10.500s") {
		t.Errorf("rows misaligned:\n%s", out)
	}
}

func TestTableShortRowFilled(t *testing.T) {
	table := &Table{Headers: []string{"#", "Start", "End"}}
	table.AddRow("1", "2.000s")

	if !strings.Contains(table.String(), MissingValue) {
		t.Errorf("short row did not render the missing placeholder:\n%s", table.String())
	}
}

func TestTableEmpty(t *testing.T) {
	table := &Table{Headers: []string{"#", "Start"}}
	if got := table.String(); got != "" {
		t.Errorf("empty table rendered %q, want empty string", got)
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dB value", formatDB(-31.256), "-31.26 dB"},
		{"dB NaN", formatDB(math.NaN()), MissingValue},
		{"dB infinity", formatDB(math.Inf(-1)), MissingValue},
		{"seconds", formatSeconds(12.3456), "12.346s"},
		{"seconds NaN", formatSeconds(math.NaN()), MissingValue},
		{"percent", formatPct(42.34), "42.3%"},
		{"percent infinity", formatPct(math.Inf(1)), MissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
