package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/deadair/internal/analyzer"
)

// ReportData collects everything the analysis report shows for one file.
type ReportData struct {
	InputPath    string
	StartTime    time.Time
	EndTime      time.Time
	DurationSecs float64
	MinSilence   float64

	Result   *analyzer.AdaptiveResult
	Segments []analyzer.Segment
	Options  analyzer.ExtractOptions
}

// ReportPath returns where the report for inputPath is written:
// <dir>/<base>-analysis.log.
func ReportPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, base+"-analysis.log")
}

// GenerateReport writes the analysis report file next to the input.
func GenerateReport(data ReportData) error {
	path := ReportPath(data.InputPath)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(renderReport(data)); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}

// renderReport builds the full report text. Split from GenerateReport so
// tests can assert on content without touching the filesystem.
func renderReport(data ReportData) string {
	var sb strings.Builder

	sb.WriteString("DEADAIR SILENCE ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Input:      %s\n", data.InputPath)
	fmt.Fprintf(&sb, "Duration:   %s\n", formatSeconds(data.DurationSecs))
	fmt.Fprintf(&sb, "Analyzed:   %s (took %s)\n",
		data.EndTime.Format(time.RFC3339), data.EndTime.Sub(data.StartTime).Round(time.Millisecond))
	fmt.Fprintf(&sb, "Min silence: %s\n", formatSeconds(data.MinSilence))
	fmt.Fprintf(&sb, "Extraction: padding=%s min-segment=%s merge-gap=%s timeback=-%s/+%s\n\n",
		formatSeconds(data.Options.Padding), formatSeconds(data.Options.MinSegmentDuration),
		formatSeconds(data.Options.MergeGap), formatSeconds(data.Options.TimebackStart),
		formatSeconds(data.Options.TimebackEnd))

	if data.Result != nil {
		sb.WriteString("Threshold derivation\n")
		sb.WriteString(strings.Repeat("-", 60))
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s\n", data.Result.AnalysisInfo)
		fmt.Fprintf(&sb, "Final threshold: %s\n\n", formatDB(data.Result.ThresholdDb))

		sb.WriteString(renderSilences(data.Result.Silences, data.DurationSecs))
		sb.WriteString("\n")
	}

	sb.WriteString(renderSegments(data.Segments, data.DurationSecs))

	return sb.String()
}

func renderSilences(silences []analyzer.SilenceInterval, totalDuration float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Detected silences: %d\n", len(silences))

	if len(silences) == 0 {
		return sb.String()
	}

	table := &Table{Headers: []string{"#", "Start", "End", "Length"}}
	var total float64
	for i, s := range silences {
		total += s.Duration()
		table.AddRow(fmt.Sprintf("%d", i+1), formatSeconds(s.Start), formatSeconds(s.End), formatSeconds(s.Duration()))
	}
	sb.WriteString(table.String())

	if totalDuration > 0 {
		fmt.Fprintf(&sb, "Total silence: %s (%s of track)\n",
			formatSeconds(total), formatPct(total/totalDuration*100))
	}
	return sb.String()
}

func renderSegments(segments []analyzer.Segment, totalDuration float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Keep segments: %d\n", len(segments))

	if len(segments) == 0 {
		return sb.String()
	}

	table := &Table{Headers: []string{"#", "Start", "End", "Length"}}
	var kept float64
	for i, s := range segments {
		kept += s.Duration()
		table.AddRow(fmt.Sprintf("%d", i+1), formatSeconds(s.Start), formatSeconds(s.End), formatSeconds(s.Duration()))
	}
	sb.WriteString(table.String())

	if totalDuration > 0 {
		fmt.Fprintf(&sb, "Kept: %s of %s (%s)\n",
			formatSeconds(kept), formatSeconds(totalDuration), formatPct(kept/totalDuration*100))
	}
	return sb.String()
}
