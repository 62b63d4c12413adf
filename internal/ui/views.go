package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/deadair/internal/analyzer"
)

// renderAnalysisView renders the main analysis view
func renderAnalysisView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// File queue
	b.WriteString(renderFileQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#005F87")).
		Render("Deadair 🔇 - Silence Analysis for Recordings")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Analyzing %d file(s)", m.TotalFiles))

	return title + "\n" + subtitle
}

// renderFileQueue renders the list of files with their status
func renderFileQueue(m Model) string {
	var b strings.Builder

	for i, file := range m.Files {
		b.WriteString(renderFileEntry(file, i, m.CurrentIndex))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress, index int, currentIndex int) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		// ✓ completed file with summary
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		summary := fmt.Sprintf("Threshold: %.1f dB | Silence: %.1f%% | Segments: %d",
			file.ThresholdDb, file.SilencePct, len(file.Segments))
		return fmt.Sprintf(" %s %s\n   %s", icon, fileName, summary)

	case StatusAnalyzing:
		// ⚙ active file with stage progress
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, fileName, renderFileDetails(file))

	case StatusError:
		// ✗ failed file
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, file.Error)

	default:
		// ○ queued file
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

// renderFileDetails renders the pipeline stages for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#005F87")).
		Padding(0, 1).
		Width(60)

	stages := []analyzer.Stage{
		analyzer.StageProbe,
		analyzer.StageChunkSurvey,
		analyzer.StagePercentiles,
		analyzer.StageDetection,
	}

	var content strings.Builder
	for _, stage := range stages {
		marker := "○"
		switch {
		case stage < file.Stage || (stage == file.Stage && file.StageDone):
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		case stage == file.Stage:
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("▸")
		}
		content.WriteString(fmt.Sprintf("%s %s\n", marker, stage))
	}

	elapsed := time.Since(file.StartTime).Round(time.Second)
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %s", elapsed))

	return box.Render(content.String())
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	// Show current file being analyzed
	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		currentFile := m.CurrentIndex + 1 // 1-indexed for display
		content = fmt.Sprintf("Analyzing file %d of %d (%d complete)",
			currentFile, m.TotalFiles, m.CompletedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	// Completion header
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Analysis Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	// Summary for each file
	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file))
			b.WriteString("\n")
		case StatusError:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
			fmt.Fprintf(&b, " %s %s\n   Error: %v\n", icon, filepath.Base(file.InputPath), file.Error)
		}
	}

	// Overall summary
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if m.FailedFiles > 0 {
		fmt.Fprintf(&b, "%d of %d file(s) analyzed, %d failed\n",
			m.CompletedFiles, m.TotalFiles, m.FailedFiles)
	} else {
		fmt.Fprintf(&b, "All %d file(s) analyzed ✓\n", m.TotalFiles)
	}

	return b.String()
}

// renderCompletedFile renders a summary for a completed file
func renderCompletedFile(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	adjusted := ""
	if file.Adjusted {
		adjusted = " (sensitive pass)"
	}

	kept := file.KeptSeconds()
	keptPct := 0.0
	if file.Duration > 0 {
		keptPct = kept / file.Duration * 100
	}

	summary := fmt.Sprintf(" %s %s\n"+
		"   Threshold: %.1f dB%s | Silence: %.1f%%\n"+
		"   Keep: %d segment(s), %.1fs of %.1fs (%.1f%%)",
		icon, fileName,
		file.ThresholdDb, adjusted, file.SilencePct,
		len(file.Segments), kept, file.Duration, keptPct)

	if file.ReportPath != "" {
		summary += fmt.Sprintf("\n   Report: %s", file.ReportPath)
	}

	return summary
}
