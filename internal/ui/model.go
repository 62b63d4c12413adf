// Package ui provides the Bubbletea terminal user interface for deadair
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/deadair/internal/analyzer"
)

// FileStatus represents the analysis state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusAnalyzing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single recording
type FileProgress struct {
	InputPath string
	Status    FileStatus

	// Pipeline stage tracking
	Stage     analyzer.Stage
	StageDone bool
	StartTime time.Time

	// Completion results
	ThresholdDb float64
	SilencePct  float64
	Adjusted    bool
	Duration    float64
	Segments    []analyzer.Segment
	ReportPath  string

	// Error tracking
	Error error
}

// KeptSeconds sums the retained segment durations.
func (fp FileProgress) KeptSeconds() float64 {
	var kept float64
	for _, s := range fp.Segments {
		kept += s.Duration()
	}
	return kept
}

// Model is the Bubbletea model for the analysis UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from the analyzer
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file analyzing yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StageMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			m.Files[msg.FileIndex].Stage = msg.Stage
			m.Files[msg.FileIndex].StageDone = msg.Done
		}
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusAnalyzing
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			fp := &m.Files[msg.FileIndex]
			fp.ThresholdDb = msg.ThresholdDb
			fp.SilencePct = msg.SilencePct
			fp.Adjusted = msg.Adjusted
			fp.Duration = msg.Duration
			fp.Segments = msg.Segments
			fp.ReportPath = msg.ReportPath
			fp.Error = msg.Error

			if msg.Error != nil {
				fp.Status = StatusError
				m.FailedFiles++
			} else {
				fp.Status = StatusComplete
				m.CompletedFiles++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderAnalysisView(m)
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
