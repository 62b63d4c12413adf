package ui

import (
	"github.com/linuxmatters/deadair/internal/analyzer"
)

// StageMsg reports pipeline progress for the active file
type StageMsg struct {
	FileIndex int
	Stage     analyzer.Stage
	Done      bool // final stage finished
}

// FileStartMsg indicates a new file has started analysis
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished analysis
type FileCompleteMsg struct {
	FileIndex   int
	ThresholdDb float64
	SilencePct  float64
	Adjusted    bool
	Duration    float64
	Segments    []analyzer.Segment
	ReportPath  string
	Error       error
}

// AllCompleteMsg indicates all files have been analyzed
type AllCompleteMsg struct{}
