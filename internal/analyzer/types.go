// Package analyzer locates silence in the audio track of a finite recording
// under unknown background-noise conditions. It surveys the track's volume in
// chunks, classifies the noise environment, derives an adaptive silence
// threshold, runs a two-pass silence detection, and converts the detected
// silences into padded "keep" segments for a downstream cutter.
//
// The package holds no state across calls: every analysis is a pure function
// of the recording and the collaborating [Meter].
package analyzer

import (
	"context"

	"github.com/linuxmatters/deadair/internal/audio"
)

// Meter is the measurement capability the engine requires. The production
// implementation is [audio.Meter]; tests use a scripted fake.
type Meter interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	MeasureVolume(ctx context.Context, path string, offsetSec, durationSec float64, bandFilter bool) (*audio.VolumeStats, error)
	MeasurePercentiles(ctx context.Context, path string, sampleDurationSec float64, bandFilter bool) (*audio.LevelStats, error)
	DetectSilenceEvents(ctx context.Context, path string, thresholdDb, minDurationSec float64, bandFilter bool) ([]audio.Event, error)
}

// SilenceInterval is a detected stretch of silence. End is always greater
// than Start; both lie within [0, totalDuration].
type SilenceInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (s SilenceInterval) Duration() float64 {
	return s.End - s.Start
}

// Segment is a time range to retain in the final cut.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// ChunkAnalysis summarises the full-track volume survey. The medians use the
// lower-middle element (see medianLower), which keeps them robust against a
// few loud or dead chunks.
type ChunkAnalysis struct {
	MaxVolumes  []float64
	MeanVolumes []float64
	MedianMax   float64
	MedianMean  float64
}

// PercentileStats is the single-pass peak/RMS sample of the track's opening.
// DynamicRangeDb is the peak-to-RMS spread, a proxy for how noisy the
// recording environment is.
type PercentileStats struct {
	PeakLevelDb    float64
	RmsLevelDb     float64
	DynamicRangeDb float64
}

// AdaptiveResult is the engine's sole output: the chosen silences, the
// threshold that produced them, and a human-readable account of how the
// threshold was derived. AnalysisInfo is advisory only.
type AdaptiveResult struct {
	Silences     []SilenceInterval `json:"silences"`
	ThresholdDb  float64           `json:"threshold_db"`
	AnalysisInfo string            `json:"analysis_info"`
}
