package analyzer

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage int

const (
	StageProbe Stage = iota
	StageChunkSurvey
	StagePercentiles
	StageDetection
)

// String returns the stage name for progress display.
func (s Stage) String() string {
	switch s {
	case StageProbe:
		return "Probing duration"
	case StageChunkSurvey:
		return "Surveying volume"
	case StagePercentiles:
		return "Sampling levels"
	case StageDetection:
		return "Detecting silence"
	default:
		return "Analyzing"
	}
}

// Analyzer runs the adaptive silence pipeline against a Meter. It is
// stateless; one Analyzer may serve any number of concurrent calls.
type Analyzer struct {
	meter Meter

	// Progress, when set, is called as each pipeline stage begins and
	// once more with done=true after detection finishes. Advisory only.
	Progress func(stage Stage, done bool)
}

// New returns an Analyzer measuring through meter.
func New(meter Meter) *Analyzer {
	return &Analyzer{meter: meter}
}

// AnalyzeFile runs the full adaptive pipeline over one recording:
// duration probe, chunked volume survey, percentile sample, threshold
// derivation, and dual-pass silence detection. minDurationSec is the
// shortest silence worth reporting.
//
// Failed chunk or percentile measurements degrade gracefully; a failed
// duration probe or event stream is fatal for the call.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, minDurationSec float64) (*AdaptiveResult, error) {
	a.progress(StageProbe, false)
	totalDuration, err := a.meter.ProbeDuration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}

	a.progress(StageChunkSurvey, false)
	chunks := SurveyChunks(ctx, a.meter, path, totalDuration)

	a.progress(StagePercentiles, false)
	percentiles := SamplePercentiles(ctx, a.meter, path, totalDuration)

	threshold := ComputeThreshold(chunks, percentiles)
	slog.Debug("adaptive threshold derived", "path", path, "info", threshold.Describe())

	a.progress(StageDetection, false)
	passes, err := DetectDualPass(ctx, a.meter, path, threshold.ThresholdDb, minDurationSec, totalDuration)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	a.progress(StageDetection, true)

	finalPct := silencePct(passes.Silences, totalDuration)
	info := fmt.Sprintf("%s adjusted=%t primary=%.1f%% sensitive=%.1f%% silence=%.1f%%",
		threshold.Describe(), passes.WasAdjusted, passes.PrimaryPct, passes.SensitivePct, finalPct)

	slog.Info("silence analysis complete",
		"path", path,
		"tier", threshold.Tier.String(),
		"threshold_db", passes.ThresholdDb,
		"adjusted", passes.WasAdjusted,
		"silence_pct", finalPct,
		"silences", len(passes.Silences),
	)

	return &AdaptiveResult{
		Silences:     passes.Silences,
		ThresholdDb:  passes.ThresholdDb,
		AnalysisInfo: info,
	}, nil
}

// Duration re-exposes the meter's duration probe so callers can size
// segment extraction without a second probe implementation.
func (a *Analyzer) Duration(ctx context.Context, path string) (float64, error) {
	return a.meter.ProbeDuration(ctx, path)
}

func (a *Analyzer) progress(stage Stage, done bool) {
	if a.Progress != nil {
		a.Progress(stage, done)
	}
}
