package analyzer

import (
	"context"
	"log/slog"
	"math"
)

// maxPercentileSample caps how much of the track's opening is sampled for
// the peak/RMS survey.
const maxPercentileSample = 60.0

// SamplePercentiles measures peak and RMS level over the first
// min(60, totalDuration) seconds of the track. A failed or unparseable
// measurement returns nil; downstream threshold formulas then simply omit
// their peak/RMS-dependent candidates. There is no defaulting here.
func SamplePercentiles(ctx context.Context, meter Meter, path string, totalDuration float64) *PercentileStats {
	sampleDuration := maxPercentileSample
	if totalDuration > 0 && totalDuration < maxPercentileSample {
		sampleDuration = totalDuration
	}

	stats, err := meter.MeasurePercentiles(ctx, path, sampleDuration, true)
	if err != nil {
		slog.Debug("percentile sample failed", "path", path, "err", err)
		return nil
	}
	if math.IsNaN(stats.PeakLevelDb) || math.IsNaN(stats.RmsLevelDb) {
		return nil
	}

	return &PercentileStats{
		PeakLevelDb:    stats.PeakLevelDb,
		RmsLevelDb:     stats.RmsLevelDb,
		DynamicRangeDb: stats.PeakLevelDb - stats.RmsLevelDb,
	}
}
