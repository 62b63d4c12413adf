package analyzer

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/deadair/internal/audio"
)

const (
	// maxChunkDuration caps the volume survey chunk length. Shorter
	// recordings use a single chunk covering the whole track.
	maxChunkDuration = 30.0

	// minChunkDuration drops trailing slivers too short to measure
	// meaningfully.
	minChunkDuration = 1.0

	// chunkBatchSize bounds how many ffmpeg decode processes run at once.
	// Batches execute sequentially; order within a batch does not matter
	// because each measurement lands in its own slot.
	chunkBatchSize = 3

	// Defaults when no chunk yields a measurement (all failed, or the
	// track duration is invalid).
	defaultMedianMax  = -25.0
	defaultMedianMean = -30.0
)

// SurveyChunks measures the volume of consecutive chunks across the whole
// track and reduces them to median statistics. Individual measurement
// failures contribute nothing; if nothing at all is measured the documented
// defaults are returned so the pipeline can continue.
func SurveyChunks(ctx context.Context, meter Meter, path string, totalDuration float64) ChunkAnalysis {
	if !(totalDuration > 0) || math.IsInf(totalDuration, 0) {
		slog.Debug("chunk survey skipped, invalid duration", "path", path, "duration", totalDuration)
		return defaultChunkAnalysis()
	}

	chunkDuration := math.Min(maxChunkDuration, totalDuration)

	type chunk struct {
		offset   float64
		duration float64
	}
	var chunks []chunk
	for offset := 0.0; offset < totalDuration; offset += chunkDuration {
		duration := math.Min(chunkDuration, totalDuration-offset)
		if duration < minChunkDuration {
			continue
		}
		chunks = append(chunks, chunk{offset: offset, duration: duration})
	}

	results := make([]*audio.VolumeStats, len(chunks))
	for batch := 0; batch < len(chunks); batch += chunkBatchSize {
		end := batch + chunkBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g, gctx := errgroup.WithContext(ctx)
		for i := batch; i < end; i++ {
			i := i
			g.Go(func() error {
				stats, err := meter.MeasureVolume(gctx, path, chunks[i].offset, chunks[i].duration, true)
				if err != nil {
					// Degrade by omission: a failed chunk simply
					// contributes no values to the medians.
					slog.Debug("chunk measurement failed", "path", path, "offset", chunks[i].offset, "err", err)
					return nil
				}
				results[i] = stats
				return nil
			})
		}
		g.Wait()
	}

	analysis := ChunkAnalysis{}
	for _, stats := range results {
		if stats == nil {
			continue
		}
		analysis.MaxVolumes = append(analysis.MaxVolumes, stats.MaxVolumeDb)
		analysis.MeanVolumes = append(analysis.MeanVolumes, stats.MeanVolumeDb)
	}

	if len(analysis.MaxVolumes) == 0 {
		slog.Debug("chunk survey produced no measurements, using defaults", "path", path)
		return defaultChunkAnalysis()
	}

	analysis.MedianMax = medianLower(analysis.MaxVolumes)
	analysis.MedianMean = medianLower(analysis.MeanVolumes)
	return analysis
}

func defaultChunkAnalysis() ChunkAnalysis {
	return ChunkAnalysis{MedianMax: defaultMedianMax, MedianMean: defaultMedianMean}
}

// medianLower sorts values ascending and returns index n/2. For even n this
// is one of the two middle elements, never their average:
// medianLower([-10,-20,-30,-40]) = -20, not -25.
func medianLower(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
