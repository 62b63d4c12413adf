package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/linuxmatters/deadair/internal/audio"
)

func TestMedianLower(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{
			name:   "single value",
			values: []float64{-18.5},
			want:   -18.5,
		},
		{
			name:   "odd count takes middle",
			values: []float64{-30, -10, -20},
			want:   -20,
		},
		{
			// Even counts take index n/2 of the ascending sort, never the
			// average of the two middle elements.
			name:   "even count takes index n/2, not average",
			values: []float64{-10, -20, -30, -40},
			want:   -20,
		},
		{
			name:   "two values",
			values: []float64{-40, -10},
			want:   -10,
		},
		{
			name:   "unsorted input",
			values: []float64{-5, -45, -25, -15, -35, -55},
			want:   -25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := medianLower(tt.values)
			if got != tt.want {
				t.Errorf("medianLower(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestSurveyChunksInvalidDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meter := &fakeMeter{}
			got := SurveyChunks(context.Background(), meter, "track.mkv", tt.duration)

			if got.MedianMax != defaultMedianMax || got.MedianMean != defaultMedianMean {
				t.Errorf("medians = (%v, %v), want defaults (%v, %v)",
					got.MedianMax, got.MedianMean, defaultMedianMax, defaultMedianMean)
			}
			if len(meter.volumeCalls) != 0 {
				t.Errorf("measured %d chunks, want 0 for invalid duration", len(meter.volumeCalls))
			}
		})
	}
}

func TestSurveyChunksChunking(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		wantCalls [][2]float64
	}{
		{
			// Short track: one chunk covering the whole thing.
			name:      "shorter than max chunk",
			duration:  12,
			wantCalls: [][2]float64{{0, 12}},
		},
		{
			name:      "exact multiple of chunk size",
			duration:  90,
			wantCalls: [][2]float64{{0, 30}, {30, 30}, {60, 30}},
		},
		{
			name:      "trailing partial chunk kept",
			duration:  75,
			wantCalls: [][2]float64{{0, 30}, {30, 30}, {60, 15}},
		},
		{
			// A 0.5s sliver after the last full chunk is below the 1s
			// minimum and must be skipped.
			name:      "sub-second sliver skipped",
			duration:  30.5,
			wantCalls: [][2]float64{{0, 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meter := &fakeMeter{}
			SurveyChunks(context.Background(), meter, "track.mkv", tt.duration)

			if len(meter.volumeCalls) != len(tt.wantCalls) {
				t.Fatalf("measured %d chunks %v, want %d %v",
					len(meter.volumeCalls), meter.volumeCalls, len(tt.wantCalls), tt.wantCalls)
			}
			// Calls within a batch may land in any order; match by offset.
			seen := map[float64][2]float64{}
			for _, c := range meter.volumeCalls {
				seen[c[0]] = c
			}
			for _, want := range tt.wantCalls {
				got, ok := seen[want[0]]
				if !ok {
					t.Errorf("no measurement at offset %v", want[0])
					continue
				}
				if math.Abs(got[1]-want[1]) > 1e-9 {
					t.Errorf("chunk at %v measured %vs, want %vs", want[0], got[1], want[1])
				}
			}
		})
	}
}

func TestSurveyChunksMedians(t *testing.T) {
	// Four chunks with distinct levels; even count exercises the
	// lower-middle tie-break through the full survey path.
	byOffset := map[float64]*audio.VolumeStats{
		0:  {MaxVolumeDb: -10, MeanVolumeDb: -28},
		30: {MaxVolumeDb: -20, MeanVolumeDb: -26},
		60: {MaxVolumeDb: -30, MeanVolumeDb: -24},
		90: {MaxVolumeDb: -40, MeanVolumeDb: -22},
	}
	meter := &fakeMeter{
		volumeFn: func(offsetSec, durationSec float64) (*audio.VolumeStats, error) {
			return byOffset[offsetSec], nil
		},
	}

	got := SurveyChunks(context.Background(), meter, "track.mkv", 120)

	if got.MedianMax != -20 {
		t.Errorf("MedianMax = %v, want -20", got.MedianMax)
	}
	if got.MedianMean != -24 {
		t.Errorf("MedianMean = %v, want -24", got.MedianMean)
	}
	if len(got.MaxVolumes) != 4 || len(got.MeanVolumes) != 4 {
		t.Errorf("collected %d max / %d mean values, want 4 each",
			len(got.MaxVolumes), len(got.MeanVolumes))
	}
}

func TestSurveyChunksFailedChunksOmitted(t *testing.T) {
	// The middle chunk fails; its values must simply not participate.
	meter := &fakeMeter{
		volumeFn: func(offsetSec, durationSec float64) (*audio.VolumeStats, error) {
			if offsetSec == 30 {
				return nil, errors.New("decode error")
			}
			return &audio.VolumeStats{MaxVolumeDb: -offsetSec - 10, MeanVolumeDb: -offsetSec - 20}, nil
		},
	}

	got := SurveyChunks(context.Background(), meter, "track.mkv", 90)

	if len(got.MaxVolumes) != 2 {
		t.Fatalf("collected %d measurements, want 2 (failed chunk omitted)", len(got.MaxVolumes))
	}
	// Survivors are offsets 0 and 60: maxes -10 and -70, lower-middle -10.
	if got.MedianMax != -10 {
		t.Errorf("MedianMax = %v, want -10", got.MedianMax)
	}
}

func TestSurveyChunksAllFailedUsesDefaults(t *testing.T) {
	meter := &fakeMeter{
		volumeFn: func(offsetSec, durationSec float64) (*audio.VolumeStats, error) {
			return nil, errors.New("decode error")
		},
	}

	got := SurveyChunks(context.Background(), meter, "track.mkv", 90)

	if got.MedianMax != defaultMedianMax || got.MedianMean != defaultMedianMean {
		t.Errorf("medians = (%v, %v), want defaults (%v, %v)",
			got.MedianMax, got.MedianMean, defaultMedianMax, defaultMedianMean)
	}
	if len(got.MaxVolumes) != 0 {
		t.Errorf("collected %d measurements, want 0", len(got.MaxVolumes))
	}
}

func TestSurveyChunksConcurrencyBound(t *testing.T) {
	// 10 chunks over a 300s track; no batch may run more than 3 measurements
	// at once.
	gate := make(chan struct{}, 1)
	release := make(chan struct{})
	meter := &fakeMeter{}
	meter.volumeFn = func(offsetSec, durationSec float64) (*audio.VolumeStats, error) {
		select {
		case gate <- struct{}{}:
			<-release
		default:
		}
		return &audio.VolumeStats{MaxVolumeDb: -10, MeanVolumeDb: -25}, nil
	}

	done := make(chan ChunkAnalysis)
	go func() {
		done <- SurveyChunks(context.Background(), meter, "track.mkv", 300)
	}()

	// Let the first measurement block, then release everything.
	<-gate
	close(release)
	<-done

	meter.mu.Lock()
	defer meter.mu.Unlock()
	if meter.maxActive > chunkBatchSize {
		t.Errorf("observed %d concurrent measurements, want at most %d", meter.maxActive, chunkBatchSize)
	}
	if len(meter.volumeCalls) != 10 {
		t.Errorf("measured %d chunks, want 10", len(meter.volumeCalls))
	}
}
