package analyzer

import (
	"context"
	"sync"

	"github.com/linuxmatters/deadair/internal/audio"
)

// fakeMeter is a scripted Meter. Each field, when set, answers the
// corresponding call; nil funcs fall back to benign defaults so tests only
// script what they assert on.
type fakeMeter struct {
	mu sync.Mutex

	duration    float64
	durationErr error

	// volumeFn answers MeasureVolume per chunk offset.
	volumeFn func(offsetSec, durationSec float64) (*audio.VolumeStats, error)
	// volumeCalls records every (offset, duration) pair, in call order.
	volumeCalls [][2]float64
	// active/maxActive track in-flight MeasureVolume calls to observe
	// batch concurrency.
	active    int
	maxActive int

	levels    *audio.LevelStats
	levelsErr error

	// eventsFn answers DetectSilenceEvents per threshold.
	eventsFn func(thresholdDb float64) ([]audio.Event, error)
}

func (f *fakeMeter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return f.duration, f.durationErr
}

func (f *fakeMeter) MeasureVolume(ctx context.Context, path string, offsetSec, durationSec float64, bandFilter bool) (*audio.VolumeStats, error) {
	f.mu.Lock()
	f.volumeCalls = append(f.volumeCalls, [2]float64{offsetSec, durationSec})
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.volumeFn != nil {
		return f.volumeFn(offsetSec, durationSec)
	}
	return &audio.VolumeStats{MaxVolumeDb: -10, MeanVolumeDb: -25}, nil
}

func (f *fakeMeter) MeasurePercentiles(ctx context.Context, path string, sampleDurationSec float64, bandFilter bool) (*audio.LevelStats, error) {
	if f.levelsErr != nil {
		return nil, f.levelsErr
	}
	if f.levels != nil {
		return f.levels, nil
	}
	return &audio.LevelStats{PeakLevelDb: -5, RmsLevelDb: -25}, nil
}

func (f *fakeMeter) DetectSilenceEvents(ctx context.Context, path string, thresholdDb, minDurationSec float64, bandFilter bool) ([]audio.Event, error) {
	if f.eventsFn != nil {
		return f.eventsFn(thresholdDb)
	}
	return nil, nil
}

func start(t float64) audio.Event { return audio.Event{Kind: audio.EventSilenceStart, Time: t} }
func end(t float64) audio.Event { return audio.Event{Kind: audio.EventSilenceEnd, Time: t} }
