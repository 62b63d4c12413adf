// Package audio measures recordings via the ffmpeg and ffprobe command-line
// tools: duration probing, per-chunk volume, overall peak/RMS levels, and
// silence boundary events.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// speechBandFilter isolates the 200Hz-3500Hz human speech band so that rumble
// and hiss outside it do not skew level measurements.
const speechBandFilter = "highpass=f=200,lowpass=f=3500"

// ErrUnparseable indicates ffmpeg ran but its output did not contain the
// expected measurement. Callers treat this as a missing data point.
var ErrUnparseable = errors.New("audio: measurement not found in ffmpeg output")

// VolumeStats holds one volumedetect measurement.
// MeanVolumeDb is estimated as MaxVolumeDb-15 when ffmpeg does not report it.
type VolumeStats struct {
	MaxVolumeDb  float64
	MeanVolumeDb float64
}

// LevelStats holds an astats overall peak/RMS measurement.
type LevelStats struct {
	PeakLevelDb float64
	RmsLevelDb  float64
}

// EventKind distinguishes silence boundary events.
type EventKind int

const (
	EventSilenceStart EventKind = iota
	EventSilenceEnd
)

// Event is a single silencedetect boundary with its timestamp in seconds.
type Event struct {
	Kind EventKind
	Time float64
}

// Runner executes an external command and returns its combined output.
// It exists so parsers and argument construction can be tested without
// ffmpeg installed.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Meter measures audio via ffmpeg/ffprobe subprocesses.
type Meter struct {
	FFmpegPath  string
	FFprobePath string

	runner Runner
}

// NewMeter returns a Meter using the ffmpeg/ffprobe binaries on PATH.
func NewMeter() *Meter {
	return &Meter{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		runner:      execRunner{},
	}
}

// NewMeterWithRunner returns a Meter that executes commands through runner.
func NewMeterWithRunner(runner Runner) *Meter {
	m := NewMeter()
	m.runner = runner
	return m
}

// ProbeDuration returns the container duration of path in seconds.
func (m *Meter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := m.runner.CombinedOutput(ctx, m.FFprobePath, args...)
	if err != nil {
		return 0, fmt.Errorf("probe duration of %s: %w", path, err)
	}
	duration, err := parseProbeDuration(string(out))
	if err != nil {
		return 0, fmt.Errorf("probe duration of %s: %w", path, err)
	}
	return duration, nil
}

// MeasureVolume runs volumedetect over a single chunk of the recording.
// A nil error guarantees a usable VolumeStats.
func (m *Meter) MeasureVolume(ctx context.Context, path string, offsetSec, durationSec float64, bandFilter bool) (*VolumeStats, error) {
	args := []string{
		"-hide_banner", "-nostats",
		"-ss", formatSeconds(offsetSec),
		"-t", formatSeconds(durationSec),
		"-i", path,
		"-af", withBandFilter("volumedetect", bandFilter),
		"-f", "null", "-",
	}
	out, err := m.runner.CombinedOutput(ctx, m.FFmpegPath, args...)
	// ffmpeg can exit non-zero and still have printed the measurement,
	// so parse whatever output we got before giving up.
	stats, perr := parseVolumeDetect(string(out))
	if perr != nil {
		if err != nil {
			return nil, fmt.Errorf("measure volume of %s @%ss: %w", path, formatSeconds(offsetSec), err)
		}
		return nil, fmt.Errorf("measure volume of %s @%ss: %w", path, formatSeconds(offsetSec), perr)
	}
	return stats, nil
}

// MeasurePercentiles runs astats over the first sampleDurationSec seconds and
// returns overall peak and RMS levels.
func (m *Meter) MeasurePercentiles(ctx context.Context, path string, sampleDurationSec float64, bandFilter bool) (*LevelStats, error) {
	args := []string{
		"-hide_banner", "-nostats",
		"-t", formatSeconds(sampleDurationSec),
		"-i", path,
		"-af", withBandFilter("astats=measure_perchannel=none:measure_overall=Peak_level+RMS_level", bandFilter),
		"-f", "null", "-",
	}
	out, err := m.runner.CombinedOutput(ctx, m.FFmpegPath, args...)
	stats, perr := parseAstatsLevels(string(out))
	if perr != nil {
		if err != nil {
			return nil, fmt.Errorf("measure percentiles of %s: %w", path, err)
		}
		return nil, fmt.Errorf("measure percentiles of %s: %w", path, perr)
	}
	return stats, nil
}

// DetectSilenceEvents runs silencedetect at the given threshold and minimum
// duration and returns boundary events in stream order.
func (m *Meter) DetectSilenceEvents(ctx context.Context, path string, thresholdDb, minDurationSec float64, bandFilter bool) ([]Event, error) {
	filter := fmt.Sprintf("silencedetect=noise=%.2fdB:d=%s", thresholdDb, formatSeconds(minDurationSec))
	args := []string{
		"-hide_banner", "-nostats",
		"-i", path,
		"-af", withBandFilter(filter, bandFilter),
		"-f", "null", "-",
	}
	out, err := m.runner.CombinedOutput(ctx, m.FFmpegPath, args...)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("detect silence in %s: %w", path, err)
	}
	return parseSilenceEvents(string(out)), nil
}

// withBandFilter prepends the speech-band pre-filter when enabled.
func withBandFilter(filter string, bandFilter bool) string {
	if bandFilter {
		return speechBandFilter + "," + filter
	}
	return filter
}

// formatSeconds renders a seconds value for an ffmpeg argument.
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
