package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linuxmatters/deadair/internal/audio"
)

const (
	// sensitiveThresholdDelta lowers the threshold for the verification
	// pass, catching quieter pauses the primary threshold misses.
	sensitiveThresholdDelta = 3.0

	// Selection rule bounds: the sensitive pass only wins while the
	// primary pass found little silence, and only when it finds
	// meaningfully more.
	maxPrimaryPctForAdjust = 40.0
	sensitiveGainRatio     = 1.15

	// Above this silence share the threshold has almost certainly eaten
	// into speech; worth a warning, but the selection stands.
	suspiciousSilencePct = 85.0
)

// DualPassResult carries the selected pass plus both percentages for
// diagnostics.
type DualPassResult struct {
	Silences     []SilenceInterval
	ThresholdDb  float64
	WasAdjusted  bool
	PrimaryPct   float64
	SensitivePct float64
}

// pairSilenceEvents pairs each silence start with the next end to form an
// interval. A trailing start with no matching end (silence running to the
// end of the file) is dropped, not closed at the track's end.
func pairSilenceEvents(events []audio.Event) []SilenceInterval {
	var silences []SilenceInterval
	var start float64
	open := false
	for _, ev := range events {
		switch ev.Kind {
		case audio.EventSilenceStart:
			start = ev.Time
			open = true
		case audio.EventSilenceEnd:
			if open && ev.Time > start {
				silences = append(silences, SilenceInterval{Start: start, End: ev.Time})
			}
			open = false
		}
	}
	return silences
}

// silencePct returns the summed silence duration as a percentage of the
// track.
func silencePct(silences []SilenceInterval, totalDuration float64) float64 {
	if !(totalDuration > 0) {
		return 0
	}
	var total float64
	for _, s := range silences {
		total += s.Duration()
	}
	return total / totalDuration * 100.0
}

// DetectDualPass runs silence detection at the adaptive threshold and again
// 3dB more sensitive, then selects between the two passes:
//
//  1. While the primary pass found under 40% silence, the sensitive pass
//     wins if it found at least 15% more.
//  2. An empty primary pass yields to a non-empty sensitive pass.
//  3. Otherwise the primary pass stands.
//
// A failing event stream is fatal for the call; there is no retry.
func DetectDualPass(ctx context.Context, meter Meter, path string, primaryThreshold, minDurationSec, totalDuration float64) (*DualPassResult, error) {
	primaryEvents, err := meter.DetectSilenceEvents(ctx, path, primaryThreshold, minDurationSec, true)
	if err != nil {
		return nil, fmt.Errorf("primary pass: %w", err)
	}
	primary := pairSilenceEvents(primaryEvents)
	primaryPct := silencePct(primary, totalDuration)

	sensitiveThreshold := primaryThreshold - sensitiveThresholdDelta
	sensitiveEvents, err := meter.DetectSilenceEvents(ctx, path, sensitiveThreshold, minDurationSec, true)
	if err != nil {
		return nil, fmt.Errorf("sensitive pass: %w", err)
	}
	sensitive := pairSilenceEvents(sensitiveEvents)
	sensitivePct := silencePct(sensitive, totalDuration)

	if primaryPct > suspiciousSilencePct {
		slog.Warn("primary pass flagged most of the track as silence, threshold may be cutting speech",
			"path", path, "threshold_db", primaryThreshold, "silence_pct", primaryPct)
	}

	result := &DualPassResult{
		Silences:     primary,
		ThresholdDb:  primaryThreshold,
		PrimaryPct:   primaryPct,
		SensitivePct: sensitivePct,
	}

	switch {
	case primaryPct < maxPrimaryPctForAdjust && sensitivePct > primaryPct*sensitiveGainRatio:
		result.Silences = sensitive
		result.ThresholdDb = sensitiveThreshold
		result.WasAdjusted = true
	case len(primary) == 0 && len(sensitive) > 0:
		result.Silences = sensitive
		result.ThresholdDb = sensitiveThreshold
		result.WasAdjusted = true
	}

	if result.WasAdjusted {
		slog.Debug("sensitive pass selected",
			"path", path, "primary_pct", primaryPct, "sensitive_pct", sensitivePct)
	}

	return result, nil
}
