package audio

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// meanVolumeEstimateOffset approximates mean volume from max volume when
// volumedetect does not report a mean (e.g. digital silence chunks).
const meanVolumeEstimateOffset = 15.0

// Measurement patterns in ffmpeg stderr output. Tolerant of the log prefix
// ("[Parsed_volumedetect_0 @ 0x...]") and of spacing variations.
var (
	maxVolumeRe    = regexp.MustCompile(`max_volume:\s*(-?[\d.]+)\s*dB`)
	meanVolumeRe   = regexp.MustCompile(`mean_volume:\s*(-?[\d.]+)\s*dB`)
	peakLevelRe    = regexp.MustCompile(`Peak level dB:\s*(-?[\d.]+|-?inf)`)
	rmsLevelRe     = regexp.MustCompile(`RMS level dB:\s*(-?[\d.]+|-?inf)`)
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// parseProbeDuration parses ffprobe's bare duration output.
func parseProbeDuration(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		duration, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		if math.IsNaN(duration) || math.IsInf(duration, 0) {
			return 0, fmt.Errorf("non-finite duration %q: %w", line, ErrUnparseable)
		}
		return duration, nil
	}
	return 0, ErrUnparseable
}

// parseVolumeDetect extracts max_volume/mean_volume from volumedetect output.
// A missing mean is estimated as max-15dB; a missing max fails the parse.
func parseVolumeDetect(output string) (*VolumeStats, error) {
	maxMatch := maxVolumeRe.FindStringSubmatch(output)
	if maxMatch == nil {
		return nil, ErrUnparseable
	}
	maxVol, err := strconv.ParseFloat(maxMatch[1], 64)
	if err != nil {
		return nil, ErrUnparseable
	}

	meanVol := maxVol - meanVolumeEstimateOffset
	if meanMatch := meanVolumeRe.FindStringSubmatch(output); meanMatch != nil {
		if parsed, err := strconv.ParseFloat(meanMatch[1], 64); err == nil {
			meanVol = parsed
		}
	}

	return &VolumeStats{MaxVolumeDb: maxVol, MeanVolumeDb: meanVol}, nil
}

// parseAstatsLevels extracts the overall peak and RMS levels from astats
// output. Non-finite levels (astats prints "-inf" for digital silence) fail
// the parse so callers fall back to their no-measurement path.
func parseAstatsLevels(output string) (*LevelStats, error) {
	peak, err := parseLevelMatch(peakLevelRe.FindStringSubmatch(output))
	if err != nil {
		return nil, err
	}
	rms, err := parseLevelMatch(rmsLevelRe.FindStringSubmatch(output))
	if err != nil {
		return nil, err
	}
	return &LevelStats{PeakLevelDb: peak, RmsLevelDb: rms}, nil
}

func parseLevelMatch(match []string) (float64, error) {
	if match == nil {
		return 0, ErrUnparseable
	}
	level, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, ErrUnparseable
	}
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return 0, ErrUnparseable
	}
	return level, nil
}

// parseSilenceEvents extracts silence boundary events from silencedetect
// output, preserving stream order. ffmpeg emits lines like:
//
//	[silencedetect @ 0x...] silence_start: 42.123
//	[silencedetect @ 0x...] silence_end: 43.456 | silence_duration: 1.333
func parseSilenceEvents(output string) []Event {
	var events []Event
	for _, line := range strings.Split(output, "\n") {
		if match := silenceStartRe.FindStringSubmatch(line); match != nil {
			if ts, err := strconv.ParseFloat(match[1], 64); err == nil {
				events = append(events, Event{Kind: EventSilenceStart, Time: ts})
			}
			continue
		}
		if match := silenceEndRe.FindStringSubmatch(line); match != nil {
			if ts, err := strconv.ParseFloat(match[1], 64); err == nil {
				events = append(events, Event{Kind: EventSilenceEnd, Time: ts})
			}
		}
	}
	return events
}
