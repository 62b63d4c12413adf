package analyzer

import "sort"

// Default extraction options. Paddings are in seconds.
const (
	defaultPadding            = 0.015
	defaultMinSegmentDuration = 0.1
	defaultMergeGap           = 0.075
	defaultTimebackStart      = 0.15
	defaultTimebackEnd        = 0.2
)

// ExtractOptions tunes how silences are turned into keep segments.
type ExtractOptions struct {
	// Padding trims each raw segment away from its bounding silences.
	Padding float64
	// MinSegmentDuration drops blips shorter than this after padding.
	MinSegmentDuration float64
	// MergeGap joins segments separated by less than this.
	MergeGap float64
	// TimebackStart/TimebackEnd expand every surviving segment
	// asymmetrically so speech onsets and tails are not clipped.
	TimebackStart float64
	TimebackEnd   float64
}

// DefaultExtractOptions returns the tuned defaults.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Padding:            defaultPadding,
		MinSegmentDuration: defaultMinSegmentDuration,
		MergeGap:           defaultMergeGap,
		TimebackStart:      defaultTimebackStart,
		TimebackEnd:        defaultTimebackEnd,
	}
}

// ExtractSegments converts detected silences into the ordered,
// non-overlapping list of segments to retain. The transform is a fixed
// four-step pipeline: raw gap extraction, minimum-length filtering, gap
// merging, and timeback expansion with a final overlap re-merge. It is a
// pure function: identical inputs always produce identical output.
func ExtractSegments(silences []SilenceInterval, totalDuration float64, opts ExtractOptions) []Segment {
	sorted := make([]SilenceInterval, len(silences))
	copy(sorted, silences)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	raw := rawSegments(sorted, totalDuration, opts.Padding)
	filtered := filterShort(raw, opts.MinSegmentDuration)
	merged := mergeClose(filtered, opts.MergeGap)
	return timebackExpand(merged, totalDuration, opts.TimebackStart, opts.TimebackEnd)
}

// rawSegments emits the padded gap before each silence plus the final gap
// to the end of the track, discarding anything the padding inverted.
func rawSegments(silences []SilenceInterval, totalDuration, padding float64) []Segment {
	var segments []Segment
	lastEnd := 0.0

	emit := func(gapStart, gapEnd float64) {
		start := clamp(gapStart+padding, 0, totalDuration)
		end := clamp(gapEnd-padding, 0, totalDuration)
		if end > start {
			segments = append(segments, Segment{Start: start, End: end})
		}
	}

	for _, s := range silences {
		emit(lastEnd, s.Start)
		if s.End > lastEnd {
			lastEnd = s.End
		}
	}
	emit(lastEnd, totalDuration)

	return segments
}

func filterShort(segments []Segment, minDuration float64) []Segment {
	var kept []Segment
	for _, s := range segments {
		if s.Duration() >= minDuration {
			kept = append(kept, s)
		}
	}
	return kept
}

// mergeClose joins consecutive segments whose gap is within mergeGap by
// extending the previous segment.
func mergeClose(segments []Segment, mergeGap float64) []Segment {
	var merged []Segment
	for _, s := range segments {
		if len(merged) > 0 && s.Start-merged[len(merged)-1].End <= mergeGap {
			merged[len(merged)-1].End = s.End
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// timebackExpand widens every segment backwards and forwards, clamps to the
// track, and re-merges any segments the expansion made overlap.
func timebackExpand(segments []Segment, totalDuration, timebackStart, timebackEnd float64) []Segment {
	var expanded []Segment
	for _, s := range segments {
		expanded = append(expanded, Segment{
			Start: clamp(s.Start-timebackStart, 0, totalDuration),
			End:   clamp(s.End+timebackEnd, 0, totalDuration),
		})
	}

	var merged []Segment
	for _, s := range expanded {
		if len(merged) > 0 && s.Start <= merged[len(merged)-1].End {
			if s.End > merged[len(merged)-1].End {
				merged[len(merged)-1].End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
