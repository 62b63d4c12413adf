package analyzer

import (
	"fmt"
	"strings"
)

// Threshold tuning constants. Dynamic range (DR, peak minus RMS) drives the
// tier classification; each tier then blends a different set of weighted
// threshold candidates.
const (
	// Tier boundaries on dynamic range (dB). Below each bound the
	// recording is at least that noisy.
	tierVeryNoisyBelowDR = 8.0
	tierNoisyBelowDR     = 12.0
	tierModerateBelowDR  = 15.0

	// Candidate formula coefficients, very noisy tier.
	veryNoisyMeanDRFactor = 0.5
	veryNoisyMaxDRFactor  = 0.6
	veryNoisyRmsDRFactor  = 0.3
	veryNoisyPeakOffset   = 3.0

	// Candidate formula coefficients, noisy tier.
	noisyMeanDRFactor = 0.35
	noisyMaxDRFactor  = 0.7
	noisyRmsOffset    = 1.0
	noisyPeakOffset   = 6.0

	// Candidate offsets, moderate/clean tiers.
	moderateMaxOffset = 9.0
	cleanMaxOffset    = 10.0
	quietMeanOffset   = 2.0
	quietRmsOffset    = 4.0
	wideDRThreshold   = 15.0
	wideDRMaxOffset   = 12.0

	// Candidate weights.
	weightPrimary   = 2.0
	weightStandard  = 1.0
	weightSecondary = 0.5
	weightRmsNoisy  = 1.2
	weightPeakNoisy = 1.5
	weightMeanNoisy = 1.5
	weightRmsQuiet  = 0.8
	weightPeakFair  = 0.8

	// Final clamp bounds (dBFS). The ceiling tightens as recordings get
	// cleaner: a clean room can afford a much lower silence threshold.
	thresholdFloorDb       = -50.0
	thresholdCeilVeryNoisy = -6.0
	thresholdCeilNoisy     = -8.0
	thresholdCeilModerate  = -12.0
)

// NoiseTier buckets a recording's noise environment by dynamic range.
type NoiseTier int

const (
	TierVeryNoisy NoiseTier = iota
	TierNoisy
	TierModerate
	TierClean
)

// String returns the tier name for diagnostics.
func (t NoiseTier) String() string {
	switch t {
	case TierVeryNoisy:
		return "very-noisy"
	case TierNoisy:
		return "noisy"
	case TierModerate:
		return "moderate"
	default:
		return "clean"
	}
}

// ClassifyNoise maps a dynamic-range measurement to a noise tier. A nil
// input (percentile sampling failed) classifies as clean: without evidence
// of noise the conservative formulas apply.
func ClassifyNoise(dynamicRangeDb *float64) NoiseTier {
	if dynamicRangeDb == nil {
		return TierClean
	}
	switch dr := *dynamicRangeDb; {
	case dr < tierVeryNoisyBelowDR:
		return TierVeryNoisy
	case dr < tierNoisyBelowDR:
		return TierNoisy
	case dr < tierModerateBelowDR:
		return TierModerate
	default:
		return TierClean
	}
}

// Candidate is one weighted threshold proposal. Label records the formula
// that produced it, for the diagnostic string.
type Candidate struct {
	Label   string
	ValueDb float64
	Weight  float64
}

// ThresholdResult is the calculator's output: the clamped weighted-mean
// threshold plus everything needed to explain it.
type ThresholdResult struct {
	Tier        NoiseTier
	ThresholdDb float64
	Candidates  []Candidate
}

// ComputeThreshold classifies the noise tier from the percentile sample
// (nil when unmeasurable) and blends the tier's candidate list into a final
// clamped silence threshold.
func ComputeThreshold(chunks ChunkAnalysis, percentiles *PercentileStats) ThresholdResult {
	var dr *float64
	if percentiles != nil {
		dr = &percentiles.DynamicRangeDb
	}
	tier := ClassifyNoise(dr)

	var candidates []Candidate
	switch tier {
	case TierVeryNoisy:
		candidates = veryNoisyCandidates(chunks, percentiles)
	case TierNoisy:
		candidates = noisyCandidates(chunks, percentiles)
	default:
		candidates = quietCandidates(tier, chunks, percentiles)
	}

	var weightedSum, totalWeight float64
	for _, c := range candidates {
		weightedSum += c.ValueDb * c.Weight
		totalWeight += c.Weight
	}
	threshold := clamp(weightedSum/totalWeight, thresholdFloorDb, tierCeiling(tier))

	return ThresholdResult{
		Tier:        tier,
		ThresholdDb: threshold,
		Candidates:  candidates,
	}
}

// veryNoisyCandidates biases towards the mean level: in a very noisy room
// the silence floor sits close under the speech, so the threshold must push
// up into the dynamic range. Only reachable with a measured DR.
func veryNoisyCandidates(chunks ChunkAnalysis, p *PercentileStats) []Candidate {
	dr := p.DynamicRangeDb
	candidates := []Candidate{
		{"medianMean+0.5DR", chunks.MedianMean + veryNoisyMeanDRFactor*dr, weightPrimary},
		{"medianMax-0.6DR", chunks.MedianMax - veryNoisyMaxDRFactor*dr, weightStandard},
		{"rms+0.3DR", p.RmsLevelDb + veryNoisyRmsDRFactor*dr, weightRmsNoisy},
		{"peak-3", p.PeakLevelDb - veryNoisyPeakOffset, weightPeakNoisy},
	}
	return candidates
}

// noisyCandidates sits between the aggressive very-noisy formulas and the
// conservative quiet ones. Only reachable with a measured DR.
func noisyCandidates(chunks ChunkAnalysis, p *PercentileStats) []Candidate {
	dr := p.DynamicRangeDb
	candidates := []Candidate{
		{"medianMean+0.35DR", chunks.MedianMean + noisyMeanDRFactor*dr, weightMeanNoisy},
		{"medianMax-0.7DR", chunks.MedianMax - noisyMaxDRFactor*dr, weightStandard},
		{"rms-1", p.RmsLevelDb - noisyRmsOffset, weightSecondary},
		{"peak-6", p.PeakLevelDb - noisyPeakOffset, weightPeakFair},
	}
	return candidates
}

// quietCandidates covers the moderate and clean tiers. The percentile
// sample may be absent here (a failed sample classifies as clean), in which
// case the RMS and wide-DR candidates are omitted rather than defaulted.
func quietCandidates(tier NoiseTier, chunks ChunkAnalysis, p *PercentileStats) []Candidate {
	maxOffset := cleanMaxOffset
	if tier == TierModerate {
		maxOffset = moderateMaxOffset
	}
	candidates := []Candidate{
		{fmt.Sprintf("medianMax-%.0f", maxOffset), chunks.MedianMax - maxOffset, weightStandard},
		{"medianMean-2", chunks.MedianMean - quietMeanOffset, weightSecondary},
	}
	if p != nil {
		candidates = append(candidates, Candidate{"rms-4", p.RmsLevelDb - quietRmsOffset, weightRmsQuiet})
		if p.DynamicRangeDb > wideDRThreshold {
			candidates = append(candidates, Candidate{"medianMax-12", chunks.MedianMax - wideDRMaxOffset, weightSecondary})
		}
	}
	return candidates
}

func tierCeiling(tier NoiseTier) float64 {
	switch tier {
	case TierVeryNoisy:
		return thresholdCeilVeryNoisy
	case TierNoisy:
		return thresholdCeilNoisy
	default:
		return thresholdCeilModerate
	}
}

// Describe renders the tier, every candidate with its weight, and the final
// threshold as a single diagnostic line. The string is advisory; nothing
// parses it.
func (r ThresholdResult) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tier=%s", r.Tier)
	sb.WriteString(" candidates=[")
	for i, c := range r.Candidates {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s=%.2fdB(w%.1f)", c.Label, c.ValueDb, c.Weight)
	}
	sb.WriteString("]")
	fmt.Fprintf(&sb, " threshold=%.2fdB", r.ThresholdDb)
	return sb.String()
}

// clamp restricts val to the range [min, max].
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
