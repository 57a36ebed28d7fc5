package parser

import (
	"math"
	"sort"
	"strings"
)

const (
	// DefaultConfidenceThreshold is the minimum confidence accepted without fallback
	DefaultConfidenceThreshold = 0.7

	baseConfidence      = 0.5
	maxConfidence       = 0.99
	digitsOnlyCeiling   = 0.45
	fallbackConfidence  = 0.75
	describedCandidates = 5
)

// ConfidenceDetector assigns each seal candidate a 0-0.99 confidence with
// reason tags explaining the adjustments
type ConfidenceDetector struct {
	threshold float64
}

// NewConfidenceDetector creates a detector using the given acceptance threshold.
// A non-positive threshold selects DefaultConfidenceThreshold.
func NewConfidenceDetector(threshold float64) *ConfidenceDetector {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &ConfidenceDetector{threshold: threshold}
}

// Name returns the strategy name
func (d *ConfidenceDetector) Name() string {
	return "confidence"
}

// Threshold returns the acceptance threshold
func (d *ConfidenceDetector) Threshold() float64 {
	return d.threshold
}

// Evaluate computes the confidence and reason tags for one candidate
func (d *ConfidenceDetector) Evaluate(candidate string) (float64, []string) {
	confidence := baseConfidence
	var reasons []string

	if hasLetter(candidate) && hasDigit(candidate) {
		confidence += 0.25
		reasons = append(reasons, TagAlphanumeric)
	} else {
		confidence -= 0.25
		reasons = append(reasons, TagInsufficientChars)
	}

	if endsInDigit(candidate) {
		confidence += 0.1
		reasons = append(reasons, TagEndsInDigit)
	}

	n := len(candidate)
	if n >= 6 && n <= 8 {
		confidence += 0.1
		reasons = append(reasons, TagOptimalLength)
	} else if n > 10 {
		confidence -= 0.1
		reasons = append(reasons, TagLongLength)
	}

	if countLongRuns(candidate) > 0 {
		confidence -= 0.1
		reasons = append(reasons, TagLongRepetitions)
	}

	if isAllDigits(candidate) {
		confidence = math.Min(confidence, digitsOnlyCeiling)
		reasons = append(reasons, TagDigitsOnly)
	}

	confidence = math.Max(0, math.Min(maxConfidence, confidence))
	return math.Round(confidence*100) / 100, reasons
}

// Detect normalizes raw OCR text and returns every scored candidate, best first
func (d *ConfidenceDetector) Detect(raw string) []ConfidenceCandidate {
	return d.detect(NormalizeSealText(raw))
}

func (d *ConfidenceDetector) detect(text NormalizedText) []ConfidenceCandidate {
	if text == "" {
		return nil
	}

	generated := GenerateCandidates(text, VariantDetector)
	filtered := filterGenerated(generated, text, VariantDetector)
	plateContext := mentionsPlate(string(text))

	scored := make([]ConfidenceCandidate, 0, len(filtered))
	for _, c := range filtered {
		if plateContext && isPlateShaped(c.Text) {
			continue
		}
		confidence, reasons := d.Evaluate(c.Text)
		scored = append(scored, ConfidenceCandidate{
			Candidate:  c,
			Confidence: confidence,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Confidence != scored[j].Confidence {
			return scored[i].Confidence > scored[j].Confidence
		}
		if len(scored[i].Text) != len(scored[j].Text) {
			return len(scored[i].Text) > len(scored[j].Text)
		}
		return scored[i].Text < scored[j].Text
	})

	return scored
}

// Rank returns the detector candidates for already normalized text
func (d *ConfidenceDetector) Rank(text NormalizedText) []RankedCandidate {
	scored := d.detect(text)

	ranked := make([]RankedCandidate, 0, len(scored))
	for _, c := range scored {
		ranked = append(ranked, RankedCandidate{Text: c.Text, Score: c.Confidence, Reasons: c.Reasons})
	}
	return ranked
}

// Pick accepts the top candidate only when it clears the threshold and
// passes the structural sanity check
func (d *ConfidenceDetector) Pick(text NormalizedText) (RankedCandidate, bool) {
	ranked := d.Rank(text)
	if len(ranked) == 0 {
		return RankedCandidate{}, false
	}

	top := ranked[0]
	if top.Score < d.threshold || !isPlausibleSeal(top.Text) {
		return RankedCandidate{}, false
	}
	return top, true
}

// isPlausibleSeal is the independent structural check a detector answer must pass
func isPlausibleSeal(value string) bool {
	if len(value) < minCandidateLength {
		return false
	}
	if !hasLetter(value) || !hasDigit(value) {
		return false
	}
	if strings.Contains(value, "PLACA") || strings.Contains(value, "CONTENEDOR") {
		return false
	}
	return !isContainerShaped(value)
}
