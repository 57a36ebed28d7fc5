package parser

import "strings"

// Scorer is a seal ranking strategy. Pick returns the strategy's answer for
// normalized text, if it has one it is willing to stand behind.
type Scorer interface {
	Name() string
	Rank(text NormalizedText) []RankedCandidate
	Pick(text NormalizedText) (RankedCandidate, bool)
}

// SealResolver runs the confidence detector first and falls back to the
// legacy scorer when the detector is not confident enough
type SealResolver struct {
	detector *ConfidenceDetector
	legacy   *LegacyScorer
}

// NewSealResolver creates a resolver with the given detector threshold.
// A non-positive threshold selects DefaultConfidenceThreshold.
func NewSealResolver(threshold float64) *SealResolver {
	return &SealResolver{
		detector: NewConfidenceDetector(threshold),
		legacy:   NewLegacyScorer(),
	}
}

// Strategies returns the scorers in the order they are consulted
func (r *SealResolver) Strategies() []Scorer {
	return []Scorer{r.detector, r.legacy}
}

// Resolve returns the best seal value for raw OCR text or NotDetected
func (r *SealResolver) Resolve(raw string) string {
	text := NormalizeSealText(raw)
	if text == "" {
		return NotDetected
	}

	if top, ok := r.detector.Pick(text); ok {
		return top.Text
	}
	return r.fallback(text)
}

// Describe resolves raw OCR text and explains the outcome
func (r *SealResolver) Describe(raw string) DetectionResult {
	if strings.TrimSpace(raw) == "" {
		return DetectionResult{Reason: ReasonEmptyText, Candidates: []ConfidenceCandidate{}}
	}

	// Text made only of camera stamps or NIT fragments normalizes to nothing
	text := NormalizeSealText(raw)
	if text == "" {
		return DetectionResult{Reason: ReasonNoValidCandidate, Candidates: []ConfidenceCandidate{}}
	}

	candidates := r.detector.detect(text)
	top := topCandidates(candidates, describedCandidates)

	if len(candidates) > 0 {
		best := candidates[0]
		if best.Confidence >= r.detector.Threshold() && isPlausibleSeal(best.Text) {
			return DetectionResult{
				Value:      best.Text,
				Confidence: best.Confidence,
				Reason:     ReasonDetected,
				Candidates: top,
			}
		}
	}

	if value := r.fallback(text); value != NotDetected {
		return DetectionResult{
			Value:      value,
			Confidence: fallbackConfidence,
			Reason:     ReasonDetected,
			Candidates: top,
		}
	}

	// A top candidate that cleared the threshold but failed the sanity check
	// is not a low-confidence answer
	if len(candidates) > 0 && candidates[0].Confidence > 0 && candidates[0].Confidence < r.detector.Threshold() {
		return DetectionResult{
			Confidence: candidates[0].Confidence,
			Reason:     ReasonLowConfidence,
			Candidates: top,
		}
	}

	return DetectionResult{Reason: ReasonNoValidCandidate, Candidates: top}
}

// fallback re-runs the legacy scorer; a plate-shaped answer in text that
// mentions PLACA is the vehicle plate, not a seal
func (r *SealResolver) fallback(text NormalizedText) string {
	best, ok := r.legacy.Pick(text)
	if !ok {
		return NotDetected
	}
	if isPlateShaped(best.Text) && mentionsPlate(string(text)) {
		return NotDetected
	}
	return best.Text
}

func topCandidates(candidates []ConfidenceCandidate, n int) []ConfidenceCandidate {
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]ConfidenceCandidate, len(candidates))
	copy(out, candidates)
	return out
}

var defaultResolver = NewSealResolver(DefaultConfidenceThreshold)

// CleanSeal resolves a seal using only the legacy scorer
func CleanSeal(text string) string {
	normalized := NormalizeSealText(text)
	if normalized == "" {
		return NotDetected
	}
	return defaultResolver.legacy.Select(normalized)
}

// ResolveSeal resolves a seal with the confidence detector and legacy fallback
func ResolveSeal(text string) string {
	return defaultResolver.Resolve(text)
}

// DescribeSeal is ResolveSeal with the reason code and top candidates
func DescribeSeal(text string) DetectionResult {
	return defaultResolver.Describe(text)
}
