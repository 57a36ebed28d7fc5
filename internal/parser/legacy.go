package parser

import "sort"

// LegacyScorer ranks seal candidates with the original integer heuristic
type LegacyScorer struct{}

// NewLegacyScorer creates a new legacy scorer
func NewLegacyScorer() *LegacyScorer {
	return &LegacyScorer{}
}

// Name returns the strategy name
func (l *LegacyScorer) Name() string {
	return "legacy"
}

// Score computes the integer heuristic for a single candidate
func (l *LegacyScorer) Score(candidate string) int {
	score := 0
	n := len(candidate)

	switch {
	case n >= 6 && n <= 8:
		score += 20
	case n == 5 || n == 9:
		score += 10
	case n > 9:
		score -= 10
	}

	if hasLetter(candidate) && hasDigit(candidate) {
		score += 6
	}

	if endsInDigit(candidate) {
		score += 5
	}

	if trailingDigitsThenLetters.MatchString(candidate) {
		score -= 8
	}

	if leadingZeros.MatchString(candidate) {
		score -= 4
	}

	score -= 2 * countLongRuns(candidate)

	return score
}

// Candidates generates and filters the legacy candidate set for text
func (l *LegacyScorer) Candidates(text NormalizedText) []Candidate {
	return filterGenerated(GenerateCandidates(text, VariantLegacy), text, VariantLegacy)
}

// Rank scores every legacy candidate, best first
func (l *LegacyScorer) Rank(text NormalizedText) []RankedCandidate {
	scored := l.score(l.Candidates(text))

	ranked := make([]RankedCandidate, 0, len(scored))
	for _, c := range scored {
		ranked = append(ranked, RankedCandidate{Text: c.Text, Score: float64(c.Score)})
	}
	return ranked
}

// Pick selects the legacy answer for text, falling back to bare numeric runs
// when no candidate survives filtering
func (l *LegacyScorer) Pick(text NormalizedText) (RankedCandidate, bool) {
	candidates := l.Candidates(text)
	if len(candidates) == 0 {
		return l.numericFallback(text)
	}

	pool := preferOptimalLength(candidates)
	if len(pool) == 0 {
		return l.numericFallback(text)
	}

	best := l.score(pool)[0]
	return RankedCandidate{Text: best.Text, Score: float64(best.Score)}, true
}

// Select returns the legacy answer for text or NotDetected
func (l *LegacyScorer) Select(text NormalizedText) string {
	if best, ok := l.Pick(text); ok {
		return best.Text
	}
	return NotDetected
}

// score attaches scores and sorts by score, then length, then text
func (l *LegacyScorer) score(candidates []Candidate) []LegacyCandidate {
	scored := make([]LegacyCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, LegacyCandidate{Candidate: c, Score: l.Score(c.Text)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if len(scored[i].Text) != len(scored[j].Text) {
			return len(scored[i].Text) > len(scored[j].Text)
		}
		return scored[i].Text < scored[j].Text
	})

	return scored
}

// preferOptimalLength narrows the pool to 6-8 character candidates when any
// exist, and drops NIT-like numbers (9 followed by 8-9 digits) from it
func preferOptimalLength(candidates []Candidate) []Candidate {
	var optimal []Candidate
	for _, c := range candidates {
		if len(c.Text) >= 6 && len(c.Text) <= 8 {
			optimal = append(optimal, c)
		}
	}

	pool := candidates
	if len(optimal) > 0 {
		pool = optimal
	}

	var kept []Candidate
	for _, c := range pool {
		if nitLikeNumber.MatchString(digitsOnly(c.Text)) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// numericFallback picks among bare 5-9 digit tokens, preferring 6-8 digits
// and then the longest
func (l *LegacyScorer) numericFallback(text NormalizedText) (RankedCandidate, bool) {
	var best string
	bestOptimal := false

	for _, token := range alnumToken.FindAllString(string(text), -1) {
		if !isAllDigits(token) || len(token) < 5 || len(token) > 9 {
			continue
		}
		if isDateShaped(token) {
			continue
		}

		optimal := len(token) >= 6 && len(token) <= 8
		switch {
		case best == "":
		case optimal != bestOptimal:
			if !optimal {
				continue
			}
		case len(token) != len(best):
			if len(token) < len(best) {
				continue
			}
		case token >= best:
			continue
		}
		best, bestOptimal = token, optimal
	}

	if best == "" {
		return RankedCandidate{}, false
	}
	return RankedCandidate{Text: best, Score: float64(l.Score(best))}, true
}

func digitsOnly(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b = append(b, s[i])
		}
	}
	return string(b)
}
