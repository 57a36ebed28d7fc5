package parser

import "strings"

// Variant selects the flavour of candidate generation and filtering. The two
// scorers evolved separately and differ in a few limits.
type Variant int

const (
	// VariantLegacy feeds the integer LegacyScorer
	VariantLegacy Variant = iota
	// VariantDetector feeds the ConfidenceDetector
	VariantDetector
)

const (
	minCandidateLength     = 5
	maxDetectorCandidates  = 50
	maxMergedTokenDigits   = 4
	legacyMergeLookahead   = 3
	detectorMergeLookahead = 4
)

// candidateSet collects candidate texts in first-seen order and merges the
// origins of duplicates
type candidateSet struct {
	index map[string]int
	items []Candidate
	limit int
}

func newCandidateSet(limit int) *candidateSet {
	return &candidateSet{index: make(map[string]int), limit: limit}
}

// add records text under the given origin, returning false once the set is full
func (s *candidateSet) add(text, origin string) bool {
	if i, ok := s.index[text]; ok {
		s.items[i].Origins = appendUnique(s.items[i].Origins, origin)
		return true
	}
	if s.limit > 0 && len(s.items) >= s.limit {
		return false
	}
	s.index[text] = len(s.items)
	s.items = append(s.items, Candidate{Text: text, Origins: []string{origin}})
	return true
}

func (s *candidateSet) candidates() []Candidate {
	return s.items
}

// GenerateCandidates proposes overlapping substrings of normalized text.
// Three strategies are unioned: maximal alphanumeric blocks, separator-collapsed
// fragments, and letter tokens merged with the short numeric tokens after them.
// The detector variant also adds the whole text compacted and caps the result.
func GenerateCandidates(text NormalizedText, variant Variant) []Candidate {
	s := string(text)
	if s == "" {
		return nil
	}

	limit := 0
	lookahead := legacyMergeLookahead
	if variant == VariantDetector {
		limit = maxDetectorCandidates
		lookahead = detectorMergeLookahead
	}
	set := newCandidateSet(limit)

	for _, block := range alnumBlock.FindAllString(s, -1) {
		if !set.add(block, OriginBlock) {
			return set.candidates()
		}
	}

	for _, span := range separatedSpan.FindAllString(s, -1) {
		fragment := undouble(compact(span))
		if !set.add(fragment, OriginFragment) {
			return set.candidates()
		}
	}

	for _, merged := range mergeAdjacentTokens(s, lookahead) {
		if !set.add(merged, OriginMerge) {
			return set.candidates()
		}
	}

	if variant == VariantDetector {
		if whole := compact(s); len(whole) >= minCandidateLength {
			set.add(whole, OriginCompact)
		}
	}

	return set.candidates()
}

// mergeAdjacentTokens joins every token containing a letter with up to
// lookahead following purely numeric tokens of 1-4 digits
func mergeAdjacentTokens(text string, lookahead int) []string {
	tokens := alnumToken.FindAllString(text, -1)

	var merged []string
	for i, token := range tokens {
		if !hasLetter(token) {
			continue
		}

		var b strings.Builder
		b.WriteString(token)
		for j := i + 1; j < len(tokens) && j <= i+lookahead; j++ {
			next := tokens[j]
			if !isAllDigits(next) || len(next) > maxMergedTokenDigits {
				break
			}
			b.WriteString(next)
		}

		if b.Len() >= minCandidateLength {
			merged = append(merged, b.String())
		}
	}

	return merged
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
