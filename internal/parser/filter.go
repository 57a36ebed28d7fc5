package parser

// FilterCandidates cleans raw candidate strings and drops the ones that can
// never be a seal value. context is the normalized text the candidates came
// from; it drives the plate exclusion.
func FilterCandidates(raw []string, context NormalizedText, variant Variant) []Candidate {
	seen := make(map[string]bool)
	var kept []Candidate
	for _, text := range raw {
		c, ok := filterCandidate(text, string(context), variant)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		kept = append(kept, Candidate{Text: c})
	}
	return kept
}

// filterGenerated applies the same rules as FilterCandidates while keeping the
// generation origins of each surviving candidate
func filterGenerated(generated []Candidate, context NormalizedText, variant Variant) []Candidate {
	set := newCandidateSet(0)
	for _, c := range generated {
		text, ok := filterCandidate(c.Text, string(context), variant)
		if !ok {
			continue
		}
		for _, origin := range c.Origins {
			set.add(text, origin)
		}
	}
	return set.candidates()
}

// filterCandidate returns the cleaned candidate and whether it survives
func filterCandidate(text, context string, variant Variant) (string, bool) {
	text = undouble(compact(text))

	if len(text) < minCandidateLength {
		return "", false
	}

	// Container codes are reported by their own pipeline, never as seals
	if isContainerShaped(text) {
		return "", false
	}

	// Timestamp leakage from the camera overlay
	if hasDateShapedRun(text) {
		return "", false
	}

	if variant == VariantLegacy {
		// Labels such as PRECINTO or SELLO carry no digits
		if !hasDigit(text) {
			return "", false
		}
		if isPlateShaped(text) && mentionsPlate(context) {
			return "", false
		}
	}

	return text, true
}
