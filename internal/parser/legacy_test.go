package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyScorer_Score(t *testing.T) {
	scorer := NewLegacyScorer()

	tests := []struct {
		candidate string
		expected  int
	}{
		{"TDM38816", 31},
		{"0048684", 25},
		{"0004868", 21},
		{"12345", 15},
		{"AB12345CD", 8},
		{"ABCDEFGHIJK", -10},
		{"A1111111", 29},
		{"AAAA1111", 27},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.Score(tt.candidate))
		})
	}
}

func TestLegacyScorer_Rank(t *testing.T) {
	ranked := NewLegacyScorer().Rank(NormalizeSealText("precinto TDM-388-16"))

	require.Len(t, ranked, 2)
	assert.Equal(t, RankedCandidate{Text: "TDM38816", Score: 31}, ranked[0])
	assert.Equal(t, RankedCandidate{Text: "PRECINTOTDM38816", Score: 1}, ranked[1])
}

func TestLegacyScorer_Select(t *testing.T) {
	scorer := NewLegacyScorer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "dashed seal", input: "precinto TDM-388-16", expected: "TDM38816"},
		{name: "optimal length preferred over long value", input: "SELLO AB12345678901 XK55123", expected: "XK55123"},
		{name: "NIT-like number rejected", input: "9001234567", expected: NotDetected},
		{name: "ten digits not starting with nine", input: "8001234567", expected: "8001234567"},
		{name: "container only", input: "CONTENEDOR ABCD1234567", expected: NotDetected},
		{name: "plate only", input: "PLACA ABC123", expected: NotDetected},
		{name: "empty", input: "", expected: NotDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.Select(NormalizeSealText(tt.input)))
		})
	}
}

func TestLegacyScorer_NumericFallback(t *testing.T) {
	scorer := NewLegacyScorer()

	best, ok := scorer.numericFallback("SELLO 12345 1234567 7654321")
	require.True(t, ok)
	assert.Equal(t, "1234567", best.Text)

	best, ok = scorer.numericFallback("SELLO 12345 54321")
	require.True(t, ok)
	assert.Equal(t, "12345", best.Text)

	// Date-shaped and out-of-range tokens are ignored
	_, ok = scorer.numericFallback("20240115 1234 1234567890")
	assert.False(t, ok)
}

func TestCleanSeal(t *testing.T) {
	assert.Equal(t, "TDM38816", CleanSeal("PRECINTO TDM-388-16"))
	assert.Equal(t, "ABC12345", CleanSeal("PRECINTO ABC12345\n12/03/2024 10:45 AM"))
	assert.Equal(t, NotDetected, CleanSeal(""))
	assert.Equal(t, NotDetected, CleanSeal("9001234567"))
}
