package parser

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected PlateResult
	}{
		{
			name:     "noisy sentence",
			input:    "Vehículo con placa XYZ-789 ingresó a las 10:00",
			expected: PlateResult{Value: "XYZ789", Valid: true},
		},
		{
			name:     "lowercase with space",
			input:    "abc 123",
			expected: PlateResult{Value: "ABC123", Valid: true},
		},
		{
			name:     "leftmost match wins",
			input:    "AAA111 BBB222",
			expected: PlateResult{Value: "AAA111", Valid: true},
		},
		{
			name:     "fullwidth characters",
			input:    "ＫＬＭ４５６",
			expected: PlateResult{Value: "KLM456", Valid: true},
		},
		{
			name:     "no plate",
			input:    "sin placa visible",
			expected: PlateResult{},
		},
		{
			name:     "empty",
			input:    "",
			expected: PlateResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPlate(tt.input))
		})
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "XYZ789", NormalizePlate("Vehículo con placa XYZ-789 ingresó a las 10:00"))
	assert.Equal(t, PlateNotDetected, NormalizePlate(""))
	assert.Equal(t, PlateNotDetected, NormalizePlate("   "))
	assert.Equal(t, PlateNotDetected, NormalizePlate("AB-12345"))
}

func TestNormalizePlate_OutputShape(t *testing.T) {
	plate := regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("ABCXYZabcxyz0123456789 -./:áéÑ\n")

	for i := 0; i < 500; i++ {
		runes := make([]rune, rng.Intn(40))
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		got := NormalizePlate(string(runes))
		if got != PlateNotDetected && !plate.MatchString(got) {
			t.Fatalf("NormalizePlate(%q) = %q, want sentinel or plate", string(runes), got)
		}
	}
}
