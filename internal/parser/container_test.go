package parser

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateISO6346(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid code", code: "CSQU3054383", want: true},
		{name: "valid code lowercase", code: "csqu3054383", want: true},
		{name: "check digit ten maps to zero", code: "ABCD1234560", want: true},
		{name: "another valid code", code: "MSCU6639870", want: true},
		{name: "wrong check digit", code: "CSQU3054384", want: false},
		{name: "wrong check digit for ABCD", code: "ABCD1234567", want: false},
		{name: "too short", code: "CSQU305438", want: false},
		{name: "too long", code: "CSQU30543830", want: false},
		{name: "digit in owner code", code: "C5QU3054383", want: false},
		{name: "letter in serial", code: "CSQU30543B3", want: false},
		{name: "empty", code: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateISO6346(tt.code))
		})
	}
}

func TestValidateISO6346_FlippedCheckDigit(t *testing.T) {
	for _, valid := range []string{"CSQU3054383", "ABCD1234560", "MSCU6639870"} {
		prefix := valid[:10]
		for d := byte('0'); d <= '9'; d++ {
			code := prefix + string(d)
			assert.Equal(t, code == valid, ValidateISO6346(code), "ValidateISO6346(%q)", code)
		}
	}
}

func TestISO6346Table(t *testing.T) {
	assert.Len(t, iso6346Values, 26)
	for letter, value := range iso6346Values {
		assert.NotZero(t, value%11, "letter %c maps to a multiple of 11", letter)
	}
	assert.Equal(t, 10, iso6346Values['A'])
	assert.Equal(t, 23, iso6346Values['L'])
	assert.Equal(t, 34, iso6346Values['V'])
	assert.Equal(t, 38, iso6346Values['Z'])
}

func TestExtractContainer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "separated code",
			input:    "Contenedor: CSQU 305438-3",
			expected: "CSQU3054383",
		},
		{
			name:     "first validating code wins over first structural match",
			input:    "ABCD1234567 CSQU3054383",
			expected: "CSQU3054383",
		},
		{
			name:     "only invalid code",
			input:    "CONTENEDOR ABCD1234567",
			expected: NotDetected,
		},
		{
			name:     "empty",
			input:    "",
			expected: NotDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractContainer(tt.input))
		})
	}
}

func TestExtractContainerResult(t *testing.T) {
	assert.Equal(t, ContainerResult{Value: "MSCU6639870", Valid: true}, ExtractContainerResult("mscu 663987 0"))
	assert.Equal(t, ContainerResult{}, ExtractContainerResult("no container here"))
}

func TestExtractContainer_OutputAlwaysValidates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []byte("ABCDMQSU0123456789 -")

	for i := 0; i < 2000; i++ {
		b := make([]byte, 11+rng.Intn(20))
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		got := ExtractContainer(string(b))
		if got != NotDetected && !ValidateISO6346(got) {
			t.Fatalf("ExtractContainer(%q) = %q, which does not validate", string(b), got)
		}
	}
}
