package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected NormalizedText
	}{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "  \n\t ", expected: ""},
		{name: "lowercase", input: "precinto abc123", expected: "PRECINTO ABC123"},
		{name: "fullwidth characters", input: "ｐｌａｃａ ａｂｃ１２３", expected: "PLACA ABC123"},
		{name: "keeps accents", input: "vehículo", expected: "VEHÍCULO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeSealText_CameraStamps(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    NormalizedText
		removed string
	}{
		{
			name:    "date with clock",
			input:   "precinto ABC12345\n12/03/2024 10:45",
			want:    "PRECINTO ABC12345",
			removed: "2024",
		},
		{
			name:    "iso date with meridiem",
			input:   "2024-03-12 pm\nsello XY98765",
			want:    "SELLO XY98765",
			removed: "2024",
		},
		{
			name:    "spanish month with year",
			input:   "15 MARZO 2024\nSELLO XY98765",
			want:    "SELLO XY98765",
			removed: "MARZO",
		},
		{
			name:    "abbreviated month",
			input:   "SELLO XY98765\n15 dic. 2023",
			want:    "SELLO XY98765",
			removed: "2023",
		},
		{
			name:    "clock with meridiem",
			input:   "10:45 P.M.\nAB12345",
			want:    "AB12345",
			removed: "10:45",
		},
		{
			name:    "meridiem glued to clock",
			input:   "precinto AB12345\n10:45PM",
			want:    "PRECINTO AB12345",
			removed: "PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSealText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, string(got), tt.removed)
		})
	}
}

func TestIsCameraStamp_Meridiem(t *testing.T) {
	assert.True(t, isCameraStamp("10:45PM"))
	assert.True(t, isCameraStamp("10:45 PM"))
	assert.True(t, isCameraStamp("9:05A.M."))
	assert.False(t, isCameraStamp("SELLO AM12345"))
	assert.False(t, isCameraStamp("10:45"))
}

func TestNormalizeSealText_KeepsTenDigitNumbers(t *testing.T) {
	// Longer digit runs are not NIT-shaped
	assert.Equal(t, NormalizedText("9001234567"), NormalizeSealText("9001234567"))
}

func TestNormalizeSealText_KeepsPlainDates(t *testing.T) {
	// A date without clock or meridiem is not a camera overlay
	got := NormalizeSealText("lote 12/03/2024\nprecinto AB12345")
	assert.Equal(t, NormalizedText("LOTE 12/03/2024\nPRECINTO AB12345"), got)
}

func TestNormalizeSealText_NITFragments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		removed string
		kept    string
	}{
		{
			name:    "labeled with check digit",
			input:   "NIT 900.123.456-7 PRECINTO XY123456",
			removed: "900",
			kept:    "XY123456",
		},
		{
			name:    "dotted label lowercase",
			input:   "n.i.t. 800 555 444 sello AB7788",
			removed: "555",
			kept:    "AB7788",
		},
		{
			name:    "bare grouped number",
			input:   "REF 811.222.333 SELLO QW12345",
			removed: "811",
			kept:    "QW12345",
		},
		{
			name:    "bare space grouped number",
			input:   "900 123 456 SELLO AB12345",
			removed: "456",
			kept:    "AB12345",
		},
		{
			name:    "bare ungrouped number",
			input:   "900123456 SELLO AB12345",
			removed: "900123456",
			kept:    "AB12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(NormalizeSealText(tt.input))
			assert.NotContains(t, got, tt.removed)
			assert.Contains(t, got, tt.kept)
		})
	}
}

func TestNormalizePlateText(t *testing.T) {
	assert.Equal(t, NormalizedText("VEHCULOCONPLACAXYZ789"), NormalizePlateText("Vehículo con placa XYZ-789"))
	assert.Equal(t, NormalizedText(""), NormalizePlateText(""))
	assert.Equal(t, NormalizedText(""), NormalizePlateText("-- ## --"))
}

func TestUndouble(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"00486840048684", "0048684"},
		{"AB123AB123AB123", "AB123"},
		{"AB1234AB1234", "AB1234"},
		{"ABCDABCD", "ABCDABCD"}, // period below 5
		{"AB12345", "AB12345"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, undouble(tt.input), "undouble(%q)", tt.input)
	}
}

func TestIsDateShaped(t *testing.T) {
	tests := []struct {
		run      string
		expected bool
	}{
		{"20240115", true},  // YYYYMMDD
		{"15012024", true},  // DDMMYYYY
		{"235959", true},    // HHMMSS
		{"246000", false},   // hour out of range
		{"004868", false},   // seconds out of range
		{"12345678", false}, // neither layout
		{"0048684", false},  // seven digits
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isDateShaped(tt.run), "isDateShaped(%q)", tt.run)
	}
}

func TestCountLongRuns(t *testing.T) {
	assert.Equal(t, 0, countLongRuns(""))
	assert.Equal(t, 0, countLongRuns("AAA123"))
	assert.Equal(t, 1, countLongRuns("AAAA123"))
	assert.Equal(t, 2, countLongRuns("AAAA1111"))
	assert.Equal(t, 1, countLongRuns("X1111111"))
}
