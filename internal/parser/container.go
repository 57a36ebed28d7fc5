package parser

import "strings"

// containerCodeLength is the size of an ISO 6346 code: owner (3) + category (1)
// + serial (6) + check digit (1)
const containerCodeLength = 11

// iso6346Values maps owner/category letters to their numeric equivalents.
// Multiples of 11 (11, 22, 33) are skipped by the standard.
var iso6346Values = map[byte]int{
	'A': 10, 'B': 12, 'C': 13, 'D': 14, 'E': 15, 'F': 16, 'G': 17,
	'H': 18, 'I': 19, 'J': 20, 'K': 21, 'L': 23, 'M': 24, 'N': 25,
	'O': 26, 'P': 27, 'Q': 28, 'R': 29, 'S': 30, 'T': 31, 'U': 32,
	'V': 34, 'W': 35, 'X': 36, 'Y': 37, 'Z': 38,
}

// ValidateISO6346 checks the structure and check digit of a container code
func ValidateISO6346(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != containerCodeLength || !isContainerWindow(code) {
		return false
	}

	return iso6346CheckDigit(code) == int(code[10]-'0')
}

// iso6346CheckDigit computes the expected check digit for a code whose
// structure has already been validated
func iso6346CheckDigit(code string) int {
	sum := 0
	weight := 1
	for i := 0; i < 10; i++ {
		var value int
		if i < 4 {
			v, ok := iso6346Values[code[i]]
			if !ok {
				panic("parser: letter missing from ISO 6346 table: " + string(code[i]))
			}
			value = v
		} else {
			value = int(code[i] - '0')
		}
		sum += value * weight
		weight *= 2
	}
	return (sum % 11) % 10
}

// isContainerWindow reports whether an 11-byte window is 4 letters + 7 digits
func isContainerWindow(s string) bool {
	for i := 0; i < 4; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	for i := 4; i < containerCodeLength; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// ExtractContainerResult scans the compacted text left to right and returns
// the first window that passes the check digit, not merely the first that
// looks like a container code.
func ExtractContainerResult(text string) ContainerResult {
	stripped := compact(string(NormalizeText(text)))

	for i := 0; i+containerCodeLength <= len(stripped); i++ {
		window := stripped[i : i+containerCodeLength]
		if !isContainerWindow(window) {
			continue
		}
		if iso6346CheckDigit(window) == int(window[10]-'0') {
			return ContainerResult{Value: window, Valid: true}
		}
	}

	return ContainerResult{}
}

// ExtractContainer returns the first valid container code or NotDetected
func ExtractContainer(text string) string {
	result := ExtractContainerResult(text)
	if !result.Valid {
		return NotDetected
	}
	return result.Value
}
