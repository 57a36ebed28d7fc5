package parser

import (
	"regexp"
	"strings"
)

// Shared structural patterns. Candidates are uppercase alphanumeric by the
// time these run, so the character classes stay ASCII.
var (
	plateShape     = regexp.MustCompile(`[A-Z]{3}[0-9]{3}`)
	containerShape = regexp.MustCompile(`[A-Z]{4}[0-9]{7}`)
	nonAlnum       = regexp.MustCompile(`[^A-Z0-9]+`)
	alnumToken     = regexp.MustCompile(`[A-Z0-9]+`)
	alnumBlock     = regexp.MustCompile(`[A-Z0-9]{5,}`)
	digitRun       = regexp.MustCompile(`[0-9]+`)

	// Runs of at least two alphanumerics joined by common OCR separators
	separatedSpan = regexp.MustCompile(`[A-Z0-9]{2,}(?:[\s\-_./]+[A-Z0-9]{2,})+`)

	trailingDigitsThenLetters = regexp.MustCompile(`[0-9]+[A-Z]+$`)
	leadingZeros              = regexp.MustCompile(`^000`)
	nitLikeNumber             = regexp.MustCompile(`^9[0-9]{8,9}$`)
)

// Camera stamp detection, applied line by line to upper-cased text
var (
	stampDate     = regexp.MustCompile(`\b(?:[0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{4}|[0-9]{4}[/-][0-9]{1,2}[/-][0-9]{1,2})\b`)
	stampMeridiem = regexp.MustCompile(`(?:^|[^A-Z])[AP]\.?\s?M\b\.?`)
	stampMonth    = regexp.MustCompile(`\b(?:ENERO|FEBRERO|MARZO|ABRIL|MAYO|JUNIO|JULIO|AGOSTO|SEPTIEMBRE|SETIEMBRE|OCTUBRE|NOVIEMBRE|DICIEMBRE|ENE|FEB|MAR|ABR|MAY|JUN|JUL|AGO|SEP|SET|OCT|NOV|DIC)\.?\b`)
	stampYear     = regexp.MustCompile(`\b(?:19|20)[0-9]{2}\b`)
	stampClock    = regexp.MustCompile(`\b[0-9]{1,2}:[0-9]{2}(?:[^0-9]|$)`)
)

// National tax ID (NIT) fragments. Labeled and bare occurrences share the
// 3+3+3 grouping with optional dot or space separators.
const nitNumber = `[0-9]{3}[. ]?[0-9]{3}[. ]?[0-9]{3}(?:\s*-\s*[0-9])?`

var (
	nitLabeled = regexp.MustCompile(`(?i)\bN\s*\.?\s*I\s*\.?\s*T\s*\.?\s*:?\s*` + nitNumber)
	nitBare    = regexp.MustCompile(`\b` + nitNumber + `\b`)
)

// isPlateShaped reports whether s contains a 3-letter + 3-digit plate
func isPlateShaped(s string) bool {
	return plateShape.MatchString(s)
}

// isContainerShaped reports whether s contains a 4-letter + 7-digit code
func isContainerShaped(s string) bool {
	return containerShape.MatchString(s)
}

// compact strips every character that is not an uppercase letter or digit
func compact(s string) string {
	return nonAlnum.ReplaceAllString(s, "")
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func endsInDigit(s string) bool {
	return s != "" && isDigit(s[len(s)-1])
}

// countLongRuns counts runs of four or more identical consecutive characters
func countLongRuns(s string) int {
	count := 0
	run := 1
	for i := 1; i <= len(s); i++ {
		if i < len(s) && s[i] == s[i-1] {
			run++
			continue
		}
		if run >= 4 {
			count++
		}
		run = 1
	}
	return count
}

// mentionsPlate reports whether the surrounding text labels a vehicle plate
func mentionsPlate(text string) bool {
	return strings.Contains(text, "PLACA")
}

// undouble collapses a value the OCR read more than once, e.g. "AB1234AB1234"
func undouble(s string) string {
	n := len(s)
	for period := 5; period <= n/2; period++ {
		if n%period != 0 {
			continue
		}
		if strings.Repeat(s[:period], n/period) == s {
			return s[:period]
		}
	}
	return s
}

// isDateShaped reports whether a digit run looks like a timestamp:
// YYYYMMDD, DDMMYYYY or HHMMSS.
func isDateShaped(run string) bool {
	switch len(run) {
	case 8:
		if validYear(atoi(run[:4])) && validMonth(atoi(run[4:6])) && validDay(atoi(run[6:])) {
			return true
		}
		return validDay(atoi(run[:2])) && validMonth(atoi(run[2:4])) && validYear(atoi(run[4:]))
	case 6:
		return atoi(run[:2]) <= 23 && atoi(run[2:4]) <= 59 && atoi(run[4:]) <= 59
	}
	return false
}

// hasDateShapedRun checks every embedded digit run of 6 to 8 digits
func hasDateShapedRun(s string) bool {
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) >= 6 && len(run) <= 8 && isDateShaped(run) {
			return true
		}
	}
	return false
}

func validYear(y int) bool  { return y >= 1990 && y <= 2099 }
func validMonth(m int) bool { return m >= 1 && m <= 12 }
func validDay(d int) bool   { return d >= 1 && d <= 31 }

// atoi converts a string already known to be ASCII digits
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			panic("parser: atoi called with non-digit input " + s)
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}
