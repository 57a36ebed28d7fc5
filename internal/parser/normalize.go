package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC normalization and upper-casing.
// Empty input yields empty output; it never fails.
func NormalizeText(raw string) NormalizedText {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return NormalizedText(strings.ToUpper(norm.NFKC.String(raw)))
}

// NormalizeSealText prepares text for seal and container detection: on top of
// NormalizeText it drops camera date/time stamp lines and NIT fragments.
func NormalizeSealText(raw string) NormalizedText {
	text := string(NormalizeText(raw))
	if text == "" {
		return ""
	}

	text = removeCameraStamps(text)
	text = removeNITFragments(text)

	return NormalizedText(text)
}

// NormalizePlateText prepares text for plate detection by keeping only [A-Z0-9]
func NormalizePlateText(raw string) NormalizedText {
	return NormalizedText(compact(string(NormalizeText(raw))))
}

// removeCameraStamps drops every line that looks like a camera timestamp
func removeCameraStamps(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isCameraStamp(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// isCameraStamp reports whether a single line is a date/time overlay
func isCameraStamp(line string) bool {
	hasMeridiem := stampMeridiem.MatchString(line)

	if stampDate.MatchString(line) && (strings.Contains(line, ":") || hasMeridiem) {
		return true
	}

	if stampMonth.MatchString(line) && stampYear.MatchString(line) {
		return true
	}

	return stampClock.MatchString(line) && hasMeridiem
}

// removeNITFragments blanks labeled tax IDs first, then bare grouped numbers
func removeNITFragments(text string) string {
	text = nitLabeled.ReplaceAllString(text, " ")
	return nitBare.ReplaceAllString(text, " ")
}
