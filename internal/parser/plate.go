package parser

// ExtractPlate finds the leftmost 3-letter + 3-digit vehicle plate in OCR text
func ExtractPlate(text string) PlateResult {
	stripped := string(NormalizePlateText(text))
	if stripped == "" {
		return PlateResult{}
	}

	match := plateShape.FindString(stripped)
	if match == "" {
		return PlateResult{}
	}

	return PlateResult{Value: match, Valid: true}
}

// NormalizePlate returns the detected plate or PlateNotDetected
func NormalizePlate(text string) string {
	result := ExtractPlate(text)
	if !result.Valid {
		return PlateNotDetected
	}
	return result.Value
}
