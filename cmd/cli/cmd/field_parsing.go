package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"logistics-ocr/internal/services"
)

// defaultFields represents the default fields to display in the table
var defaultFields = []string{"id", "kind", "value", "valid", "confidence", "source", "created"}

// availableFields maps field names to their display names
var availableFields = map[string]string{
	"id":         "ID",
	"kind":       "KIND",
	"value":      "VALUE",
	"valid":      "VALID",
	"confidence": "CONFIDENCE",
	"reason":     "REASON",
	"source":     "SOURCE",
	"text":       "TEXT",
	"created":    "CREATED",
}

// parseFields parses the fields flag and returns a slice of field names
func parseFields(fieldsFlag string) []string {
	if fieldsFlag == "" {
		return defaultFields
	}

	fields := strings.Split(fieldsFlag, ",")
	result := make([]string, 0, len(fields))

	for _, field := range fields {
		trimmed := strings.ToLower(strings.TrimSpace(field))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// validateFields validates that all provided fields are valid
func validateFields(fields []string) error {
	var invalid []string

	for _, field := range fields {
		if _, exists := availableFields[field]; !exists {
			invalid = append(invalid, field)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid field(s): %s. Available fields: %s",
			strings.Join(invalid, ", "),
			strings.Join(getAvailableFieldNames(), ", "))
	}

	return nil
}

// getFieldDisplayName returns the display name for a field
func getFieldDisplayName(field string) string {
	if displayName, exists := availableFields[field]; exists {
		return displayName
	}
	return field
}

// getAvailableFieldNames returns all available field names in sorted order
func getAvailableFieldNames() []string {
	names := make([]string, 0, len(availableFields))
	for name := range availableFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getFieldValue returns the value for a specific field from a verification
func getFieldValue(v services.Verification, field string) string {
	switch field {
	case "id":
		return v.ID.String()[:8]
	case "kind":
		return string(v.Kind)
	case "value":
		if v.Value == "" {
			return "-"
		}
		return v.Value
	case "valid":
		if v.Valid {
			return "Yes"
		}
		return "No"
	case "confidence":
		return strconv.FormatFloat(v.Confidence, 'f', 2, 64)
	case "reason":
		return v.ReasonCode
	case "source":
		return string(v.Source)
	case "text":
		return strings.Join(strings.Fields(v.RawText), " ")
	case "created":
		return v.CreatedAt.Local().Format("2006-01-02 15:04")
	default:
		return ""
	}
}
