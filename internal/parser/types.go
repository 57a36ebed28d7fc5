package parser

// Sentinel values returned by the plain (non-detailed) extraction functions.
// Consumers match on the literal text, so the two spellings must stay distinct.
const (
	// PlateNotDetected is returned by NormalizePlate when no plate is found
	PlateNotDetected = "NO_DETECTADA"

	// NotDetected is returned by the seal and container pipelines
	NotDetected = "NO DETECTADO"
)

// ReasonCode explains the outcome of a seal detection
type ReasonCode string

const (
	ReasonDetected         ReasonCode = "detectado"
	ReasonLowConfidence    ReasonCode = "confianza_baja"
	ReasonNoValidCandidate ReasonCode = "sin_candidatos_validos"
	ReasonEmptyText        ReasonCode = "texto_vacio"
)

// Confidence reason tags attached to detector candidates
const (
	TagAlphanumeric      = "alfanumerico"
	TagInsufficientChars = "caracteres_insuficientes"
	TagEndsInDigit       = "termina_en_digito"
	TagOptimalLength     = "longitud_optima"
	TagLongLength        = "longitud_larga"
	TagLongRepetitions   = "repeticiones_largas"
	TagDigitsOnly        = "solo_numeros"
)

// Candidate origins, one per generation strategy
const (
	OriginBlock    = "block"
	OriginFragment = "fragment"
	OriginMerge    = "merge"
	OriginCompact  = "compact"
)

// NormalizedText is OCR text after NFKC normalization and upper-casing.
// The seal variant also has camera stamps and NIT fragments removed.
type NormalizedText string

// Candidate is a substring of normalized text proposed as an identifier
type Candidate struct {
	Text    string   `json:"text"`
	Origins []string `json:"origins,omitempty"`
}

// LegacyCandidate is a candidate ranked by the integer heuristic
type LegacyCandidate struct {
	Candidate
	Score int `json:"score"`
}

// ConfidenceCandidate is a candidate ranked by the confidence detector
type ConfidenceCandidate struct {
	Candidate
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// RankedCandidate is the strategy-neutral view shared by both scorers
type RankedCandidate struct {
	Text    string
	Score   float64
	Reasons []string
}

// DetectionResult is the detailed outcome of seal resolution.
// Value is empty exactly when Reason is not ReasonDetected.
type DetectionResult struct {
	Value      string                `json:"value,omitempty"`
	Confidence float64               `json:"confidence"`
	Reason     ReasonCode            `json:"reason_code"`
	Candidates []ConfidenceCandidate `json:"candidates"`
}

// Found reports whether a seal value was detected
func (r DetectionResult) Found() bool {
	return r.Reason == ReasonDetected && r.Value != ""
}

// PlateResult is the detailed outcome of plate extraction
type PlateResult struct {
	Value string `json:"value,omitempty"`
	Valid bool   `json:"valid"`
}

// ContainerResult is the detailed outcome of container extraction
type ContainerResult struct {
	Value string `json:"value,omitempty"`
	Valid bool   `json:"valid"`
}
