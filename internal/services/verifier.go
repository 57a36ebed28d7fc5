package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"logistics-ocr/internal/cache"
	"logistics-ocr/internal/database"
	"logistics-ocr/internal/metrics"
	"logistics-ocr/internal/ocr"
	"logistics-ocr/internal/parser"
	"logistics-ocr/internal/ratelimit"
)

var (
	// ErrUnknownKind is returned for a document kind other than plate, container or seal
	ErrUnknownKind = errors.New("unknown document kind")

	// ErrQuotaExceeded is returned when the monthly OCR quota is used up
	ErrQuotaExceeded = errors.New("monthly OCR quota exceeded")

	// ErrProviderUnavailable is returned for image requests when no OCR provider is configured
	ErrProviderUnavailable = errors.New("OCR provider not configured")

	// ErrNotFound is returned when a stored verification does not exist
	ErrNotFound = errors.New("verification not found")
)

// DocumentKind names the identifier being verified
type DocumentKind string

const (
	KindPlate     DocumentKind = "plate"
	KindContainer DocumentKind = "container"
	KindSeal      DocumentKind = "seal"
)

// Kinds lists every supported document kind
var Kinds = []DocumentKind{KindPlate, KindContainer, KindSeal}

// ParseKind validates a document kind name
func ParseKind(s string) (DocumentKind, error) {
	kind := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	switch kind {
	case KindPlate, KindContainer, KindSeal:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Source records where the verified text came from
type Source string

const (
	SourceText  Source = "text"
	SourceOCR   Source = "ocr"
	SourceCache Source = "cache"
)

// Verification is the outcome of verifying one document
type Verification struct {
	ID         uuid.UUID                    `json:"id"`
	Kind       DocumentKind                 `json:"kind"`
	Value      string                       `json:"value"`
	Valid      bool                         `json:"valid"`
	Confidence float64                      `json:"confidence"`
	ReasonCode string                       `json:"reason_code,omitempty"`
	Candidates []parser.ConfidenceCandidate `json:"candidates,omitempty"`
	RawText    string                       `json:"raw_text"`
	Source     Source                       `json:"source"`
	CreatedAt  time.Time                    `json:"created_at"`
}

// UsageReport describes OCR consumption for the current month
type UsageReport struct {
	Month     string `json:"month"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`     // 0 when unlimited
	Remaining int    `json:"remaining"` // -1 when unlimited
	Disabled  bool   `json:"quota_disabled"`
}

// Config is the configuration the verifier needs
type Config interface {
	ratelimit.Config
	GetConfidenceThreshold() float64
	GetMaxImageDimension() int
}

// Verifier runs identifier detection over text or images and records the outcome
type Verifier struct {
	detections *database.DetectionStore
	usage      *database.UsageStore
	cache      *cache.Manager
	provider   ocr.Provider
	config     Config
	resolver   *parser.SealResolver
	logger     *slog.Logger
	now        func() time.Time
}

// NewVerifier creates a verifier. provider may be nil, in which case image
// verification only succeeds for cached images.
func NewVerifier(
	db *database.DB,
	cacheManager *cache.Manager,
	provider ocr.Provider,
	config Config,
	logger *slog.Logger,
) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		detections: db.Detections,
		usage:      db.Usage,
		cache:      cacheManager,
		provider:   provider,
		config:     config,
		resolver:   parser.NewSealResolver(config.GetConfidenceThreshold()),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// VerifyText detects the identifier of the given kind in already transcribed text
func (v *Verifier) VerifyText(ctx context.Context, kind DocumentKind, text string) (*Verification, error) {
	return v.verify(ctx, kind, text, SourceText)
}

// VerifyImage transcribes an image and detects the identifier of the given kind.
// The provider is only called on an OCR cache miss and within the monthly quota.
func (v *Verifier) VerifyImage(ctx context.Context, kind DocumentKind, image []byte, mimeType string) (*Verification, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	mimeType, err := ocr.DetectMIMEType(image, mimeType)
	if err != nil {
		return nil, err
	}
	metrics.ObserveUploadSize(len(image))

	hash := imageHash(image)

	text, cached, err := v.cache.Get(hash)
	if err != nil {
		// A broken cache only costs a provider call
		v.logger.Warn("OCR cache lookup failed", "hash", hash, "error", err)
	}
	if cached {
		metrics.RecordOCRRequest(v.providerName(), "cached")
		return v.verify(ctx, kind, text, SourceCache)
	}

	text, err = v.extract(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Set(hash, text, v.provider.Name()); err != nil {
		v.logger.Warn("Failed to cache OCR text", "hash", hash, "error", err)
	}

	return v.verify(ctx, kind, text, SourceOCR)
}

// RescanImage drops any cached transcription of the image before verifying
// it, so the provider is asked again
func (v *Verifier) RescanImage(ctx context.Context, kind DocumentKind, image []byte, mimeType string) (*Verification, error) {
	hash := imageHash(image)
	if err := v.cache.Delete(hash); err != nil {
		v.logger.Warn("Failed to invalidate OCR cache entry", "hash", hash, "error", err)
	}
	return v.VerifyImage(ctx, kind, image, mimeType)
}

// extract checks the quota, calls the provider and records usage
func (v *Verifier) extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	if v.provider == nil {
		return "", ErrProviderUnavailable
	}
	name := v.provider.Name()

	month := database.MonthKey(v.now())
	used, err := v.usage.Get(month)
	if err != nil {
		return "", fmt.Errorf("failed to read OCR usage: %w", err)
	}

	if quota := ratelimit.CheckMonthlyQuota(v.config, used); quota.ShouldBlock {
		metrics.RecordOCRRequest(name, "quota_exceeded")
		v.logger.Warn("Monthly OCR quota exceeded",
			"month", month,
			"used", used,
			"limit", v.config.GetMonthlyOCRLimit())
		return "", ErrQuotaExceeded
	}

	data, mimeType, err := ocr.Preprocess(image, mimeType, v.config.GetMaxImageDimension())
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := v.provider.ExtractText(ctx, data, mimeType)
	metrics.ObserveOCRDuration(name, time.Since(start))

	// The provider bills every request, successful or not
	if _, incErr := v.usage.Increment(month); incErr != nil {
		v.logger.Error("Failed to record OCR usage", "month", month, "error", incErr)
	}

	if err != nil {
		metrics.RecordOCRRequest(name, "error")
		v.logger.Error("OCR extraction failed", "provider", name, "error", err)
		if errors.Is(err, ocr.ErrInvalidImage) || errors.Is(err, ocr.ErrExtractionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ocr.ErrExtractionFailed, err)
	}

	metrics.RecordOCRRequest(name, "success")
	return text, nil
}

// Evaluate runs the detector for the kind over text without persisting anything.
// A nil resolver uses the default confidence threshold.
func Evaluate(kind DocumentKind, text string, resolver *parser.SealResolver) (*Verification, error) {
	kind, err := ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = parser.NewSealResolver(0)
	}

	result := &Verification{Kind: kind, RawText: text, Source: SourceText}

	switch kind {
	case KindPlate:
		plate := parser.ExtractPlate(text)
		result.Value = plate.Value
		result.Valid = plate.Valid
		result.Confidence = structuralConfidence(plate.Valid)
	case KindContainer:
		container := parser.ExtractContainerResult(text)
		result.Value = container.Value
		result.Valid = container.Valid
		result.Confidence = structuralConfidence(container.Valid)
	case KindSeal:
		seal := resolver.Describe(text)
		result.Value = seal.Value
		result.Valid = seal.Found()
		result.Confidence = seal.Confidence
		result.ReasonCode = string(seal.Reason)
		result.Candidates = seal.Candidates
	}

	return result, nil
}

// verify evaluates the text and persists the result
func (v *Verifier) verify(ctx context.Context, kind DocumentKind, text string, source Source) (*Verification, error) {
	result, err := Evaluate(kind, text, v.resolver)
	if err != nil {
		return nil, err
	}
	kind = result.Kind
	result.ID = uuid.New()
	result.Source = source
	result.CreatedAt = v.now()

	metrics.RecordDetection(string(kind), outcomeLabel(result))

	if err := v.record(ctx, result); err != nil {
		return nil, err
	}

	v.logger.Info("Verified document",
		"id", result.ID,
		"kind", kind,
		"value", result.Value,
		"valid", result.Valid,
		"source", source)

	return result, nil
}

func (v *Verifier) record(ctx context.Context, result *Verification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	candidates := result.Candidates
	if candidates == nil {
		candidates = []parser.ConfidenceCandidate{}
	}
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	detection := &database.Detection{
		ID:         result.ID.String(),
		Kind:       string(result.Kind),
		Value:      result.Value,
		Valid:      result.Valid,
		Confidence: result.Confidence,
		ReasonCode: result.ReasonCode,
		Candidates: string(encoded),
		RawText:    result.RawText,
		Source:     string(result.Source),
		CreatedAt:  result.CreatedAt,
	}

	if err := v.detections.Create(detection); err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}
	return nil
}

// Get returns a stored verification by ID
func (v *Verifier) Get(id string) (*Verification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	detection, err := v.detections.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	return fromDetection(*detection)
}

// List returns recent verifications, newest first. An empty kind lists all kinds.
func (v *Verifier) List(kind string, limit int) ([]Verification, error) {
	if kind != "" {
		parsed, err := ParseKind(kind)
		if err != nil {
			return nil, err
		}
		kind = string(parsed)
	}

	detections, err := v.detections.List(kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}

	verifications := make([]Verification, 0, len(detections))
	for _, d := range detections {
		verification, err := fromDetection(d)
		if err != nil {
			return nil, err
		}
		verifications = append(verifications, *verification)
	}
	return verifications, nil
}

// Usage reports OCR consumption for the current month
func (v *Verifier) Usage() (*UsageReport, error) {
	month := database.MonthKey(v.now())
	used, err := v.usage.Get(month)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR usage: %w", err)
	}

	quota := ratelimit.CheckMonthlyQuota(v.config, used)
	limit := v.config.GetMonthlyOCRLimit()
	if limit < 0 {
		limit = 0
	}

	return &UsageReport{
		Month:     month,
		Used:      used,
		Limit:     limit,
		Remaining: quota.Remaining,
		Disabled:  v.config.GetDisableQuota(),
	}, nil
}

func (v *Verifier) providerName() string {
	if v.provider == nil {
		return "none"
	}
	return v.provider.Name()
}

func fromDetection(d database.Detection) (*Verification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("stored verification has invalid ID %q: %w", d.ID, err)
	}

	var candidates []parser.ConfidenceCandidate
	if d.Candidates != "" {
		if err := json.Unmarshal([]byte(d.Candidates), &candidates); err != nil {
			return nil, fmt.Errorf("failed to decode candidates for %s: %w", d.ID, err)
		}
	}
	if len(candidates) == 0 {
		candidates = nil
	}

	return &Verification{
		ID:         id,
		Kind:       DocumentKind(d.Kind),
		Value:      d.Value,
		Valid:      d.Valid,
		Confidence: d.Confidence,
		ReasonCode: d.ReasonCode,
		Candidates: candidates,
		RawText:    d.RawText,
		Source:     Source(d.Source),
		CreatedAt:  d.CreatedAt,
	}, nil
}

func structuralConfidence(valid bool) float64 {
	if valid {
		return 1.0
	}
	return 0.0
}

// outcomeLabel is the metric reason: the seal reason code, or valid/invalid
func outcomeLabel(result *Verification) string {
	if result.ReasonCode != "" {
		return result.ReasonCode
	}
	if result.Valid {
		return "valid"
	}
	return "invalid"
}

func imageHash(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
