package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"logistics-ocr/internal/ocr"
	"logistics-ocr/internal/parser"
	"logistics-ocr/internal/services"
)

// MaxUploadSize bounds a scan request body
const MaxUploadSize = 10 << 20

// maxTextSize bounds a detect request body
const maxTextSize = 1 << 20

// VerificationHandler serves detection, scan and history endpoints
type VerificationHandler struct {
	verifier     *services.Verifier
	historyLimit int
	logger       *slog.Logger
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verifier *services.Verifier, historyLimit int, logger *slog.Logger) *VerificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &VerificationHandler{
		verifier:     verifier,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// DetectRequest is the body of POST /api/detect/{kind}
type DetectRequest struct {
	Text string `json:"text"`
}

// ContainerValidation is the response of GET /api/validate/container/{code}
type ContainerValidation struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`
}

// Detect handles POST /api/detect/{kind}
func (h *VerificationHandler) Detect(w http.ResponseWriter, r *http.Request) {
	kind, err := services.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTextSize)).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in detect request", "kind", kind, "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	verification, err := h.verifier.VerifyText(r.Context(), kind, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verification)
}

// Scan handles POST /api/scan/{kind} with a multipart "image" field.
// refresh=true bypasses the OCR cache.
func (h *VerificationHandler) Scan(w http.ResponseWriter, r *http.Request) {
	kind, err := services.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds 10 MiB")
			return
		}
		writeError(w, http.StatusBadRequest, "Expected multipart form with an image field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	h.logger.Debug("Scanning image",
		"kind", kind,
		"filename", header.Filename,
		"size", len(image),
		"refresh", refresh)

	scan := h.verifier.VerifyImage
	if refresh {
		scan = h.verifier.RescanImage
	}
	verification, err := scan(r.Context(), kind, image, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verification)
}

// ListDetections handles GET /api/detections?kind=&limit=
func (h *VerificationHandler) ListDetections(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	kind := r.URL.Query().Get("kind")
	verifications, err := h.verifier.List(kind, limit)
	if err != nil {
		if errors.Is(err, services.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifications)
}

// GetDetection handles GET /api/detections/{id}
func (h *VerificationHandler) GetDetection(w http.ResponseWriter, r *http.Request) {
	verification, err := h.verifier.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verification)
}

// GetUsage handles GET /api/usage
func (h *VerificationHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.verifier.Usage()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}

// ValidateContainer handles GET /api/validate/container/{code}
func (h *VerificationHandler) ValidateContainer(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	writeJSON(w, http.StatusOK, ContainerValidation{
		Code:  code,
		Valid: parser.ValidateISO6346(code),
	})
}

// writeServiceError maps verifier errors to HTTP statuses
func (h *VerificationHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownKind), errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ocr.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ocr.ErrExtractionFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, services.ErrProviderUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("Verification request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
