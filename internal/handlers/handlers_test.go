package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-ocr/internal/cache"
	"logistics-ocr/internal/database"
	"logistics-ocr/internal/ocr"
	"logistics-ocr/internal/services"
)

type stubConfig struct {
	limit int
}

func (c stubConfig) GetDisableQuota() bool           { return false }
func (c stubConfig) GetMonthlyOCRLimit() int         { return c.limit }
func (c stubConfig) GetConfidenceThreshold() float64 { return 0.7 }
func (c stubConfig) GetMaxImageDimension() int       { return 2048 }

type stubProvider struct {
	text  string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	p.calls++
	return p.text, p.err
}

type testEnv struct {
	router   http.Handler
	db       *database.DB
	verifier *services.Verifier
}

func setupTestEnv(t *testing.T, provider ocr.Provider, limit int) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cacheManager := cache.NewManager(db.OCRCache, false, time.Hour, nil)
	t.Cleanup(cacheManager.Close)

	verifier := services.NewVerifier(db, cacheManager, provider, stubConfig{limit: limit}, nil)
	verifications := NewVerificationHandler(verifier, 50, nil)
	dashboard := NewDashboardHandler(db, verifier, cacheManager, nil)
	health := NewHealthHandler(db, "stub", nil)

	r := chi.NewRouter()
	r.Get("/api/health", health.HealthCheck)
	r.Get("/api/stats", dashboard.GetStats)
	r.Post("/api/detect/{kind}", verifications.Detect)
	r.Post("/api/scan/{kind}", verifications.Scan)
	r.Get("/api/detections", verifications.ListDetections)
	r.Get("/api/detections/{id}", verifications.GetDetection)
	r.Get("/api/usage", verifications.GetUsage)
	r.Get("/api/validate/container/{code}", verifications.ValidateContainer)

	return &testEnv{router: r, db: db, verifier: verifier}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func detectRequest(kind, text string) *http.Request {
	body, _ := json.Marshal(DetectRequest{Text: text})
	req := httptest.NewRequest(http.MethodPost, "/api/detect/"+kind, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func scanRequest(t *testing.T, kind string, image []byte, contentType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="seal.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/scan/"+kind, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Pix[0] = seed
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestDetect(t *testing.T) {
	env := setupTestEnv(t, nil, 10)

	t.Run("seal", func(t *testing.T) {
		w := env.do(t, detectRequest("seal", "PRECINTO TDM-388-16"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		v := decode[services.Verification](t, w)
		assert.Equal(t, "TDM38816", v.Value)
		assert.True(t, v.Valid)
		assert.Equal(t, "detectado", v.ReasonCode)
		assert.Equal(t, services.SourceText, v.Source)
	})

	t.Run("plate", func(t *testing.T) {
		w := env.do(t, detectRequest("plate", "placa abc-123"))
		require.Equal(t, http.StatusOK, w.Code)
		v := decode[services.Verification](t, w)
		assert.Equal(t, "ABC123", v.Value)
	})

	t.Run("empty seal text", func(t *testing.T) {
		w := env.do(t, detectRequest("seal", "   "))
		require.Equal(t, http.StatusOK, w.Code)
		v := decode[services.Verification](t, w)
		assert.Empty(t, v.Value)
		assert.False(t, v.Valid)
		assert.Equal(t, "texto_vacio", v.ReasonCode)
	})

	t.Run("unknown kind", func(t *testing.T) {
		w := env.do(t, detectRequest("invoice", "x"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/detect/seal", strings.NewReader("{"))
		w := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestScan(t *testing.T) {
	t.Run("success then cached", func(t *testing.T) {
		env := setupTestEnv(t, &stubProvider{text: "SELLO QW12345"}, 10)
		img := pngBytes(t, 1)

		w := env.do(t, scanRequest(t, "seal", img, "image/png"))
		require.Equal(t, http.StatusOK, w.Code)
		v := decode[services.Verification](t, w)
		assert.Equal(t, "QW12345", v.Value)
		assert.Equal(t, services.SourceOCR, v.Source)

		w = env.do(t, scanRequest(t, "seal", img, "image/png"))
		require.Equal(t, http.StatusOK, w.Code)
		v = decode[services.Verification](t, w)
		assert.Equal(t, services.SourceCache, v.Source)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name     string
			provider ocr.Provider
			limit    int
			kind     string
			image    []byte
			mime     string
			expected int
		}{
			{name: "unknown kind", provider: &stubProvider{}, limit: 10, kind: "invoice", image: pngBytes(t, 1), mime: "image/png", expected: http.StatusNotFound},
			{name: "unsupported image", provider: &stubProvider{}, limit: 10, kind: "seal", image: []byte("%PDF-1.4"), mime: "application/pdf", expected: http.StatusBadRequest},
			{name: "provider failure", provider: &stubProvider{err: errors.New("boom")}, limit: 10, kind: "seal", image: pngBytes(t, 2), mime: "image/png", expected: http.StatusBadGateway},
			{name: "no provider", provider: nil, limit: 10, kind: "seal", image: pngBytes(t, 3), mime: "image/png", expected: http.StatusServiceUnavailable},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := setupTestEnv(t, tt.provider, tt.limit)
				w := env.do(t, scanRequest(t, tt.kind, tt.image, tt.mime))
				assert.Equal(t, tt.expected, w.Code)
			})
		}
	})

	t.Run("quota exceeded", func(t *testing.T) {
		env := setupTestEnv(t, &stubProvider{text: "PLACA ABC123"}, 1)

		w := env.do(t, scanRequest(t, "plate", pngBytes(t, 1), "image/png"))
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, scanRequest(t, "plate", pngBytes(t, 2), "image/png"))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("refresh bypasses cache", func(t *testing.T) {
		provider := &stubProvider{text: "SELLO QW12345"}
		env := setupTestEnv(t, provider, 10)
		img := pngBytes(t, 4)

		w := env.do(t, scanRequest(t, "seal", img, "image/png"))
		require.Equal(t, http.StatusOK, w.Code)

		req := scanRequest(t, "seal", img, "image/png")
		req.URL.RawQuery = "refresh=true"
		w = env.do(t, req)
		require.Equal(t, http.StatusOK, w.Code)
		v := decode[services.Verification](t, w)
		assert.Equal(t, services.SourceOCR, v.Source)
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("upload too large", func(t *testing.T) {
		provider := &stubProvider{text: "SELLO QW12345"}
		env := setupTestEnv(t, provider, 10)
		img := append(pngBytes(t, 1), make([]byte, MaxUploadSize)...)

		w := env.do(t, scanRequest(t, "seal", img, "image/png"))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "10 MiB")
		assert.Zero(t, provider.calls)
	})

	t.Run("missing image field", func(t *testing.T) {
		env := setupTestEnv(t, &stubProvider{}, 10)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("note", "no file"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/scan/seal", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		env := setupTestEnv(t, &stubProvider{}, 10)
		req := httptest.NewRequest(http.MethodPost, "/api/scan/seal", strings.NewReader("raw"))
		w := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDetections(t *testing.T) {
	env := setupTestEnv(t, nil, 10)

	first := decode[services.Verification](t, env.do(t, detectRequest("seal", "SELLO XY98765")))
	env.do(t, detectRequest("plate", "ABC123"))
	env.do(t, detectRequest("container", "CSQU3054383"))

	t.Run("list all", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]services.Verification](t, w), 3)
	})

	t.Run("filter and limit", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections?kind=seal&limit=5", nil))
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]services.Verification](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, "XY98765", list[0].Value)

		w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections?limit=1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]services.Verification](t, w), 1)
	})

	t.Run("bad query", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections?limit=zero", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections?kind=invoice", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections/"+first.ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, first.ID, decode[services.Verification](t, w).ID)

		w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/detections/42", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("stats", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode[DashboardStats](t, w)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, map[string]int{"plate": 1, "container": 1, "seal": 1}, stats.Detections)
		assert.Equal(t, 10, stats.Usage.Limit)
	})
}

func TestUsage(t *testing.T) {
	env := setupTestEnv(t, &stubProvider{text: "x"}, 5)
	env.do(t, scanRequest(t, "seal", pngBytes(t, 1), "image/png"))

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	require.Equal(t, http.StatusOK, w.Code)

	usage := decode[services.UsageReport](t, w)
	assert.Equal(t, 1, usage.Used)
	assert.Equal(t, 5, usage.Limit)
	assert.Equal(t, 4, usage.Remaining)
	assert.Equal(t, database.MonthKey(time.Now()), usage.Month)
}

func TestValidateContainer(t *testing.T) {
	env := setupTestEnv(t, nil, 10)

	tests := map[string]bool{
		"CSQU3054383": true,
		"csqu3054383": true,
		"CSQU3054384": false,
		"CSQU305438":  false,
	}
	for code, valid := range tests {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/validate/container/"+code, nil))
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ContainerValidation](t, w)
		assert.Equal(t, strings.ToUpper(code), resp.Code)
		assert.Equal(t, valid, resp.Valid, code)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := setupTestEnv(t, nil, 10)
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Database)
		assert.Equal(t, "stub", resp.OCR)
	})

	t.Run("unhealthy database", func(t *testing.T) {
		env := setupTestEnv(t, nil, 10)
		env.db.Close()

		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode[HealthResponse](t, w).Status)
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		db, err := database.Open(filepath.Join(t.TempDir(), "health.db"))
		require.NoError(t, err)
		defer db.Close()

		w := httptest.NewRecorder()
		NewHealthHandler(db, "", nil).HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, "unconfigured", decode[HealthResponse](t, w).OCR)
	})
}
