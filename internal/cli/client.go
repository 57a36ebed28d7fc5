package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"logistics-ocr/internal/services"
)

// Client represents an HTTP client for the verification API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with a 30 second timeout
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 30*time.Second)
}

// NewClientWithTimeout creates a new API client. Scans wait on the OCR
// provider, so callers usually want a longer timeout than the default.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError represents an error from the API
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// doRequest performs an HTTP request and converts error responses to *APIError
func (c *Client) doRequest(method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			apiErr = APIError{
				Code:    resp.StatusCode,
				Message: resp.Status,
			}
		}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		return nil, &apiErr
	}

	return resp, nil
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.doRequest(http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// HealthCheck checks if the API server is healthy
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest(http.MethodGet, "/api/health", "", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Detect submits already transcribed text for verification
func (c *Client) Detect(kind services.DocumentKind, text string) (*services.Verification, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := c.doRequest(http.MethodPost, "/api/detect/"+url.PathEscape(string(kind)), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var verification services.Verification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &verification, nil
}

// Scan uploads an image for OCR and verification. refresh asks the server to
// ignore its cached transcription.
func (c *Client) Scan(kind services.DocumentKind, filename string, image []byte, refresh bool) (*services.Verification, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", http.DetectContentType(image))
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	path := "/api/scan/" + url.PathEscape(string(kind))
	if refresh {
		path += "?refresh=true"
	}
	resp, err := c.doRequest(http.MethodPost, path, mw.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var verification services.Verification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &verification, nil
}

// ListDetections returns recent verifications; an empty kind lists all kinds
func (c *Client) ListDetections(kind string, limit int) ([]services.Verification, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", kind)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/detections"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var verifications []services.Verification
	if err := c.getJSON(path, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}

// GetDetection returns one stored verification
func (c *Client) GetDetection(id string) (*services.Verification, error) {
	var verification services.Verification
	if err := c.getJSON("/api/detections/"+url.PathEscape(id), &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

// Usage returns the current month's OCR usage
func (c *Client) Usage() (*services.UsageReport, error) {
	var usage services.UsageReport
	if err := c.getJSON("/api/usage", &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}
