package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"
	geminiAttempts     = 3
	geminiBackoff      = 300 * time.Millisecond
)

const transcriptionPrompt = `Transcribe every piece of text visible in this photo exactly as printed.
Keep line breaks, letters, digits, dashes and spaces. Do not correct, translate,
summarize or explain anything. If there is no readable text, answer with an empty response.`

// contentGenerator is the part of *genai.GenerativeModel the provider uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider transcribes images with a Gemini multimodal model
type GeminiProvider struct {
	apiKey  string
	model   string
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
}

// NewGeminiProvider creates a Gemini provider. An empty model selects
// gemini-1.5-flash; a zero timeout disables the per-call deadline.
func NewGeminiProvider(apiKey, model string, timeout time.Duration, logger *slog.Logger) *GeminiProvider {
	if logger == nil {
		logger = slog.Default()
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		timeout: timeout,
		backoff: geminiBackoff,
		logger:  logger,
	}
}

// Name returns the provider name
func (g *GeminiProvider) Name() string { return "gemini" }

// Model returns the configured model name
func (g *GeminiProvider) Model() string { return g.model }

// ExtractText sends the image to Gemini and returns the transcription
func (g *GeminiProvider) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: gemini client: %v", ErrExtractionFailed, err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "text/plain",
	}

	parts := []genai.Part{
		genai.Text(transcriptionPrompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	}

	return g.generate(ctx, model, parts)
}

// generate calls the model with linear backoff between attempts
func (g *GeminiProvider) generate(ctx context.Context, model contentGenerator, parts []genai.Part) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= geminiAttempts; attempt++ {
		resp, err := model.GenerateContent(ctx, parts...)
		if err == nil {
			if text := strings.TrimSpace(firstText(resp)); text != "" {
				return text, nil
			}
			err = fmt.Errorf("empty response")
		}

		lastErr = err
		g.logger.Warn("Gemini extraction attempt failed",
			"attempt", attempt,
			"model", g.model,
			"error", err)

		if attempt == geminiAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * g.backoff):
		}
	}

	return "", fmt.Errorf("%w: gemini: %v", ErrExtractionFailed, lastErr)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
