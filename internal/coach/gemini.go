package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GeminiConfig holds the generative-model call parameters.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// DefaultGeminiConfig returns the fixed generation configuration the coach
// ships with.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		Timeout:         60 * time.Second,
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.9,
		MaxOutputTokens: 1500,
	}
}

// GeminiClient calls the generateContent endpoint. Each Generate is a
// single attempt; callers surface failures as a diagnostic turn instead of
// retrying.
type GeminiClient struct {
	config     GeminiConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewGeminiClient creates a client with the given config. Unset fields are
// backfilled from the defaults; set fields are kept. A nil logger is
// replaced with a nop logger.
func NewGeminiClient(config GeminiConfig, log *zap.Logger) *GeminiClient {
	defaults := DefaultGeminiConfig(config.APIKey)
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Temperature == 0 {
		config.Temperature = defaults.Temperature
	}
	if config.TopK == 0 {
		config.TopK = defaults.TopK
	}
	if config.TopP == 0 {
		config.TopP = defaults.TopP
	}
	if config.MaxOutputTokens == 0 {
		config.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
	}
}

// Configured reports whether an API key is present.
func (c *GeminiClient) Configured() bool {
	return strings.TrimSpace(c.config.APIKey) != ""
}

// Generate sends the assembled prompt and returns the candidate text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("API key not configured")
	}

	start := time.Now()
	c.log.Debug("generate request", zap.String("model", c.config.Model), zap.Int("prompt_len", len(prompt)))

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     c.config.Temperature,
			TopK:            c.config.TopK,
			TopP:            c.config.TopP,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
		SafetySettings: defaultSafetySettings(),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, c.config.Model, neturl.QueryEscape(c.config.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("generate failed", zap.Int("status", resp.StatusCode))
		return "", statusError(resp.StatusCode, body)
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		// Absent candidates usually mean the response was safety-blocked.
		return "", fmt.Errorf("no completion returned")
	}

	var result strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	response := strings.TrimSpace(result.String())

	c.log.Debug("generate completed",
		zap.Duration("elapsed", time.Since(start)), zap.Int("response_len", len(response)))
	return response, nil
}

// statusError converts a non-200 generateContent status into a user-facing
// diagnosis. The classification mirrors the backend gateway taxonomy.
func statusError(status int, body []byte) error {
	switch status {
	case http.StatusForbidden:
		return fmt.Errorf("assistant is misconfigured, check the API key (status 403)")
	case http.StatusTooManyRequests:
		return fmt.Errorf("query limit reached, try again in a moment (status 429)")
	case http.StatusBadRequest:
		return fmt.Errorf("request was rejected, try rephrasing your question (status 400)")
	default:
		return fmt.Errorf("API request failed with status %d: %s", status, strings.TrimSpace(string(body)))
	}
}
