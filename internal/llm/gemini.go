package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultGeminiModels se prueban en orden hasta que uno responda.
var DefaultGeminiModels = []string{"gemini-2.0-flash", "gemini-1.5-flash"}

const (
	geminiMaxAttempts  = 5
	geminiInitialWait  = 500 * time.Millisecond
	geminiMaxWait      = 8 * time.Second
	rateLimitWaitBoost = 2
)

// GeminiClient implementa Provider contra la API REST de Gemini.
type GeminiClient struct {
	baseURL string
	apiKey  string
	models  []string
	client  *http.Client
	logger  *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeminiClient construye el cliente. models vacio usa la lista por
// defecto.
func NewGeminiClient(apiKey string, models []string, logger *zap.Logger) *GeminiClient {
	if len(models) == 0 {
		models = DefaultGeminiModels
	}
	return &GeminiClient{
		baseURL: geminiBaseURL,
		apiKey:  apiKey,
		models:  models,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

// Generate intenta cada modelo de la lista con reintentos exponenciales.
// Los 429 y errores de cuota duplican la espera; los errores de API key
// cortan sin reintentar.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for _, model := range c.models {
		resp, err := c.generateWithRetry(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var pe *ProviderError
		if errors.As(err, &pe) && !pe.Retriable && pe.Status != 429 {
			// modelo inexistente u otro fallo permanente del modelo:
			// probar el siguiente de la lista salvo credenciales rotas
			if permanentMessage(pe.Err.Error()) && !strings.Contains(strings.ToLower(pe.Err.Error()), "not found") {
				return nil, err
			}
		}
		c.logger.Warn("gemini model failed, trying next",
			zap.String("model", model), zap.Error(err))
	}
	return nil, lastErr
}

func (c *GeminiClient) generateWithRetry(ctx context.Context, model string, req Request) (*Response, error) {
	wait := geminiInitialWait
	var lastErr error
	for attempt := 1; attempt <= geminiMaxAttempts; attempt++ {
		resp, err := c.call(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Retriable {
			return nil, err
		}
		if attempt == geminiMaxAttempts {
			break
		}

		sleep := wait
		if pe.IsRateLimited() {
			sleep = wait * rateLimitWaitBoost
		}
		if sleep > geminiMaxWait {
			sleep = geminiMaxWait
		}
		c.logger.Info("gemini retrying",
			zap.String("model", model), zap.Int("attempt", attempt),
			zap.Duration("wait", sleep), zap.Error(err))
		if err := c.sleep(ctx, sleep); err != nil {
			return nil, err
		}
		wait *= 2
	}
	return nil, lastErr
}

func (c *GeminiClient) call(ctx context.Context, model string, req Request) (*Response, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Retriable: true, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Retriable: true, Err: err}
	}

	if httpResp.StatusCode >= 400 {
		apiErr := fmt.Errorf("status=%d body=%s", httpResp.StatusCode, truncate(string(respBody), 300))
		retriable := httpResp.StatusCode == 429 || httpResp.StatusCode >= 500
		if permanentMessage(string(respBody)) {
			retriable = false
		}
		return nil, &ProviderError{Provider: "gemini", Status: httpResp.StatusCode, Retriable: retriable, Err: apiErr}
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, &ProviderError{Provider: "gemini", Retriable: false, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, &ProviderError{Provider: "gemini", Retriable: true, Err: fmt.Errorf("empty response")}
	}

	resp := &Response{
		Text:  gr.Candidates[0].Content.Parts[0].Text,
		Model: model,
	}
	if gr.UsageMetadata != nil {
		tokens := gr.UsageMetadata.TotalTokenCount
		resp.TokensUsed = &tokens
	}
	return resp, nil
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
