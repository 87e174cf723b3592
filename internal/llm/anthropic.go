package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

var errEmptyCompletion = errors.New("empty completion")

// AnthropicClient implementa Provider sobre la API de messages, ultimo
// eslabon de la cadena de proveedores.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaude3Dot5HaikuLatest
	}
	return &AnthropicClient{client: anthropic.NewClient(apiKey), model: m}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: c.model,
		MultiSystem: []anthropic.MessageSystemPart{
			{Type: "text", Text: req.System},
		},
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
		MaxTokens:   maxTokens,
		Temperature: &req.Temperature,
	})
	if err != nil {
		return nil, c.wrapError(err)
	}
	text := resp.GetFirstContentText()
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Provider: c.Name(), Retriable: true, Err: errEmptyCompletion}
	}

	tokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	return &Response{
		Text:       text,
		Model:      string(resp.Model),
		TokensUsed: &tokens,
	}, nil
}

func (c *AnthropicClient) wrapError(err error) error {
	pe := &ProviderError{Provider: c.Name(), Err: err}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		pe.Retriable = apiErr.IsRateLimitErr() || apiErr.IsApiErr()
		if apiErr.IsRateLimitErr() {
			pe.Status = 429
		}
		return pe
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		pe.Status = reqErr.StatusCode
		pe.Retriable = reqErr.StatusCode == 429 || reqErr.StatusCode >= 500
		return pe
	}
	pe.Retriable = retriableMessage(err.Error()) && !permanentMessage(err.Error())
	return pe
}
