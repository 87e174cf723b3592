package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implementa Provider sobre la API de chat completions como
// respaldo cuando Gemini no esta disponible.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &ProviderError{Provider: c.Name(), Retriable: true, Err: errEmptyCompletion}
	}

	tokens := resp.Usage.TotalTokens
	return &Response{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: &tokens,
	}, nil
}

func (c *OpenAIClient) wrapError(err error) error {
	msg := err.Error()
	pe := &ProviderError{Provider: c.Name(), Err: err}
	switch {
	case permanentMessage(msg):
		pe.Retriable = false
	case retriableMessage(msg):
		pe.Retriable = true
	}
	if apiErr, ok := err.(*openai.APIError); ok {
		pe.Status = apiErr.HTTPStatusCode
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			pe.Retriable = true
		}
	}
	return pe
}
