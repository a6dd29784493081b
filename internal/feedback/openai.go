package feedback

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is a vision-capable chat model.
const DefaultModel = openai.GPT4oMini

const systemPrompt = "You are an encouraging drawing teacher. " +
	"Point out what works, then give two or three specific suggestions. " +
	"Keep the answer under 150 words."

// OpenAIClient asks an OpenAI-compatible chat completion endpoint to critique
// the drawing directly.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	opts      options
}

var _ Critic = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. An empty baseURL uses the public API and
// an empty model uses DefaultModel.
func NewOpenAIClient(apiKey, baseURL, model string, opts ...Option) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &Error{Kind: KindMissingCredentials}
	}
	o := buildOptions(opts)

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = o.httpClient

	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: 400,
		opts:      o,
	}, nil
}

// Critique implements Critic.
func (c *OpenAIClient) Critique(ctx context.Context, png []byte, fc Context) (string, error) {
	if len(png) == 0 {
		return "", &Error{Kind: KindImageEncoding, Err: fmt.Errorf("empty image")}
	}
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: fc.Prompt()},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	c.opts.logger.Debug("requesting critique", "model", c.model, "bytes", len(png))
	return c.opts.retry.Do(ctx, c.opts.logger, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", c.mapError(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return "", &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("no choices returned")}
		}
		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return "", &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("empty completion")}
		}
		return text, nil
	})
}

func (c *OpenAIClient) mapError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindHTTPStatus, Status: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &Error{Kind: KindHTTPStatus, Status: reqErr.HTTPStatusCode, Err: err}
	}
	return classify(ctx, err)
}
