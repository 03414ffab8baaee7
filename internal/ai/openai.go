package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint,
// including hosted gateways that proxy other model families.
type OpenAIProvider struct {
	client      *openai.Client
	visionModel string
	textModel   string
}

func NewOpenAIProvider(apiKey, baseURL, visionModel, textModel string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		visionModel: visionModel,
		textModel:   textModel,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := openai.ChatCompletionRequest{Model: p.textModel}
	if prompt.Temperature != nil {
		req.Temperature = *prompt.Temperature
	}

	if prompt.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}

	if len(prompt.ImageURLs) == 0 {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt.User,
		})
	} else {
		req.Model = p.visionModel
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: prompt.User}}
		for _, u := range prompt.ImageURLs {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: u},
			})
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstreamError(p.Name(), openAIStatus(err), err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(p.Name(), "ok").Inc()

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
