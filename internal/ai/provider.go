package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vladimiradmaev/farm-helper/internal/config"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
)

// Prompt is a single completion request.
type Prompt struct {
	System      string
	User        string
	ImageURLs   []string
	Temperature *float32
}

// Provider sends one prompt to a hosted model and returns its raw text.
// An empty string with a nil error means the model produced no content.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

const msgAIError = "AI API error"

// upstreamError labels a failed provider call by its HTTP status.
func upstreamError(provider string, status int, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		metrics.UpstreamRequestsTotal.WithLabelValues(provider, "rate_limited").Inc()
		return apperrors.NewUpstreamRateLimitError(err, provider, 0).WithContext("status", status)
	case http.StatusPaymentRequired:
		metrics.UpstreamRequestsTotal.WithLabelValues(provider, "billing").Inc()
		return apperrors.NewUpstreamBillingError(err, provider).WithContext("status", status)
	default:
		metrics.UpstreamRequestsTotal.WithLabelValues(provider, "error").Inc()
		return apperrors.NewExternalAPIError(err, provider, msgAIError).WithContext("status", status)
	}
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.VisionModel, cfg.TextModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai", "":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.VisionModel, cfg.TextModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
