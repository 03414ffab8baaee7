package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// GeminiProvider calls Google's Gemini models. Images are downloaded and sent
// inline because the API does not fetch arbitrary URLs.
type GeminiProvider struct {
	client      *genai.Client
	http        *resty.Client
	visionModel string
	textModel   string
}

func NewGeminiProvider(ctx context.Context, apiKey, visionModel, textModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		http:        resty.New().SetTimeout(30 * time.Second),
		visionModel: visionModel,
		textModel:   textModel,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	name := p.textModel
	if len(prompt.ImageURLs) > 0 {
		name = p.visionModel
	}
	model := p.client.GenerativeModel(name)
	if prompt.Temperature != nil {
		model.SetTemperature(*prompt.Temperature)
	}

	var parts []genai.Part
	if prompt.System != "" {
		parts = append(parts, genai.Text(prompt.System))
	}
	for _, u := range prompt.ImageURLs {
		blob, err := p.download(ctx, u)
		if err != nil {
			return "", err
		}
		parts = append(parts, blob)
	}
	parts = append(parts, genai.Text(prompt.User))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", upstreamError(p.Name(), geminiStatus(err), err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(p.Name(), "ok").Inc()

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func (p *GeminiProvider) download(ctx context.Context, url string) (genai.Blob, error) {
	resp, err := p.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("failed to download image: %w", err)
	}
	if resp.IsError() {
		return genai.Blob{}, fmt.Errorf("failed to download image: status %d", resp.StatusCode())
	}
	data := resp.Body()
	return genai.Blob{MIMEType: mimetype.Detect(data).String(), Data: data}, nil
}

// geminiStatus recovers an HTTP-equivalent status from REST or gRPC errors.
func geminiStatus(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return code
		}
		if st := apiErr.GRPCStatus(); st != nil && st.Code() == codes.ResourceExhausted {
			return http.StatusTooManyRequests
		}
	}
	return 0
}
