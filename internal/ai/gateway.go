// Package ai wraps hosted vision and language models and normalizes their
// free-form output into fixed result shapes.
package ai

import (
	"context"
	"encoding/json"
	"sort"
	"unicode/utf8"

	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
)

const (
	MinDiseaseImages = 1
	MaxDiseaseImages = 5

	planTemperature = float32(0.7)
)

// Fallback texts used when the model does not answer with the requested JSON.
const (
	FallbackDisease         = "Analysis completed"
	fallbackNoJSONTreatment = "Please consult with a local agricultural expert for specific treatment recommendations."
	fallbackNoJSONPrevent   = "Maintain proper plant spacing, ensure good drainage, and monitor regularly for early signs of disease."
	fallbackBadJSONSymptoms = "Image analysis completed. Please review the recommendations."
	fallbackBadJSONPrevent  = "Follow standard agricultural best practices for this crop type."
)

// PlanInput describes the crop a cultivation plan is generated for. Dates are
// YYYY-MM-DD and must already be validated.
type PlanInput struct {
	CropName            string
	Variety             string
	PlantingDate        string
	ExpectedHarvestDate string
	SoilType            string
	Location            string
}

type Gateway struct {
	provider Provider
}

func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// AnalyzeDisease sends all images in one multimodal request. Output that is
// not the requested JSON object degrades to a synthesized result rather than
// an error. The upstream call is not cancelled when ctx is.
func (g *Gateway) AnalyzeDisease(ctx context.Context, imageURLs []string, cropType string) (*domain.DiagnosisResult, error) {
	if n := len(imageURLs); n < MinDiseaseImages || n > MaxDiseaseImages {
		return nil, apperrors.NewValidationError("Invalid request", apperrors.FieldError{
			Field: "imageUrls", Message: "must contain between 1 and 5 images",
		})
	}

	content, err := g.provider.Complete(context.WithoutCancel(ctx), Prompt{
		User:      diseasePrompt(cropType, len(imageURLs)),
		ImageURLs: imageURLs,
	})
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apperrors.NewExternalAPIError(nil, g.provider.Name(), "No analysis result from AI")
	}

	result, fallback := parseDiagnosis(content)
	if fallback != "" {
		metrics.DiseaseParseFallbacks.WithLabelValues(fallback).Inc()
		logger.FromContext(ctx).Warn("Disease analysis fell back to synthesized result",
			"kind", fallback, "raw_response", truncateRunes(content, 500))
	}
	return result, nil
}

// parseDiagnosis returns the parsed result and, when it had to synthesize one,
// which fallback was used ("no_json" or "invalid_json").
func parseDiagnosis(content string) (*domain.DiagnosisResult, string) {
	raw := extractJSON(content)
	if raw == "" {
		return &domain.DiagnosisResult{
			DetectedDisease:         FallbackDisease,
			ConfidenceScore:         75,
			Symptoms:                truncateRunes(content, 200),
			TreatmentRecommendation: fallbackNoJSONTreatment,
			PreventionMethods:       fallbackNoJSONPrevent,
		}, "no_json"
	}

	var parsed struct {
		DetectedDisease         string `json:"detectedDisease"`
		ConfidenceScore         score  `json:"confidenceScore"`
		Symptoms                string `json:"symptoms"`
		TreatmentRecommendation string `json:"treatmentRecommendation"`
		PreventionMethods       string `json:"preventionMethods"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		treatment := content
		if utf8.RuneCountInString(content) > 100 {
			treatment = truncateRunes(content, 200) + "..."
		}
		return &domain.DiagnosisResult{
			DetectedDisease:         FallbackDisease,
			ConfidenceScore:         70,
			Symptoms:                fallbackBadJSONSymptoms,
			TreatmentRecommendation: treatment,
			PreventionMethods:       fallbackBadJSONPrevent,
		}, "invalid_json"
	}

	return &domain.DiagnosisResult{
		DetectedDisease:         parsed.DetectedDisease,
		ConfidenceScore:         clamp(float64(parsed.ConfidenceScore), 0, 100),
		Symptoms:                parsed.Symptoms,
		TreatmentRecommendation: parsed.TreatmentRecommendation,
		PreventionMethods:       parsed.PreventionMethods,
	}, ""
}

// GenerateCultivationPlan asks for a JSON array of activities. Unlike disease
// analysis there is no fallback: output without a parseable array is an error.
func (g *Gateway) GenerateCultivationPlan(ctx context.Context, in PlanInput) ([]domain.PlanActivity, error) {
	temperature := planTemperature
	content, err := g.provider.Complete(context.WithoutCancel(ctx), Prompt{
		System:      planSystemPrompt,
		User:        planUserPrompt(in),
		Temperature: &temperature,
	})
	if err != nil {
		return nil, err
	}
	return parsePlan(content)
}

func parsePlan(content string) ([]domain.PlanActivity, error) {
	raw := extractArray(content)
	if raw == "" {
		return nil, apperrors.NewParseError(nil, "Failed to parse AI response")
	}

	var plan []domain.PlanActivity
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, apperrors.NewParseError(err, "Failed to parse AI response")
	}
	for i := range plan {
		if plan[i].RequiredResources == nil {
			plan[i].RequiredResources = []string{}
		}
	}
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].DayNumber < plan[j].DayNumber })
	return plan, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
