package services

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/ai"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/storage"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
	"golang.org/x/sync/errgroup"
)

// DiseaseAnalyzer is satisfied by *ai.Gateway.
type DiseaseAnalyzer interface {
	AnalyzeDisease(ctx context.Context, imageURLs []string, cropType string) (*domain.DiagnosisResult, error)
}

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Upload is one image file received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

type DiseaseService struct {
	analyzer   DiseaseAnalyzer
	detections *repository.DetectionRepository
	store      storage.Store
	locator    storage.Locator
	maxBytes   int64
}

func NewDiseaseService(analyzer DiseaseAnalyzer, detections *repository.DetectionRepository, store storage.Store, locator storage.Locator, maxBytes int64) *DiseaseService {
	return &DiseaseService{
		analyzer:   analyzer,
		detections: detections,
		store:      store,
		locator:    locator,
		maxBytes:   maxBytes,
	}
}

// Analyze diagnoses the caller's uploaded images and records the result
// against the first image.
func (s *DiseaseService) Analyze(ctx context.Context, userID uuid.UUID, req validation.DiseaseRequest) (*domain.DiagnosisResult, error) {
	var invalid []apperrors.FieldError
	for i, url := range req.ImageURLs {
		if !s.locator.Owns(url, userID) {
			invalid = append(invalid, apperrors.FieldError{
				Field:   fmt.Sprintf("imageUrls[%d]", i),
				Message: "must be an image uploaded to your storage folder",
			})
		}
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("Invalid image URLs", invalid...)
	}

	result, err := s.analyzer.AnalyzeDisease(ctx, req.ImageURLs, req.CropType)
	if err != nil {
		return nil, err
	}

	detection := &database.DiseaseDetection{
		UserID:                  userID,
		ImageURL:                req.ImageURLs[0],
		CropType:                req.CropType,
		DetectedDisease:         result.DetectedDisease,
		ConfidenceScore:         result.ConfidenceScore,
		Symptoms:                result.Symptoms,
		TreatmentRecommendation: result.TreatmentRecommendation,
		PreventionMethods:       result.PreventionMethods,
	}
	if err := s.detections.Create(ctx, detection); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *DiseaseService) ListDetections(ctx context.Context, userID uuid.UUID) ([]database.DiseaseDetection, error) {
	return s.detections.List(ctx, userID)
}

// UploadImages stores 1 to 5 images concurrently and returns their public
// URLs in input order. Any failure fails the whole call; objects that were
// already written are left in place.
func (s *DiseaseService) UploadImages(ctx context.Context, userID uuid.UUID, files []Upload) ([]string, error) {
	if n := len(files); n < ai.MinDiseaseImages || n > ai.MaxDiseaseImages {
		return nil, apperrors.NewValidationError("Invalid upload", apperrors.FieldError{
			Field: "images", Message: "must contain between 1 and 5 images",
		})
	}

	keys := make([]string, len(files))
	types := make([]string, len(files))
	var invalid []apperrors.FieldError
	for i, f := range files {
		field := fmt.Sprintf("images[%d]", i)
		if int64(len(f.Data)) > s.maxBytes {
			invalid = append(invalid, apperrors.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d bytes", s.maxBytes)})
			continue
		}
		mt := mimetype.Detect(f.Data)
		if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
			invalid = append(invalid, apperrors.FieldError{Field: field, Message: "must be a JPEG, PNG or WebP image"})
			continue
		}
		keys[i] = storage.UserKey(userID, mt.Extension())
		types[i] = mt.String()
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("Invalid upload", invalid...)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			if err := s.store.Put(gctx, keys[i], types[i], files[i].Data); err != nil {
				return err
			}
			metrics.ImagesUploaded.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("Image upload failed", "user_id", userID, "error", err)
		return nil, err
	}

	urls := make([]string, len(keys))
	for i, key := range keys {
		urls[i] = s.locator.PublicURL(key)
	}
	return urls, nil
}
