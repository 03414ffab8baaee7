package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/export"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
)

type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

// Table loads one of the user's datasets.
func (s *ExportService) Table(ctx context.Context, userID uuid.UUID, dataset string) (export.Table, error) {
	switch dataset {
	case export.DatasetSoilTests:
		rows, err := s.repos.SoilTests.List(ctx, userID)
		return export.SoilTests(rows), err
	case export.DatasetTasks:
		rows, err := s.repos.Tasks.List(ctx, userID)
		return export.Tasks(rows), err
	case export.DatasetDetections:
		rows, err := s.repos.Detections.List(ctx, userID)
		return export.Detections(rows), err
	case export.DatasetCrops:
		rows, err := s.repos.Crops.List(ctx, userID)
		return export.Crops(rows), err
	default:
		return export.Table{}, apperrors.NewNotFoundError("Dataset")
	}
}

func (s *ExportService) Write(ctx context.Context, w io.Writer, userID uuid.UUID, dataset string, format export.Format) error {
	table, err := s.Table(ctx, userID, dataset)
	if err != nil {
		return err
	}
	return export.Write(w, format, table)
}
