package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
)

// ExportService renders a user's batches as CSV for download.
type ExportService struct {
	repo   *persistence.Repository
	logger *zap.Logger
}

// NewExportService creates the export service.
func NewExportService(repo *persistence.Repository, logger *zap.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		logger: logger,
	}
}

var exportHeader = []string{
	"batchId", "name", "stage", "status", "startedAt",
	"targetHours", "temperatureC", "sugarGrams", "notes", "createdAt",
}

// ExportBatchesCSV renders all of the user's batches, archived included, as
// CSV bytes.
func (s *ExportService) ExportBatchesCSV(ctx context.Context, userID string) ([]byte, error) {
	batches, err := s.repo.ListBatches(ctx, userID, persistence.BatchFilter{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range batches {
		record := []string{
			b.BatchID,
			b.Name,
			string(b.Stage),
			string(b.Status),
			b.StartedAt.UTC().Format(time.RFC3339),
			formatOptionalFloat(b.TargetHours),
			formatOptionalFloat(b.TemperatureC),
			formatOptionalFloat(b.SugarGrams),
			b.Notes,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Debug("Batches exported",
		zap.String("userID", userID),
		zap.Int("count", len(batches)),
	)
	return buf.Bytes(), nil
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
