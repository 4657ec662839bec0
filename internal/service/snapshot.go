package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/spreadsheet"
)

// SnapshotService imports spreadsheets and serves the latest import
type SnapshotService interface {
	Import(ctx context.Context, r io.Reader) ([]models.Row, error)
	// Latest reports false when nothing was imported yet
	Latest(ctx context.Context) ([]models.Row, bool, error)
}

// DefaultSnapshotService implements SnapshotService
type DefaultSnapshotService struct {
	repo repository.SnapshotRepository
}

// NewSnapshotService creates a new DefaultSnapshotService
func NewSnapshotService(repo repository.SnapshotRepository) *DefaultSnapshotService {
	return &DefaultSnapshotService{repo: repo}
}

// Import decodes the workbook and replaces the stored snapshot with its rows
func (s *DefaultSnapshotService) Import(ctx context.Context, r io.Reader) ([]models.Row, error) {
	rows, err := spreadsheet.ReadRows(r)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	blob, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("error encoding rows: %w", err)
	}

	if _, err := s.repo.ReplaceSnapshot(ctx, string(blob)); err != nil {
		return nil, fmt.Errorf("error storing snapshot: %w", err)
	}
	return rows, nil
}

func (s *DefaultSnapshotService) Latest(ctx context.Context) ([]models.Row, bool, error) {
	snap, err := s.repo.LatestSnapshot(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("error getting snapshot: %w", err)
	}
	if snap == nil {
		return []models.Row{}, false, nil
	}

	rows := []models.Row{}
	if err := json.Unmarshal([]byte(snap.Data), &rows); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return rows, true, nil
}
