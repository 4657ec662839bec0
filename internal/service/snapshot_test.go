package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsx(t *testing.T, grid [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestSnapshotImportThenLatest(t *testing.T) {
	repo := repotest.NewMemoryRepository()
	svc := NewSnapshotService(repo)
	ctx := context.Background()

	rows, found, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	imported, err := svc.Import(ctx, xlsx(t, [][]any{
		{"nome", "stanza"},
		{"Anna", "12"},
		{"Bruno", nil},
	}))
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	rows, found, err = svc.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []models.Row{
		{"nome": "Anna", "stanza": "12"},
		{"nome": "Bruno"},
	}, rows)

	_, err = svc.Import(ctx, xlsx(t, [][]any{{"x"}, {"1"}}))
	require.NoError(t, err)
	rows, _, err = svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Row{{"x": "1"}}, rows)
}

func TestSnapshotImport_Rejects(t *testing.T) {
	repo := repotest.NewMemoryRepository()
	svc := NewSnapshotService(repo)
	ctx := context.Background()

	_, err := svc.Import(ctx, xlsx(t, [][]any{{"solo", "intestazione"}}))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Import(ctx, strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, ErrInvalidSpreadsheet)

	_, found, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, found, "rejected imports leave no snapshot")
}

func TestSnapshotLatest_Corrupt(t *testing.T) {
	repo := repotest.NewMemoryRepository()
	_, err := repo.ReplaceSnapshot(context.Background(), `{not json`)
	require.NoError(t, err)

	_, _, err = NewSnapshotService(repo).Latest(context.Background())
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}
