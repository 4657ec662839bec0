// Package spreadsheet decodes uploaded workbooks into header-keyed rows.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrMalformed wraps every decode failure of the workbook itself
var ErrMalformed = errors.New("malformed spreadsheet")

// ReadRows decodes the first sheet of an xlsx workbook. The first row holds the
// headers; every later non-blank row becomes one models.Row keyed by header.
// Empty cells are omitted and blank headers are named after their column letter.
func ReadRows(r io.Reader) ([]models.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := []models.Row{}
	if len(grid) == 0 {
		return out, nil
	}

	headers := headerNames(grid[0])
	for _, cells := range grid[1:] {
		row := models.Row{}
		for i, cell := range cells {
			if cell == "" {
				continue
			}
			row[columnKey(headers, i)] = cell
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

func headerNames(cells []string) []string {
	names := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = columnLetter(i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// columnKey names cells past the header row's width by their column letter
func columnKey(headers []string, i int) string {
	if i < len(headers) {
		return headers[i]
	}
	return columnLetter(i)
}

func columnLetter(i int) string {
	name, err := excelize.ColumnNumberToName(i + 1)
	if err != nil {
		return fmt.Sprintf("col%d", i+1)
	}
	return name
}
