package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSpreadsheet reads the first sheet of a workbook. Cells are taken as
// their formatted text; rows without any cell are skipped. A workbook with no
// sheets or no rows yields an empty grid.
func ReadSpreadsheet(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Grid{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Grid{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Grid{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var grid Grid
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		if grid.Header == nil {
			grid.Header = cells
			continue
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid, nil
}
