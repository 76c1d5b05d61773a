package sheet

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

func readXLS(r io.ReadSeeker) ([][]string, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	if wb.NumSheets() == 0 {
		return nil, ErrEmptySheet
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrEmptySheet
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}

		rows = append(rows, cells)
	}

	return rows, nil
}
