package services

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseError reports an upload that could not be decoded as a spreadsheet.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "spreadsheet could not be parsed"
	}
	return fmt.Sprintf("spreadsheet could not be parsed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SpreadsheetRow is one data row of the first sheet, keyed by header label.
// Numeric cells (date serials included) are float64, everything else string.
// Empty cells are absent from Cells.
type SpreadsheetRow struct {
	Number int
	Cells  map[string]interface{}
}

// Workbook is an opened spreadsheet upload.
type Workbook struct {
	file     *excelize.File
	date1904 bool
}

// OpenWorkbook decodes r as an XLSX workbook. Any decoding failure is a *ParseError.
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	if r == nil {
		return nil, &ParseError{Err: errors.New("no content")}
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(f.GetSheetList()) == 0 {
		_ = f.Close()
		return nil, &ParseError{Err: errors.New("workbook has no sheets")}
	}

	wb := &Workbook{file: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

// Date1904 reports whether date serials use the 1904 epoch.
func (w *Workbook) Date1904() bool {
	return w.date1904
}

func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// FirstSheetRows returns the data rows of the first sheet. The first row is
// the header; rows without any value are dropped. Zero rows is not an error.
func (w *Workbook) FirstSheetRows() ([]SpreadsheetRow, error) {
	sheet := w.file.GetSheetList()[0]
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) < 2 {
		return []SpreadsheetRow{}, nil
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]struct{}, len(rows[0]))
	for idx, label := range rows[0] {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		headers[idx] = label
	}

	out := make([]SpreadsheetRow, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		cells := make(map[string]interface{})
		for colIdx, raw := range rows[rowIdx] {
			if colIdx >= len(headers) || headers[colIdx] == "" || raw == "" {
				continue
			}
			cells[headers[colIdx]] = w.cellValue(sheet, colIdx+1, rowIdx+1, raw)
		}
		if len(cells) == 0 {
			continue
		}
		out = append(out, SpreadsheetRow{Number: rowIdx + 1, Cells: cells})
	}
	return out, nil
}

func (w *Workbook) cellValue(sheet string, col, row int, raw string) interface{} {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	cellType, err := w.file.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return num
		}
	}
	return raw
}

// ReadSpreadsheet opens r and returns the first sheet's rows in one step.
func ReadSpreadsheet(r io.Reader) ([]SpreadsheetRow, bool, error) {
	wb, err := OpenWorkbook(r)
	if err != nil {
		return nil, false, err
	}
	defer wb.Close()
	rows, err := wb.FirstSheetRows()
	return rows, wb.Date1904(), err
}
