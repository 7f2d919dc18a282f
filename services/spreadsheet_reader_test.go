package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into Sheet1 starting at A1 and returns the XLSX bytes.
func buildWorkbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadSpreadsheetKeysCellsByHeader(t *testing.T) {
	buf := buildWorkbook(t,
		[]interface{}{" Nama Lengkap ", "NIP", "Tanggal Lahir", "NIP"},
		[]interface{}{"Siti Aminah", "19850517", 31184, "shadowed"},
		[]interface{}{"", "", "", ""},
		[]interface{}{"Budi", "", "17/05/85"},
	)

	rows, date1904, err := ReadSpreadsheet(buf)
	require.NoError(t, err)
	assert.False(t, date1904)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "Siti Aminah", rows[0].Cells["Nama Lengkap"])
	assert.Equal(t, "19850517", rows[0].Cells["NIP"], "text cells stay text")
	assert.Equal(t, float64(31184), rows[0].Cells["Tanggal Lahir"])

	assert.Equal(t, 4, rows[1].Number, "blank row is skipped but numbering follows the sheet")
	assert.Equal(t, "Budi", rows[1].Cells["Nama Lengkap"])
	assert.Equal(t, "17/05/85", rows[1].Cells["Tanggal Lahir"])
	_, hasNip := rows[1].Cells["NIP"]
	assert.False(t, hasNip, "empty cells are omitted")
}

func TestReadSpreadsheetHeaderOnly(t *testing.T) {
	buf := buildWorkbook(t, []interface{}{"Nama", "NIP"})

	rows, _, err := ReadSpreadsheet(buf)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadSpreadsheetRejectsNonWorkbook(t *testing.T) {
	_, _, err := ReadSpreadsheet(strings.NewReader("nama,nip\nbudi,1\n"))
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestOpenWorkbookNilReader(t *testing.T) {
	_, err := OpenWorkbook(nil)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestSpreadsheetRowsFeedNormalizer(t *testing.T) {
	buf := buildWorkbook(t,
		[]interface{}{"Nama", "L/P", "Tanggal Lahir", "Jenis PTK"},
		[]interface{}{"Siti", "P", 31184, "Tenaga Kependidikan"},
	)

	wb, err := OpenWorkbook(buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.FirstSheetRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, err := NewGtkNormalizer(DefaultGtkColumns(), wb.Date1904()).Normalize(rows[0].Cells)
	require.NoError(t, err)
	assert.Equal(t, "1985-05-17", got.TanggalLahir)
	assert.Equal(t, "tendik", got.Jenis)
}
