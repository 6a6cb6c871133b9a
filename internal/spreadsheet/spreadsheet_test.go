package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadGridXLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"Báo cáo bán hàng"},
		{},
		{"Số CT", "Ngày CT", "Mã KH"},
		{"HD001", "01/03/2026", "KH123"},
	})

	grid, err := LoadGrid(path)
	require.NoError(t, err)
	require.True(t, len(grid) >= 4)
	assert.Equal(t, "Số CT", grid[2][0])
	assert.Equal(t, "HD001", grid[3][0])
}

func TestLoadGridCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	content := "x,y\nSTT,Số điện thoại\n1,0912345678,extra\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	grid, err := LoadGrid(path)
	require.NoError(t, err)
	require.Len(t, grid, 3)
	// Ragged rows are allowed.
	assert.Len(t, grid[2], 3)
}

func TestLoadGridLegacyXLS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.xls")
	require.NoError(t, os.WriteFile(path, []byte("not really xls"), 0o644))

	_, err := LoadGrid(path)
	assert.ErrorIs(t, err, ErrLegacyFormat)
}

func TestFindHeaderWithinScanWindow(t *testing.T) {
	grid := make([][]string, 30)
	for i := range grid {
		grid[i] = []string{"noise"}
	}
	grid[6] = []string{"STT", "Số điện thoại"}

	idx, ok := FindHeader(grid, 20, func(row []string) bool {
		return RowHasExactCell(row, "STT") && RowHasCell(row, "điện thoại")
	})
	require.True(t, ok)
	assert.Equal(t, 6, idx)
}

func TestFindHeaderBeyondScanWindow(t *testing.T) {
	grid := make([][]string, 30)
	for i := range grid {
		grid[i] = []string{"noise"}
	}
	grid[21] = []string{"STT", "Số điện thoại"}

	_, ok := FindHeader(grid, 20, func(row []string) bool {
		return RowHasExactCell(row, "STT")
	})
	assert.False(t, ok)
}

func TestMapColumns(t *testing.T) {
	header := []string{"STT", "Số điện thoại", "Thời gian gửi", "Nội dung tin", "Mã\nCH"}
	rules := []HeaderRule{
		Contains("phone", "điện thoại"),
		Contains("sent_at", "thời gian gửi"),
		Contains("content", "nội dung"),
		{Field: "store_code", AnyOf: [][]string{{"mã", "ch"}}},
	}

	cm := MapColumns(header, rules)
	assert.Equal(t, 1, cm["phone"])
	assert.Equal(t, 2, cm["sent_at"])
	assert.Equal(t, 3, cm["content"])
	assert.Equal(t, 4, cm["store_code"])
	assert.Empty(t, cm.Missing("phone", "sent_at"))
}

func TestMapColumnsCaseSensitiveRule(t *testing.T) {
	rules := []HeaderRule{
		{Field: "store_code", AnyOf: [][]string{{"Mã", "CH"}}, CaseSensitive: true},
	}

	cm := MapColumns([]string{"Số CT", "Mã khách hàng", "Mã CH"}, rules)
	assert.Equal(t, 2, cm["store_code"])

	// Without an upper-case "CH" cell the rule must not fire at all.
	cm = MapColumns([]string{"Mã khách hàng"}, rules)
	assert.Equal(t, []Field{"store_code"}, cm.Missing("store_code"))
}

func TestMapColumnsFirstMatchWins(t *testing.T) {
	header := []string{"Nội dung", "Nội dung gốc"}
	cm := MapColumns(header, []HeaderRule{Contains("content", "nội dung")})
	assert.Equal(t, 0, cm["content"])
}

func TestMapColumnsMissing(t *testing.T) {
	cm := MapColumns([]string{"STT"}, []HeaderRule{Contains("phone", "điện thoại")})
	assert.Equal(t, []Field{"phone"}, cm.Missing("phone"))
	assert.Equal(t, "", cm.Cell([]string{"1"}, "phone"))
}
