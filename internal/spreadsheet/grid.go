package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet   = errors.New("workbook has no worksheets")
	ErrLegacyFormat  = errors.New("legacy .xls workbooks are not readable; re-export as .xlsx or .csv")
	ErrUnsupportedTy = errors.New("unsupported spreadsheet type")
)

// Extensions accepted by the intake pipeline. Legacy .xls is accepted at
// the watcher level so the failure surfaces per file instead of being
// silently skipped.
var AcceptedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// LoadGrid reads the first worksheet of a spreadsheet file as a grid of
// raw cell strings with no type coercion. Excel serial dates stay numeric
// strings; the normalizers decide what a cell means.
func LoadGrid(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	case ".csv":
		return loadCSV(path)
	case ".xls":
		return nil, ErrLegacyFormat
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTy, filepath.Ext(path))
	}
}

func loadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := make([][]string, 0, 1024)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
