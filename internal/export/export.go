package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/artsindex/internal/record"
)

// Format specifies the output file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

const (
	DefaultPath  = "Nonprofit Revenue.xlsx"
	DefaultSheet = "AFA_Nonprofit_Revenue"
)

// spreadsheetExts are the extensions excelize accepts when saving a workbook
var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// DefaultPathFor returns the default output file for format
func DefaultPathFor(format Format) string {
	if format == FormatJSON {
		return strings.TrimSuffix(DefaultPath, filepath.Ext(DefaultPath)) + ".json"
	}
	return DefaultPath
}

// CheckPath reports an error when the extension of path contradicts format.
// Workbooks need a spreadsheet extension and JSON must not carry one.
func CheckPath(path string, format Format) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch format {
	case FormatXLSX:
		if !spreadsheetExts[ext] {
			return fmt.Errorf("output %q: xlsx output needs a .xlsx, .xlsm, .xltx or .xltm extension", path)
		}
	case FormatJSON:
		if spreadsheetExts[ext] {
			return fmt.Errorf("output %q: json output cannot use a spreadsheet extension", path)
		}
	}
	return nil
}

// ParseFormat converts a case-insensitive format name into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'xlsx' or 'json')", s)
	}
}

// Write writes the dataset to path in the given format. sheet is only used for xlsx.
func Write(path string, format Format, sheet string, ds record.Dataset) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(path, sheet, ds)
	case FormatJSON:
		return WriteJSON(path, ds)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteXLSX writes the dataset as a single-sheet workbook with a header row
func WriteXLSX(path, sheet string, ds record.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(record.Columns))
	for i, col := range record.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range ds.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := rec.Row()
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// WriteJSON writes the dataset as an indented JSON array
func WriteJSON(path string, ds record.Dataset) error {
	data, err := json.MarshalIndent(ds.Records(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}
