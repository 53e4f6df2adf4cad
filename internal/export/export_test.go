package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/artsindex/internal/record"
)

func sampleDataset() record.Dataset {
	return record.NewDataset(
		[]record.Record{{
			CountyFIPS: "10001",
			CountyName: "Kent",
			State:      "DE",
			Measure:    "Total nonprofit arts revenue per capita ($2010)",
			Value:      "$12.34",
			Year:       2014,
		}},
		[]record.Record{{
			CountyFIPS: "10003",
			CountyName: "New Castle",
			State:      "DE",
			Measure:    "Total nonprofit arts revenue per capita ($2010)",
			Value:      "$101.50",
			Year:       2014,
		}},
	)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	ds := sampleDataset()

	require.NoError(t, WriteXLSX(path, DefaultSheet, ds))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, ds.Len()+1)
	assert.Equal(t, record.Columns, rows[0])

	for i, rec := range ds.Records() {
		assert.Equal(t, []string{
			rec.CountyFIPS, rec.CountyName, rec.State, rec.Measure, rec.Value, strconv.Itoa(rec.Year),
		}, rows[i+1])
	}
}

func TestWriteXLSX_YearIsNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, DefaultSheet, sampleDataset()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	cellType, err := f.GetCellType(DefaultSheet, "F2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	// FIPS codes keep leading zeros as text
	fips, err := f.GetCellValue(DefaultSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "10001", fips)
}

func TestWriteXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, DefaultSheet, record.NewDataset()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.Columns, rows[0])
}

func TestWriteXLSX_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, WriteXLSX(path, DefaultSheet, sampleDataset()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWriteXLSX_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx")
	assert.Error(t, WriteXLSX(path, DefaultSheet, sampleDataset()))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	ds := sampleDataset()

	require.NoError(t, WriteJSON(path, ds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []record.Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ds.Records(), got)
	assert.Contains(t, string(data), `"county_fips": "10001"`)
}

func TestWrite_Dispatch(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(filepath.Join(dir, "a.xlsx"), FormatXLSX, DefaultSheet, sampleDataset()))
	require.NoError(t, Write(filepath.Join(dir, "a.json"), FormatJSON, DefaultSheet, sampleDataset()))
	assert.Error(t, Write(filepath.Join(dir, "a.csv"), Format("csv"), DefaultSheet, sampleDataset()))

	assert.FileExists(t, filepath.Join(dir, "a.xlsx"))
	assert.FileExists(t, filepath.Join(dir, "a.json"))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{" json ", FormatJSON, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPathFor(t *testing.T) {
	assert.Equal(t, "Nonprofit Revenue.xlsx", DefaultPathFor(FormatXLSX))
	assert.Equal(t, "Nonprofit Revenue.json", DefaultPathFor(FormatJSON))
}

func TestCheckPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		format  Format
		wantErr bool
	}{
		{"xlsx workbook", "out.xlsx", FormatXLSX, false},
		{"xlsx upper case", "OUT.XLSX", FormatXLSX, false},
		{"xlsx macro workbook", "out.xlsm", FormatXLSX, false},
		{"xlsx into json file", "out.json", FormatXLSX, true},
		{"xlsx without extension", "out", FormatXLSX, true},
		{"json file", "out.json", FormatJSON, false},
		{"json without extension", "out", FormatJSON, false},
		{"json into workbook", "Nonprofit Revenue.xlsx", FormatJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPath(tt.path, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
