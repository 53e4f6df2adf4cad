package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRegion is returned when a county entry is not in "<fips>:<name>" form
var ErrMalformedRegion = errors.New("malformed region entry")

// Region represents a county within a state
type Region struct {
	FIPS  string `json:"fips"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// ParseRegion parses a "<fips>:<name>" entry from the county list endpoint.
// Only the first colon separates the code from the name, so "a:b:c" is county
// "a" named "b:c" rather than a name truncated at the second colon.
func ParseRegion(state, raw string) (Region, error) {
	fips, name, ok := strings.Cut(raw, ":")
	fips = strings.TrimSpace(fips)
	if !ok || fips == "" {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, raw)
	}
	return Region{
		FIPS:  fips,
		Name:  name,
		State: state,
	}, nil
}

// String returns "Name, ST"
func (r Region) String() string {
	return fmt.Sprintf("%s, %s", r.Name, r.State)
}

// Record is a single metric value for a county
type Record struct {
	CountyFIPS string `json:"county_fips"`
	CountyName string `json:"county_name"`
	State      string `json:"state"`
	Measure    string `json:"measure"`
	Value      string `json:"value"`
	Year       int    `json:"year"`
}

// County is the scrape result of one region
type County struct {
	Region  Region
	Records []Record
	NoData  int // values skipped as no-data
}

// Columns is the header row of the exported sheet, in Row order
var Columns = []string{"county fips", "county name", "state", "measure", "value", "year"}

// Row returns the record's cells in Columns order
func (r Record) Row() []interface{} {
	return []interface{}{r.CountyFIPS, r.CountyName, r.State, r.Measure, r.Value, r.Year}
}

// Dataset is an ordered, read-only collection of records
type Dataset struct {
	records []Record
}

// NewDataset concatenates the given record groups, preserving order
func NewDataset(groups ...[]Record) Dataset {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	records := make([]Record, 0, total)
	for _, g := range groups {
		records = append(records, g...)
	}
	return Dataset{records: records}
}

// Records returns a copy of the dataset's records
func (d Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of records
func (d Dataset) Len() int {
	return len(d.records)
}
