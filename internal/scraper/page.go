package scraper

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/artsindex/internal/record"
)

const (
	// LabelSelector matches the row labels on a county page
	LabelSelector = "div.sub"

	// YearLabelIndex is the position of the label whose last four characters are
	// the data year. The page layout is fixed, so this is not discovered.
	YearLabelIndex = 32

	// NoDataSentinel marks a value the site has no data for
	NoDataSentinel = "N/D"
)

var (
	// ErrYearLabelMissing is returned when a page has no label at YearLabelIndex
	ErrYearLabelMissing = errors.New("year label missing")

	// ErrInvalidYear is returned when the year label does not end in a 4-digit year
	ErrInvalidYear = errors.New("invalid year label")

	// ErrMisaligned is returned when a matched label position has no value
	ErrMisaligned = errors.New("label position has no value")
)

// HeaderIndex maps a label's position among all page labels to its text
type HeaderIndex map[int]string

// Positions returns the indexed positions in ascending order
func (h HeaderIndex) Positions() []int {
	positions := make([]int, 0, len(h))
	for pos := range h {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// CountyPage is the label scan of one county page
type CountyPage struct {
	Headers    HeaderIndex
	Year       int
	LabelCount int
}

// parseCountyPage scans every label in document order. The counter covers all
// labels, matching or not, so positions line up with the value array.
func parseCountyPage(r io.Reader, metric string) (*CountyPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &CountyPage{Headers: make(HeaderIndex)}
	var yearLabel string

	doc.Find(LabelSelector).Each(func(i int, sel *goquery.Selection) {
		text := strings.ReplaceAll(sel.Text(), "\u00a0", "")
		if strings.Contains(text, metric) {
			page.Headers[i] = text
		}
		if i == YearLabelIndex {
			yearLabel = text
		}
		page.LabelCount++
	})

	if page.LabelCount <= YearLabelIndex {
		return nil, fmt.Errorf("%w: page has %d labels, need at least %d",
			ErrYearLabelMissing, page.LabelCount, YearLabelIndex+1)
	}

	year, err := parseYear(yearLabel)
	if err != nil {
		return nil, err
	}
	page.Year = year

	return page, nil
}

// parseYear reads the trailing 4-digit year of a label
func parseYear(label string) (int, error) {
	label = strings.TrimSpace(label)
	if len(label) < 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, label)
	}

	tail := label[len(label)-4:]
	for _, c := range tail {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidYear, label)
		}
	}

	year, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, label)
	}
	return year, nil
}

// ExtractRecords pairs the matched labels of a county page with their values.
// Positions are visited in ascending order. Values equal to NoDataSentinel are
// skipped and counted in County.NoData.
func ExtractRecords(region record.Region, page *CountyPage, values []string) (record.County, error) {
	county := record.County{
		Region:  region,
		Records: make([]record.Record, 0, len(page.Headers)),
	}

	for _, pos := range page.Headers.Positions() {
		if pos >= len(values) {
			return record.County{}, fmt.Errorf("%w: %s position %d, %d values",
				ErrMisaligned, region.FIPS, pos, len(values))
		}

		value, err := fragmentText(values[pos])
		if err != nil {
			return record.County{}, fmt.Errorf("county %s position %d: %w", region.FIPS, pos, err)
		}
		if strings.TrimSpace(value) == NoDataSentinel {
			county.NoData++
			continue
		}

		county.Records = append(county.Records, record.Record{
			CountyFIPS: region.FIPS,
			CountyName: region.Name,
			State:      region.State,
			Measure:    page.Headers[pos],
			Value:      value,
			Year:       page.Year,
		})
	}

	return county, nil
}
