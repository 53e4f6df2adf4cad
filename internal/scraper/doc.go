// Package scraper provides HTTP fetching and HTML parsing for Arts Index USA county data.
//
// Three endpoints are involved for every state. The county list endpoint returns
// "<fips>:<name>" entries. For each county, the "where I live" page carries the row
// labels as div.sub elements, and a second JSON endpoint returns the row values as an
// array of HTML fragments. Labels and values are parallel arrays joined by position;
// ExtractRecords checks every matched position against the value array before reading it.
//
// The label at YearLabelIndex is assumed to end with the data year. Pages with fewer
// labels are rejected with ErrYearLabelMissing.
package scraper
