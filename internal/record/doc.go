// Package record provides the data model for scraped Arts Index county metrics.
//
// A Region identifies a county by its FIPS code and display name. A Record is one
// (county, measure) observation, and a Dataset is the ordered, read-only collection
// of records produced by a run and handed to the exporter.
package record
