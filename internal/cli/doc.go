// Package cli implements the command-line interface for artsindex.
//
// The cli package provides the Cobra-based root command. It builds the run
// configuration from flags, wires the scraper, pipeline and exporter together, and
// prints a run summary (text or JSON) once the spreadsheet has been written.
package cli
