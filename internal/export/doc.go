// Package export writes a record.Dataset to disk.
//
// The spreadsheet format has a single named sheet whose first row is record.Columns,
// followed by one row per record in dataset order. There is no index column. A JSON
// format writes the same records as an indented array. Existing files are overwritten.
package export
