package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/artsindex/internal/config"
	"github.com/pfrederiksen/artsindex/internal/export"
	"github.com/pfrederiksen/artsindex/internal/record"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary describes a finished run
type Summary struct {
	FinishedAt  time.Time      `json:"finished_at"`
	States      []string       `json:"states"`
	Counties    int64          `json:"counties"`
	RecordCount int            `json:"record_count"`
	ByState     map[string]int `json:"by_state,omitempty"`
	Output      string         `json:"output"`
	Format      string         `json:"format"`
}

// NewSummary builds the summary of a run
func NewSummary(ds record.Dataset, cfg *config.Config, counties int64, finishedAt time.Time) *Summary {
	byState := make(map[string]int)
	for _, rec := range ds.Records() {
		byState[rec.State]++
	}
	return &Summary{
		FinishedAt:  finishedAt,
		States:      cfg.States,
		Counties:    counties,
		RecordCount: ds.Len(),
		ByState:     byState,
		Output:      cfg.Output,
		Format:      cfg.Format,
	}
}

// WriteSummary writes the summary in the specified format
func WriteSummary(w io.Writer, result *Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, result *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, result *Summary) error {
	if result.RecordCount == 0 {
		fmt.Fprintf(w, "No records found across %d counties.\n", result.Counties)
		if result.Format == string(export.FormatJSON) {
			fmt.Fprintf(w, "Wrote empty record list to %s\n", result.Output)
		} else {
			fmt.Fprintf(w, "Wrote header row only to %s\n", result.Output)
		}
		return nil
	}

	states := make([]string, 0, len(result.ByState))
	for state := range result.ByState {
		states = append(states, state)
	}
	sort.Strings(states)

	for _, state := range states {
		fmt.Fprintf(w, "%s: %d records\n", state, result.ByState[state])
	}
	fmt.Fprintf(w, "\nTotal: %d records from %d counties\n", result.RecordCount, result.Counties)
	fmt.Fprintf(w, "Wrote %s (%s)\n", result.Output, result.Format)
	return nil
}
