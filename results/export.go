package results

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TimestampLayout is the timestamp format of exported documents.
const TimestampLayout = "2006-01-02 15:04:05"

// WriteError reports an export destination that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write results to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Metadata carries run information included in the exported document.
type Metadata struct {
	Timestamp   time.Time
	ProjectRoot string
}

// SimulationEntry is one per-testbench simulation result in the document.
type SimulationEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ResultsDoc groups the exported per-category results. Simulation carries
// per-item status; synthesis and coverage only have counts, matching the
// scanner's granularity.
type ResultsDoc struct {
	Simulation []SimulationEntry `json:"simulation"`
	Synthesis  int               `json:"synthesis"`
	Coverage   int               `json:"coverage"`
}

// Document is the exported representation of a run summary.
type Document struct {
	Timestamp   string     `json:"timestamp"`
	ProjectRoot string     `json:"project_root"`
	Results     ResultsDoc `json:"results"`
}

// BuildDocument is the pure transform from a summary plus metadata to the
// export document. Simulation entries keep the scanner's enumeration order.
func BuildDocument(summary *Summary, meta Metadata) *Document {
	doc := &Document{
		Timestamp:   meta.Timestamp.Format(TimestampLayout),
		ProjectRoot: meta.ProjectRoot,
		Results: ResultsDoc{
			Simulation: make([]SimulationEntry, 0, len(summary.Results)),
			Synthesis:  summary.Counts[CategorySynthesis],
			Coverage:   summary.Counts[CategoryCoverage],
		},
	}
	for _, r := range summary.Results {
		if r.Category != CategorySimulation {
			continue
		}
		doc.Results.Simulation = append(doc.Results.Simulation, SimulationEntry{
			Name:   r.Name,
			Status: string(r.Status),
		})
	}
	return doc
}

// Export serializes the summary and writes it to path, exactly once.
// An unwritable destination surfaces as a WriteError.
func Export(summary *Summary, meta Metadata, path string) error {
	doc := BuildDocument(summary, meta)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results document: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
