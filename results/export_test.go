package results

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *Summary {
	return &Summary{
		Counts: map[Category]int{
			CategorySimulation: 2,
			CategorySynthesis:  3,
			CategoryCoverage:   1,
		},
		Results: []TestResult{
			{Name: "tb_jtag_controller", Status: StatusPass, Category: CategorySimulation},
			{Name: "tb_top_module", Status: StatusFail, Category: CategorySimulation},
		},
		Timestamp: time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC),
	}
}

func TestExportRoundTrip(t *testing.T) {
	summary := sampleSummary()
	meta := Metadata{
		Timestamp:   summary.Timestamp,
		ProjectRoot: "/work/jtag-network",
	}
	path := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, Export(summary, meta, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "2025-06-01 12:30:45", doc.Timestamp)
	assert.Equal(t, "/work/jtag-network", doc.ProjectRoot)
	assert.Equal(t, 3, doc.Results.Synthesis)
	assert.Equal(t, 1, doc.Results.Coverage)

	// Simulation entries keep the scanner's enumeration order.
	require.Len(t, doc.Results.Simulation, 2)
	assert.Equal(t, SimulationEntry{Name: "tb_jtag_controller", Status: "PASS"}, doc.Results.Simulation[0])
	assert.Equal(t, SimulationEntry{Name: "tb_top_module", Status: "FAIL"}, doc.Results.Simulation[1])
}

func TestExportScannedSummaryRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "simulation/logs/tb_top_module.log", "...simulation successful...")

	scanner := NewScanner(log.New())
	summary := scanner.Scan(root)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Export(summary, Metadata{Timestamp: summary.Timestamp, ProjectRoot: root}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Results.Simulation, 1)
	assert.Equal(t, SimulationEntry{Name: "tb_top_module", Status: "PASS"}, doc.Results.Simulation[0])
}

func TestExportEmptySummaryWritesEmptyList(t *testing.T) {
	summary := &Summary{Counts: map[Category]int{}, Timestamp: time.Now()}
	path := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, Export(summary, Metadata{Timestamp: summary.Timestamp, ProjectRoot: "/p"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// The simulation list must serialize as [], not null.
	assert.Contains(t, string(data), `"simulation": []`)
}

func TestExportUnwritableDestination(t *testing.T) {
	summary := sampleSummary()
	path := filepath.Join(t.TempDir(), "missing-dir", "results.json")

	err := Export(summary, Metadata{Timestamp: summary.Timestamp, ProjectRoot: "/p"}, path)
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, path, writeErr.Path)
}

func TestBuildDocumentIsPure(t *testing.T) {
	summary := sampleSummary()
	meta := Metadata{Timestamp: summary.Timestamp, ProjectRoot: "/p"}

	first := BuildDocument(summary, meta)
	second := BuildDocument(summary, meta)
	assert.Equal(t, first, second)
}
