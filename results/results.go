// Package results reconciles on-disk artifacts of a verification run into a
// structured summary.
package results

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Category identifies a class of result artifacts, each with its own directory
// convention under the results root.
type Category string

const (
	CategorySimulation Category = "simulation"
	CategorySynthesis  Category = "synthesis"
	CategoryCoverage   Category = "coverage"
)

// Status is the pass/fail classification of a single artifact.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// SuccessMarker is the literal substring whose presence in a simulation log
// classifies it as passing. This matches the log convention of the simulation
// harness.
const SuccessMarker = "successful"

// TestResult is the derived status of one artifact. Recomputed wholesale on
// every scan; never updated in place.
type TestResult struct {
	Name     string
	Status   Status
	Category Category
}

// Summary is the structured view of a results directory at one point in time.
type Summary struct {
	Counts    map[Category]int
	Results   []TestResult
	Timestamp time.Time
}

// Passed returns the number of passing per-item results.
func (s *Summary) Passed() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusPass {
			n++
		}
	}
	return n
}

// Failed returns the number of failing per-item results.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusFail {
			n++
		}
	}
	return n
}

// Scanner reads a results directory tree and produces summaries.
type Scanner struct {
	log log.Logger
}

// NewScanner creates a Scanner.
func NewScanner(logger log.Logger) *Scanner {
	if logger == nil {
		logger = log.New()
	}
	return &Scanner{log: logger}
}

// Scan walks the results root and builds a fresh Summary. Missing directories
// are not errors; their category count is zero. Scan only reads the
// filesystem and never merges with a previous scan, so rescanning an
// unchanged tree yields an identical summary.
func (s *Scanner) Scan(resultsRoot string) *Summary {
	summary := &Summary{
		Counts:    make(map[Category]int),
		Timestamp: time.Now(),
	}

	s.scanSimulation(resultsRoot, summary)
	s.scanSynthesis(resultsRoot, summary)
	s.scanCoverage(resultsRoot, summary)

	s.log.Debug("Scanned results",
		"root", resultsRoot,
		"simulation", summary.Counts[CategorySimulation],
		"synthesis", summary.Counts[CategorySynthesis],
		"coverage", summary.Counts[CategoryCoverage])

	return summary
}

// scanSimulation classifies each simulation log as pass/fail.
func (s *Scanner) scanSimulation(root string, summary *Summary) {
	logs := globSorted(filepath.Join(root, "simulation", "logs", "*.log"))
	summary.Counts[CategorySimulation] = len(logs)

	for _, path := range logs {
		status := StatusFail
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("Failed to read simulation log", "path", path, "err", err)
		} else if strings.Contains(string(data), SuccessMarker) {
			status = StatusPass
		}
		summary.Results = append(summary.Results, TestResult{
			Name:     strings.TrimSuffix(filepath.Base(path), ".log"),
			Status:   status,
			Category: CategorySimulation,
		})
	}
}

// scanSynthesis counts synthesized netlists. Synthesis produces no per-item
// pass/fail, only a module count.
func (s *Scanner) scanSynthesis(root string, summary *Summary) {
	files := globSorted(filepath.Join(root, "synthesis", "*_synth.v"))
	summary.Counts[CategorySynthesis] = len(files)
}

// scanCoverage counts coverage logs.
func (s *Scanner) scanCoverage(root string, summary *Summary) {
	files := globSorted(filepath.Join(root, "coverage", "*.log"))
	summary.Counts[CategoryCoverage] = len(files)
}

// globSorted returns the matches of pattern in lexical order. Glob only fails
// on malformed patterns, which ours are not, so errors collapse to no matches.
func globSorted(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
