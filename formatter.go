package testctl

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/muditbhargava66/jtag-testctl/results"
	"github.com/muditbhargava66/jtag-testctl/runner"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(status runner.Status, summary *results.Summary) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults renders the artifact summary of a finished run as a table.
func (f *ConsoleResultFormatter) FormatResults(status runner.Status, summary *results.Summary) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Verification Results (%s)", formatDuration(status.Duration)))

	t.AppendHeader(table.Row{
		"Category", "Item", "Found", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Category", AutoMerge: true},
		{Name: "Item", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Found", Align: text.AlignRight},
	})

	// Simulation: per-testbench pass/fail derived from the logs.
	simResults := summary.Results
	t.AppendRow(table.Row{
		"Simulation",
		"logs",
		summary.Counts[results.CategorySimulation],
		categoryStatus(summary),
	})
	for i, r := range simResults {
		prefix := "├──"
		if i == len(simResults)-1 {
			prefix = "└──"
		}
		t.AppendRow(table.Row{
			"Simulation",
			fmt.Sprintf("%s %s", prefix, r.Name),
			"",
			getResultString(r.Status),
		})
	}
	t.AppendSeparator()

	// Synthesis and coverage only produce counts.
	t.AppendRow(table.Row{
		"Synthesis", "netlists", summary.Counts[results.CategorySynthesis], "",
	})
	t.AppendRow(table.Row{
		"Coverage", "logs", summary.Counts[results.CategoryCoverage], "",
	})

	switch {
	case status.State == runner.StateFailed || summary.Failed() > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case status.Cancelled:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		runStateString(status),
		summary.Counts[results.CategorySimulation] +
			summary.Counts[results.CategorySynthesis] +
			summary.Counts[results.CategoryCoverage],
		fmt.Sprintf("%d passed / %d failed", summary.Passed(), summary.Failed()),
	})

	t.Render()
	return nil
}

// categoryStatus rolls the per-log results up to one simulation status.
func categoryStatus(summary *results.Summary) string {
	if summary.Counts[results.CategorySimulation] == 0 {
		return "-"
	}
	if summary.Failed() > 0 {
		return getResultString(results.StatusFail)
	}
	return getResultString(results.StatusPass)
}

// getResultString returns a decorated string representing an artifact status
func getResultString(status results.Status) string {
	if status == results.StatusPass {
		return "✓ pass"
	}
	return "✗ fail"
}

// runStateString describes how the run itself ended.
func runStateString(status runner.Status) string {
	switch {
	case status.Cancelled:
		return "cancelled"
	case status.State == runner.StateFailed && status.Err != nil:
		return fmt.Sprintf("failed (command %d: %v)", status.CommandIndex, status.Err)
	case status.State == runner.StateFailed:
		return fmt.Sprintf("failed (command %d, exit %d)", status.CommandIndex, status.ExitCode)
	default:
		return "completed"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
