package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/muditbhargava66/jtag-testctl/results"
)

const (
	MetricsNamespace = "testctl"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of test runs",
	}, []string{
		"mode",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of test runs",
	}, []string{
		"run_id",
		"result",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "commands_total",
		Help:      "Count of executed build-tool commands",
	}, []string{
		"command",
		"exit_code",
	})

	linesStreamedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "lines_streamed_total",
		Help:      "Total number of output lines streamed to observers",
	})

	artifactCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "artifact_count",
		Help:      "Number of result artifacts found per category",
	}, []string{
		"category",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration",
		Help:      "Duration of test runs in seconds",
	}, []string{
		"run_id",
	})

	simulationResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "simulation_results",
		Help:      "Per-run simulation pass/fail counts",
	}, []string{
		"run_id",
		"status",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordLine counts one streamed output line.
func RecordLine() {
	linesStreamedTotal.Inc()
}

// RecordCommand records the exit of one build-tool command.
func RecordCommand(command string, exitCode int) {
	if Debug {
		log.Debug("metric inc",
			"m", "commands_total",
			"command", command,
			"exit_code", exitCode)
	}
	commandsTotal.WithLabelValues(command, fmt.Sprintf("%d", exitCode)).Inc()
}

// RecordRun records the terminal outcome of a run together with the artifact
// summary produced by the post-run scan.
func RecordRun(runID string, mode string, result string, duration time.Duration, summary *results.Summary) {
	runsTotal.WithLabelValues(mode, result).Inc()
	runResults.WithLabelValues(runID, result).Set(1)
	runDuration.WithLabelValues(runID).Set(duration.Seconds())

	if summary == nil {
		return
	}
	for category, count := range summary.Counts {
		artifactCount.WithLabelValues(string(category)).Set(float64(count))
	}
	simulationResults.WithLabelValues(runID, string(results.StatusPass)).Set(float64(summary.Passed()))
	simulationResults.WithLabelValues(runID, string(results.StatusFail)).Set(float64(summary.Failed()))
}
