// Package metrics holds the Prometheus collectors of the tokenizer and an
// Observer that feeds them from the engine.
package metrics

import (
	stderrors "errors"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
)

// Dispatch failure kinds.
const (
	FailureCycle   = "cycle"
	FailurePattern = "pattern"
	FailureOther   = "other"
)

// Metrics
var (
	LinesTokenizedCounter     prometheus.Counter
	TokensEmittedCounter      prometheus.Counter
	FallbackRunesCounter      prometheus.Counter
	DispatchFailureCounter    *prometheus.CounterVec
	RetokenizedLinesHistogram prometheus.Histogram
)

func init() {
	InitMetrics()
}

// InitMetrics creates the collectors. It is called from init and may be
// called again by tests to start from zero.
func InitMetrics() {
	LinesTokenizedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ink",
			Subsystem: "tokenizer",
			Name:      "lines_total",
			Help:      "Counter of tokenized lines.",
		})

	TokensEmittedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ink",
			Subsystem: "tokenizer",
			Name:      "tokens_total",
			Help:      "Counter of emitted tokens.",
		})

	FallbackRunesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ink",
			Subsystem: "tokenizer",
			Name:      "fallback_runes_total",
			Help:      "Counter of runes no rule matched.",
		})

	DispatchFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ink",
			Subsystem: "tokenizer",
			Name:      "dispatch_failures_total",
			Help:      "Counter of dispatch attempts downgraded to no match.",
		}, []string{"type"})

	RetokenizedLinesHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ink",
			Subsystem: "document",
			Name:      "retokenized_lines",
			Help:      "Bucketed histogram of lines re-tokenized per document edit.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 ~ 2048
		})
}

// Register registers all collectors with r.
func Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		LinesTokenizedCounter,
		TokensEmittedCounter,
		FallbackRunesCounter,
		DispatchFailureCounter,
		RetokenizedLinesHistogram,
	} {
		if err := r.Register(c); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Observer implements tokenizer.Observer on top of the package collectors.
type Observer struct{}

var _ tokenizer.Observer = Observer{}

// LineTokenized implements tokenizer.Observer.
func (Observer) LineTokenized(tokens int) {
	LinesTokenizedCounter.Inc()
	TokensEmittedCounter.Add(float64(tokens))
}

// FallbackRune implements tokenizer.Observer.
func (Observer) FallbackRune() {
	FallbackRunesCounter.Inc()
}

// DispatchFailed implements tokenizer.Observer.
func (Observer) DispatchFailed(err error) {
	DispatchFailureCounter.WithLabelValues(FailureType(err)).Inc()
}

// FailureType classifies a dispatch failure for the "type" label.
func FailureType(err error) string {
	var cycle *tokenizer.GrammarCycleError
	var pattern *tokenizer.PatternError
	switch {
	case stderrors.As(err, &cycle):
		return FailureCycle
	case stderrors.As(err, &pattern):
		return FailurePattern
	}
	return FailureOther
}
