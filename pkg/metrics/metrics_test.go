package metrics

import (
	"context"
	"testing"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureType(t *testing.T) {
	cycle := &tokenizer.GrammarCycleError{Path: []string{"a", "b", "a"}}
	pattern := &tokenizer.PatternError{Context: "start", Rule: 1, Err: context.DeadlineExceeded}

	assert.Equal(t, FailureCycle, FailureType(cycle))
	assert.Equal(t, FailurePattern, FailureType(pattern))
	assert.Equal(t, FailureOther, FailureType(errors.New("boom")))
}

func TestObserver(t *testing.T) {
	InitMetrics()

	rf, err := tokenizer.ParseRules([]byte(`
contexts:
  start:
    rules:
      - match: '\d+'
        token: number
      - include: loop
  loop:
    rules:
      - include: loop
`))
	require.NoError(t, err)
	g, err := tokenizer.Compile(rf, tokenizer.WithObserver(Observer{}))
	require.NoError(t, err)

	g.TokenizeLines([]string{"12 34", "x"}, g.InitialStack())

	assert.Equal(t, 2.0, testutil.ToFloat64(LinesTokenizedCounter))
	assert.Equal(t, 4.0, testutil.ToFloat64(TokensEmittedCounter))
	assert.Equal(t, 2.0, testutil.ToFloat64(FallbackRunesCounter))
	assert.Positive(t, testutil.ToFloat64(DispatchFailureCounter.WithLabelValues(FailureCycle)))
	assert.Zero(t, testutil.ToFloat64(DispatchFailureCounter.WithLabelValues(FailurePattern)))
}

func TestRegister(t *testing.T) {
	InitMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	assert.Error(t, Register(reg))

	RetokenizedLinesHistogram.Observe(3)
	DispatchFailureCounter.WithLabelValues(FailureOther).Inc()
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "ink_tokenizer_lines_total")
	assert.Contains(t, names, "ink_document_retokenized_lines")
	assert.Contains(t, names, "ink_tokenizer_dispatch_failures_total")
}
