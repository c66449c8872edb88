package tokenizer

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use because a Grammar is shared between goroutines.
type Observer interface {
	LineTokenized(tokens int)
	FallbackRune()
	DispatchFailed(err error)
}

type nopObserver struct{}

func (nopObserver) LineTokenized(int) {}
func (nopObserver) FallbackRune() {}
func (nopObserver) DispatchFailed(error) {}

// Option configures Compile.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	observer     Observer
	matchTimeout time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for dispatch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver installs an Observer for engine events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithMatchTimeout bounds the time a single pattern may spend matching.
// A pattern that times out is treated as not matching, so results then depend
// on timing: tokenizing is deterministic only with the bound disabled. Zero,
// the default, disables it.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.matchTimeout = d
	}
}
