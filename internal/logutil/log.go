// Package logutil builds the zap logger of the command-line tool.
package logutil

import (
	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a logger writing to stderr at the configured level, in
// console ("text") or JSON encoding.
func NewLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Trace(err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.Sampling = nil
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == config.DefaultLogFormat {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zcfg.Encoding = "json"
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, errors.Annotate(err, "failed to build logger")
	}
	return logger, nil
}
