package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spicery/ink-tokenizer/internal/config"
	"github.com/spicery/ink-tokenizer/internal/logutil"
	"github.com/spicery/ink-tokenizer/pkg/ink"
	"github.com/spicery/ink-tokenizer/pkg/metrics"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
	"go.uber.org/zap"
)

const version = "0.1.0"

const long = `ink-tokenizer - A syntax tokenizer for the ink narrative scripting language

Tokenizes ink scripts line by line into labeled spans, for syntax coloring and
for locating divert targets. The built-in ink grammar can be replaced by a
YAML rules file (see make-rules for the format).

Examples:
  ink-tokenizer tokens --input story.ink         # JSON tokens, one per line
  ink-tokenizer highlight --input story.ink      # ANSI colored source
  ink-tokenizer targets --input story.ink        # divert targets and declarations
  ink-tokenizer make-rules > ink.yaml            # dump the built-in grammar
  ink-tokenizer tokens --rules ink.yaml          # tokenize stdin with a custom grammar
  ink-tokenizer repl                             # tokenize lines interactively
`

// app carries the state shared by all sub-commands.
type app struct {
	configFile  string
	inputFiles  []string
	outputFile  string
	rulesFile   string
	logLevel    string
	jobs        int
	forceColors bool

	cfg     *config.Config
	logger  *zap.Logger
	grammar *tokenizer.Grammar
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ink-tokenizer",
		Short:         "A syntax tokenizer for the ink narrative scripting language",
		Long:          long,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "TOML config file (optional)")
	flags.StringSliceVar(&a.inputFiles, "input", nil, "Input file, may be repeated (defaults to stdin)")
	flags.StringVar(&a.outputFile, "output", "", "Output file (defaults to stdout)")
	flags.StringVar(&a.rulesFile, "rules", "", "YAML rules file replacing the built-in ink grammar")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.IntVar(&a.jobs, "jobs", 0, "Number of inputs tokenized in parallel")

	root.AddCommand(
		newTokensCmd(a),
		newHighlightCmd(a),
		newTargetsCmd(a),
		newKeywordsCmd(a),
		newMakeRulesCmd(a),
		newReplCmd(a),
		newStatsCmd(a),
	)
	return root
}

// setup merges config file and flags, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.NewConfig()
	if a.configFile != "" {
		if err := a.cfg.Load(a.configFile); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if flags.Changed("jobs") {
		a.cfg.Jobs = a.jobs
	}
	if flags.Changed("rules") {
		a.cfg.Grammar.Rules = a.rulesFile
	}
	if err := a.cfg.Valid(); err != nil {
		return err
	}

	logger, err := logutil.NewLogger(a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// loadGrammar compiles the configured grammar, the built-in one by default.
func (a *app) loadGrammar() (*tokenizer.Grammar, error) {
	if a.grammar != nil {
		return a.grammar, nil
	}
	opts := []tokenizer.Option{
		tokenizer.WithLogger(a.logger),
		tokenizer.WithObserver(metrics.Observer{}),
		tokenizer.WithMatchTimeout(a.cfg.Grammar.MatchTimeout.Duration),
	}

	var (
		g   *tokenizer.Grammar
		err error
	)
	if a.cfg.Grammar.Rules != "" {
		g, err = tokenizer.LoadGrammarFile(a.cfg.Grammar.Rules, opts...)
	} else {
		g, err = ink.Compile(opts...)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("grammar compiled",
		zap.String("name", g.Name()),
		zap.Int("contexts", g.NumContexts()))
	a.grammar = g
	return g, nil
}
