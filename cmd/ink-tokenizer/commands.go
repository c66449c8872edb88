package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spicery/ink-tokenizer/pkg/document"
	"github.com/spicery/ink-tokenizer/pkg/highlight"
	"github.com/spicery/ink-tokenizer/pkg/ink"
	"github.com/spicery/ink-tokenizer/pkg/metrics"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
)

// tokenRecord is one line of the tokens output.
type tokenRecord struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line"`
	tokenizer.Token
}

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Write one JSON token object per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs, docs, err := a.tokenizeInputs(cmd.Context())
			if err != nil {
				return err
			}
			return a.withOutput(func(w *output) error {
				enc := json.NewEncoder(w)
				for i, doc := range docs {
					rec := tokenRecord{}
					if len(inputs) > 1 {
						rec.File = inputs[i].name
					}
					for n := 0; n < doc.Len(); n++ {
						rec.Line = n
						for _, tok := range doc.Tokens(n) {
							rec.Token = tok
							if err := enc.Encode(&rec); err != nil {
								return errors.Annotate(err, "JSON encoding error")
							}
						}
					}
				}
				return nil
			})
		},
	}
}

func newHighlightCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Write the input with ANSI colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			theme := highlight.DefaultTheme()
			if err := theme.Apply(a.cfg.Theme); err != nil {
				return err
			}
			if a.forceColors {
				theme.ForceColor()
			}
			_, docs, err := a.tokenizeInputs(cmd.Context())
			if err != nil {
				return err
			}
			return a.withOutput(func(w *output) error {
				for _, doc := range docs {
					if err := highlight.Render(w, doc, theme); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&a.forceColors, "force-color", false, "Emit colors even when the output is not a terminal")
	return cmd
}

// targetRecord is one line of the targets output.
type targetRecord struct {
	File  string            `json:"file,omitempty"`
	Kind  string            `json:"kind"`
	Name  string            `json:"name"`
	Label string            `json:"label"`
	Start document.Position `json:"start"`
	End   document.Position `json:"end"`
}

func newTargetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List divert targets and the declarations they can refer to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs, docs, err := a.tokenizeInputs(cmd.Context())
			if err != nil {
				return err
			}
			return a.withOutput(func(w *output) error {
				enc := json.NewEncoder(w)
				for i, doc := range docs {
					file := ""
					if len(inputs) > 1 {
						file = inputs[i].name
					}
					found := doc.Find(func(tok tokenizer.Token) bool {
						return tok.Label == ink.LabelDivertTarget || ink.IsDeclaration(tok.Label)
					})
					for _, loc := range found {
						kind := "declaration"
						if loc.Token.Label == ink.LabelDivertTarget {
							kind = "target"
						}
						rec := targetRecord{
							File:  file,
							Kind:  kind,
							Name:  ink.TargetName(loc.Token),
							Label: loc.Token.Label,
							Start: loc.Start,
							End:   loc.End,
						}
						if err := enc.Encode(&rec); err != nil {
							return errors.Annotate(err, "JSON encoding error")
						}
					}
				}
				return nil
			})
		},
	}
}

func newKeywordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords [prefix]",
		Short: "List the ink keywords offered for autocompletion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return a.withOutput(func(w *output) error {
				for _, c := range ink.Completions(prefix) {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Value, c.Meta); err != nil {
						return errors.Trace(err)
					}
				}
				return nil
			})
		},
	}
}

func newMakeRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "make-rules",
		Short: "Write the grammar as a YAML rules file",
		Long: `Write the grammar as a YAML rules file.

Without --rules the built-in ink grammar is written. With --rules the given
file is validated, compiled and written back in normalized form.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			data := ink.Source()
			if a.cfg.Grammar.Rules != "" {
				rf, err := tokenizer.LoadRulesFile(a.cfg.Grammar.Rules)
				if err != nil {
					return err
				}
				if _, err := tokenizer.Compile(rf); err != nil {
					return err
				}
				if data, err = rf.YAML(); err != nil {
					return err
				}
			}
			return a.withOutput(func(w *output) error {
				_, err := w.Write(data)
				return errors.Trace(err)
			})
		},
	}
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Tokenize lines typed at a prompt, carrying the context stack between them",
		Long: `Tokenize lines typed at a prompt, carrying the context stack between them.

The prompt shows the context stack entering the next line.
Type :reset to return to the initial stack, or :quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.loadGrammar()
			if err != nil {
				return err
			}
			return repl(g, cmd.OutOrStdout())
		},
	}
}

func repl(g *tokenizer.Grammar, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(text string) []string {
		i := strings.LastIndexAny(text, " \t{(:") + 1
		var candidates []string
		for _, c := range ink.Completions(text[i:]) {
			candidates = append(candidates, text[:i]+c.Value)
		}
		return candidates
	})

	state := g.InitialStack()
	for {
		prompt := strings.Join(g.StackNames(state), "/") + "> "
		text, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Trace(err)
		}
		line.AppendHistory(text)

		switch strings.TrimSpace(text) {
		case ":quit":
			return nil
		case ":reset":
			state = g.InitialStack()
			continue
		}

		res := g.TokenizeLine(text, state)
		for _, tok := range res.Tokens {
			fmt.Fprintf(out, "  [%d,%d) %-40s %q\n", tok.Span.Start, tok.Span.End, tok.Label, tok.Text)
		}
		state = res.State
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Tokenize the input and print the tokenizer metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			if err := metrics.Register(reg); err != nil {
				return err
			}
			if _, _, err := a.tokenizeInputs(cmd.Context()); err != nil {
				return err
			}
			families, err := reg.Gather()
			if err != nil {
				return errors.Trace(err)
			}
			return a.withOutput(func(w *output) error {
				enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
				for _, mf := range families {
					if err := enc.Encode(mf); err != nil {
						return errors.Trace(err)
					}
				}
				return nil
			})
		},
	}
}
