package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/pkg/document"
	"go.uber.org/zap"
)

// input is one source text with the name it was read under.
type input struct {
	name string
	text string
}

// readInputs reads every --input file, or stdin when there are none.
func (a *app) readInputs() ([]input, error) {
	if len(a.inputFiles) == 0 {
		text, err := readFromStdin()
		if err != nil {
			return nil, errors.Annotate(err, "error reading from stdin")
		}
		return []input{{name: "-", text: text}}, nil
	}
	inputs := make([]input, 0, len(a.inputFiles))
	for _, name := range a.inputFiles {
		text, err := readFromFile(name)
		if err != nil {
			return nil, errors.Annotatef(err, "error reading file '%s'", name)
		}
		inputs = append(inputs, input{name: name, text: text})
	}
	return inputs, nil
}

// readFromStdin reads all input from stdin.
func readFromStdin() (string, error) {
	bytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(bytes), nil
}

// readFromFile reads the contents of a file.
func readFromFile(filename string) (string, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(bytes), nil
}

// tokenizeInputs reads the inputs and tokenizes them on the configured
// number of workers.
func (a *app) tokenizeInputs(ctx context.Context) ([]input, []*document.Document, error) {
	g, err := a.loadGrammar()
	if err != nil {
		return nil, nil, err
	}
	inputs, err := a.readInputs()
	if err != nil {
		return nil, nil, err
	}
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.text
	}
	docs, err := document.TokenizeAll(ctx, g, texts, a.cfg.Jobs)
	if err != nil {
		return nil, nil, err
	}
	for i, doc := range docs {
		a.logger.Debug("input tokenized",
			zap.String("input", inputs[i].name),
			zap.Int("lines", doc.Len()))
	}
	return inputs, docs, nil
}

// output is a buffered destination that must be closed.
type output struct {
	*bufio.Writer
	file *os.File
}

// openOutput opens --output, or stdout when it is unset.
func (a *app) openOutput() (*output, error) {
	if a.outputFile == "" {
		return &output{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	file, err := os.Create(a.outputFile)
	if err != nil {
		return nil, errors.Annotatef(err, "error creating output file '%s'", a.outputFile)
	}
	return &output{Writer: bufio.NewWriter(file), file: file}, nil
}

// Close flushes the buffer and closes the file if one was opened.
func (o *output) Close() error {
	err := o.Flush()
	if o.file != nil {
		if cerr := o.file.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Trace(err)
}

// withOutput runs fn against the output and closes it, keeping the first
// error.
func (a *app) withOutput(fn func(w *output) error) error {
	out, err := a.openOutput()
	if err != nil {
		return err
	}
	err = fn(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
