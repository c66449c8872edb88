package document

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
	"golang.org/x/sync/errgroup"
)

// TokenizeAll tokenizes independent texts concurrently, at most jobs at a
// time (unbounded when jobs <= 0). The grammar is shared read-only; each
// document threads its own stacks, so no other coordination is needed.
func TokenizeAll(ctx context.Context, g *tokenizer.Grammar, texts []string, jobs int) ([]*Document, error) {
	docs := make([]*Document, len(texts))
	eg, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		eg.SetLimit(jobs)
	}
	for i, text := range texts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Trace(err)
			}
			docs[i] = New(g, text)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
