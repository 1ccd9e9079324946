package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch preprocesses texts concurrently with at most workers
// goroutines (GOMAXPROCS when workers <= 0). Results keep input order.
// The first failure cancels the remaining work and no results are returned.
func (p *Pipeline) ProcessBatch(ctx context.Context, texts []string, workers int) ([]string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		g.Go(func() error {
			out, err := p.Preprocess(gctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
