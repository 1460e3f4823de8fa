package flowjit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Request describes one compilation in a batch.
type Request struct {
	Name    string
	Graph   *Graph
	Inputs  *SocketSet
	Outputs *SocketSet
	// Options are applied after the options shared by the batch.
	Options []Option
}

// CompileAll compiles independent requests concurrently, at most limit at a
// time (no limit when limit <= 0). Each compilation owns its own builder.
//
// Results are in request order. On the first failure the remaining
// compilations are skipped, every Callable already built is released and the
// error is returned.
func CompileAll(ctx context.Context, reqs []Request, limit int, opts ...Option) ([]*Callable, error) {
	out := make([]*Callable, len(reqs))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, r := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			all := append(append([]Option(nil), opts...), r.Options...)
			c, err := Compile(ctx, r.Graph, r.Name, r.Inputs, r.Outputs, all...)
			if err != nil {
				return fmt.Errorf("compile %s: %w", r.Name, err)
			}
			out[i] = c
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		for _, c := range out {
			if c != nil {
				c.Release()
			}
		}
		return nil, err
	}
	return out, nil
}
