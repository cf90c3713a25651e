// Package concurrency exercises spec.md §5's thread-safety requirement for
// matchers and handlers: several independently-constructed strategy.Strategy
// instances, each running on its own goroutine, may share the exact same
// matcher.Matcher and handler.Handler values. It is grounded on the
// teacher's discovery.Walker.Walk, which runs bounded errgroup workers over
// a slice and collects results at matching indices.
package concurrency

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/harvx/streamson/internal/xlog"
	"github.com/harvx/streamson/strategy"
)

var log = xlog.For("concurrency")

// Result is one chunk's outcome, at the same index as the input chunk.
type Result struct {
	Output []byte
	Err    error
}

// FanOut runs one independently-built strategy.Strategy instance per entry
// in chunks, up to n concurrently (n <= 0 defaults to runtime.NumCPU()).
// build is called once per chunk and is expected to close over shared
// matcher.Matcher/handler.Handler values and call AddMatcher with them on
// each fresh Strategy — the matchers and handlers are the only state shared
// across goroutines, proving they tolerate concurrent use from independent
// Strategy instances. Each worker feeds its whole chunk through Process,
// then Terminate, and its combined output lands in the result slice at the
// chunk's index; a worker's error is captured in that index's Result.Err
// rather than aborting the others.
func FanOut(ctx context.Context, n int, build func() strategy.Strategy, chunks [][]byte) ([]Result, error) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	limit := n
	if limit > len(chunks) {
		limit = len(chunks)
	}
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			s := build()
			out, err := s.Process(chunk)
			if err != nil {
				results[i] = Result{Err: fmt.Errorf("chunk %d: %w", i, err)}
				log.Debug("fanout worker failed", "chunk", i, "err", err)
				return nil
			}
			tail, err := s.Terminate()
			if err != nil {
				results[i] = Result{Output: out, Err: fmt.Errorf("chunk %d: terminate: %w", i, err)}
				return nil
			}
			results[i] = Result{Output: append(out, tail...)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Log(ctx, slog.LevelDebug, "fanout complete", "chunks", len(chunks), "workers", limit)
	return results, nil
}
