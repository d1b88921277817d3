// Public domain.

// Package pipeline decodes and filters observation lines on a pool of
// worker goroutines, delivering results in input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/soniakeys/obs80/filter"
	"github.com/soniakeys/obs80/mpc"
)

// Config holds the pipeline options.
type Config struct {
	// Workers is the number of decode goroutines.  Zero or less means
	// runtime.GOMAXPROCS(0).
	Workers int
	Decoder mpc.Decoder
	// Filter selects records.  Nil keeps all records.
	Filter *filter.Filter
}

// Visit is called once for each selected record, with lerr nil, and once
// for each line that did not decode, with r nil.  Calls are sequential and
// in input order.  A non-nil return stops the pipeline.
type Visit func(r *mpc.Record, lerr *mpc.LineError) error

type job struct {
	n    int
	text string
	long *mpc.LineError // set for a line too long to decode
	rch  chan result    // ticket for picking up the result
}

type result struct {
	r    *mpc.Record
	lerr *mpc.LineError
}

// Run reads lines from in, decodes and filters them on cfg.Workers
// goroutines, and calls visit with the results in input order.
//
// Run returns the first of: an error reading in, an error from visit, or
// the context error if ctx is cancelled.  A read blocked in in.Read is
// not interrupted by cancellation.
func Run(ctx context.Context, in io.Reader, cfg Config, visit Visit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)

	// jobCh feeds the workers.  tickCh holds each job's result channel in
	// input order.  It is buffered so a fast worker can drop off a result
	// without waiting for workers ahead of it.
	jobCh := make(chan *job)
	tickCh := make(chan chan result, workers*2)

	// dispatcher
	g.Go(func() error {
		defer close(tickCh)
		defer close(jobCh)
		s := mpc.NewLineScanner(in)
		for s.Scan() {
			j := &job{s.Line(), s.Text(), s.Overlong(), make(chan result, 1)}
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case tickCh <- j.rch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := s.Err(); err != nil {
			return fmt.Errorf("obs80: reading line %d: %w", s.Line()+1, err)
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range jobCh {
				j.rch <- work(cfg, j) // buffered.  never blocks
			}
			return nil
		})
	}

	// collector
	g.Go(func() error {
		for rch := range tickCh {
			var res result
			select {
			case res = <-rch:
			case <-ctx.Done():
				return ctx.Err()
			}
			if res.r == nil && res.lerr == nil {
				continue // filtered out
			}
			if err := visit(res.r, res.lerr); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

func work(cfg Config, j *job) result {
	if j.long != nil {
		return result{lerr: j.long}
	}
	r, err := cfg.Decoder.DecodeLine(j.n, j.text)
	if err != nil {
		var le *mpc.LineError
		errors.As(err, &le)
		return result{lerr: le}
	}
	if cfg.Filter != nil && !cfg.Filter.Match(r) {
		return result{}
	}
	return result{r: r}
}
