package minify

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// chunkJob is one unit of work submitted to the dispatcher: a byte span of
// the input starting at a quiescent point the Chunk Boundary Resolver
// already confirmed (§4.4), the grammar snapshot to seed the chunk's
// Machine with, its index for order-preserving reassembly, and whether it
// is the final chunk (only the final chunk's Machine is Flushed against
// full-document completion; interior chunks simply stop at their cut).
type chunkJob struct {
	index   int
	data    []byte
	offset  int64
	start   machineSnapshot
	isFinal bool
}

// dispatch runs jobs across a fixed-size worker pool, each worker running
// its own eliminator+Machine pipeline over one chunk, and returns the
// per-chunk outputs indexed by chunk order regardless of completion order
// (§4.6 "work distribution" / "result ordering"). errgroup.WithContext
// cancels ctx on the first worker error, so the submission loop below stops
// handing out chunks that haven't started yet — the cooperative cancellation
// §4.6 asks for, without a second bespoke cancellation mechanism.
func dispatch(ctx context.Context, jobs []chunkJob, workers int, level SIMDLevel) ([][]byte, error) {
	results := make([][]byte, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for _, job := range jobs {
		job := job
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			goto wait
		}
		g.Go(func() error {
			defer func() { <-sem }()
			out, err := runChunk(job, level)
			if err != nil {
				return err
			}
			results[job.index] = out
			return nil
		})
	}
wait:
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runChunk minifies one chunk: whenever the Machine is between tokens
// (stTopOrStructural), the eliminator fast-forwards over any run of
// whitespace with SWAR word compares; every other byte, including every
// structural, string, and literal byte, still goes through the Machine one
// at a time so container depth and grammar state stay correct.
func runChunk(job chunkJob, level SIMDLevel) ([]byte, error) {
	dst := &sliceSink{buf: make([]byte, 0, len(job.data))}
	m := newMachineFromSnapshot(dst, job.start)
	m.pos = job.offset

	src := job.data
	for len(src) > 0 {
		if m.state == stTopOrStructural {
			if n := skipWhitespace(level, src); n > 0 {
				m.pos += int64(n)
				src = src[n:]
				continue
			}
		}
		if err := m.step(src[0]); err != nil {
			return nil, err
		}
		m.pos++
		src = src[1:]
	}
	if job.isFinal {
		if err := m.Flush(); err != nil {
			return nil, err
		}
	}
	return dst.buf, nil
}
