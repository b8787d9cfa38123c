package minify

import (
	"context"
	"io"
)

// turboEngine is the SIMD-eliminator-plus-parallel-dispatch engine (§4.5
// step "TURBO"). It degrades to a single eliminator+Machine pass when the
// input is below parallelThreshold, the platform has no usable parallelism,
// or the Chunk Boundary Resolver cannot find a safe interior split — all
// three are ordinary, expected outcomes, not failures.
type turboEngine struct {
	logger *opLogger
}

func newTurboEngine(logger *opLogger) *turboEngine {
	return &turboEngine{logger: logger}
}

// run reads r fully before dispatching: unlike ECO/SPORT, the Parallel
// Dispatcher needs random access to carve the document into independently
// processable chunks, so TURBO cannot begin writing before it has seen the
// whole input (§4.6).
func (e *turboEngine) run(r io.Reader, w io.Writer) (int64, int64, bool, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, false, newWriterError(0, err)
	}
	out, degraded, err := e.runBytes(input)
	if err != nil {
		return int64(len(input)), 0, degraded, err
	}
	n, werr := w.Write(out)
	if werr != nil {
		return int64(len(input)), int64(n), degraded, newWriterError(int64(len(input)), werr)
	}
	return int64(len(input)), int64(n), degraded, nil
}

func (e *turboEngine) runBytes(input []byte) ([]byte, bool, error) {
	caps := Probe()
	n := len(input)

	if n < parallelThreshold {
		out, err := e.singlePass(input, caps.SIMDLevel)
		return out, false, err
	}

	workers := chooseWorkerCount(n, caps.LogicalCPUs)
	if workers <= 1 {
		out, err := e.singlePass(input, caps.SIMDLevel)
		return out, false, err
	}

	jobs := planChunks(input, workers)
	if len(jobs) <= 1 {
		// The boundary resolver found no safe interior split — e.g. one
		// monolithic nested document with no quiescent point near any
		// candidate cut. Still SIMD-accelerated, just single-threaded.
		e.logf("turbo: no interior chunk boundary found, falling back to a single pass over %d bytes", n)
		out, err := e.singlePass(input, caps.SIMDLevel)
		return out, false, err
	}

	e.logf("turbo: dispatching %d chunks across %d workers", len(jobs), workers)
	outs, err := dispatch(context.Background(), jobs, workers, caps.SIMDLevel)
	if err != nil {
		return nil, false, err
	}

	total := 0
	for _, o := range outs {
		total += len(o)
	}
	buf := make([]byte, 0, total)
	for _, o := range outs {
		buf = append(buf, o...)
	}
	return buf, false, nil
}

// singlePass runs the whole input through one eliminator+Machine pipeline.
func (e *turboEngine) singlePass(input []byte, level SIMDLevel) ([]byte, error) {
	return runChunk(chunkJob{data: input, isFinal: true}, level)
}

// planChunks splits input into quiescent-bounded spans targeting workers
// chunks (§4.4, §4.7). A span whose proposed cut has no nearby quiescent
// point folds the remainder into one final chunk rather than splitting
// somewhere unsafe — the "reduce W" behavior §4.6 calls for.
func planChunks(input []byte, workers int) []chunkJob {
	n := len(input)
	chunkSize := chooseChunkSize(n, workers)

	var jobs []chunkJob
	start := 0
	snap := machineSnapshot{}
	for start < n {
		remaining := input[start:]
		if len(remaining) <= chunkSize {
			jobs = append(jobs, chunkJob{index: len(jobs), data: remaining, offset: int64(start), start: snap, isFinal: true})
			break
		}
		cut, nextSnap, ok := resolveBoundary(remaining, chunkSize, snap)
		if !ok {
			jobs = append(jobs, chunkJob{index: len(jobs), data: remaining, offset: int64(start), start: snap, isFinal: true})
			break
		}
		jobs = append(jobs, chunkJob{index: len(jobs), data: remaining[:cut], offset: int64(start), start: snap, isFinal: false})
		start += cut
		snap = nextSnap
	}
	return jobs
}

func (e *turboEngine) logf(format string, args ...interface{}) {
	if e != nil && e.logger != nil {
		e.logger.infof(format, args...)
	}
}
