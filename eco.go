package minify

import (
	"bufio"
	"io"
)

// ecoBufferSize is ECO's fixed input/output buffer size (§4.5): constant
// regardless of input size, which is the whole point of the mode — a
// caller minifying a 10 GiB stream on a memory-constrained box still only
// ever holds two ecoBufferSize buffers (one for input, one for output)
// beyond the Machine itself.
const ecoBufferSize = 64 * 1024

// ecoEngine is the pure scalar engine: no SIMD, no worker pool, just the
// Machine over a small fixed buffer (§4.5 step "ECO").
type ecoEngine struct{}

func newEcoEngine() *ecoEngine { return &ecoEngine{} }

func (e *ecoEngine) run(r io.Reader, w io.Writer) (int64, int64, bool, error) {
	bw := bufio.NewWriterSize(w, ecoBufferSize)
	cw := &countingWriter{w: bw}
	m := NewMachine(&writerSink{w: cw})

	buf := make([]byte, ecoBufferSize)
	var bytesIn int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			bytesIn += int64(n)
			if err := m.Feed(buf[:n]); err != nil {
				return bytesIn, cw.n, false, err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return bytesIn, cw.n, false, newWriterError(m.pos, rerr)
		}
	}
	if err := m.Flush(); err != nil {
		return bytesIn, cw.n, false, err
	}
	if err := bw.Flush(); err != nil {
		return bytesIn, cw.n, false, newWriterError(m.pos, err)
	}
	return bytesIn, cw.n, false, nil
}

func (e *ecoEngine) runBytes(input []byte) ([]byte, bool, error) {
	dst := &sliceSink{buf: make([]byte, 0, len(input))}
	m := NewMachine(dst)

	for off := 0; off < len(input); off += ecoBufferSize {
		end := off + ecoBufferSize
		if end > len(input) {
			end = len(input)
		}
		if err := m.Feed(input[off:end]); err != nil {
			return nil, false, err
		}
	}
	if err := m.Flush(); err != nil {
		return nil, false, err
	}
	return dst.buf, false, nil
}
