package minify

import (
	"bufio"
	"io"
	"math"
)

// sportStreamChunk sizes the streaming read/write buffers when the total
// input length isn't known upfront; it is the size sportBufferSize picks
// for a 1 TiB input, and needs no seekable reader.
const sportStreamChunk = 1 << 20

// sportEngine is the scalar engine over a larger, input-scaled intermediate
// buffer than ECO's fixed 64 KiB — still single-threaded, but amortizing
// per-call overhead better on larger inputs (§4.5 step "SPORT").
type sportEngine struct{}

func newSportEngine() *sportEngine { return &sportEngine{} }

// sportBufferSize is min(ceil(sqrt(n)), maxChunkSize), floored at
// minChunkSize so tiny inputs don't thrash with a sub-page buffer.
func sportBufferSize(n int) int {
	size := int(math.Ceil(math.Sqrt(float64(n))))
	if size < minChunkSize {
		size = minChunkSize
	}
	if size > maxChunkSize {
		size = maxChunkSize
	}
	return size
}

func (e *sportEngine) run(r io.Reader, w io.Writer) (int64, int64, bool, error) {
	bw := bufio.NewWriterSize(w, sportStreamChunk)
	cw := &countingWriter{w: bw}
	m := NewMachine(&writerSink{w: cw})

	br := bufio.NewReaderSize(r, sportStreamChunk)
	buf := make([]byte, sportStreamChunk)
	var bytesIn int64
	for {
		n, rerr := br.Read(buf)
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

func (e *sportEngine) runBytes(input []byte) ([]byte, bool, error) {
	dst := &sliceSink{buf: make([]byte, 0, len(input))}
	m := NewMachine(dst)

	chunk := sportBufferSize(len(input))
	for off := 0; off < len(input); off += chunk {
		end := off + chunk
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
