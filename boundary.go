package minify

// discardSink throws away every write; it exists so the boundary resolver
// can drive a Machine for its side effects (state transitions) without
// paying for an output buffer.
type discardSink struct{}

func (discardSink) write(p []byte) error { return nil }

// resolveBoundary implements the Chunk Boundary Resolver (§4.4). Starting a
// Machine from the given snapshot, it scans buf[:k] looking for the
// furthest quiescent offset it can reach, returning that offset and the
// Machine's snapshot there so the caller can seed the next chunk.
//
// The forward pass here intentionally reuses the scalar Machine's own
// string/escape/structural tracking rather than a second, separate
// string-scanning pass, so the two can never disagree about context. It
// returns ok=false when no offset beyond 0 is quiescent within buf[:k] —
// buf opens mid-string for its whole length, or k is degenerate — and the
// caller should fold the remainder into a single chunk rather than split
// somewhere unsafe.
func resolveBoundary(buf []byte, k int, start machineSnapshot) (offset int, snap machineSnapshot, ok bool) {
	if k <= 0 {
		return 0, start, false
	}
	if k > len(buf) {
		k = len(buf)
	}

	m := newMachineFromSnapshot(discardSink{}, start)
	bestOffset, bestSnap := 0, start
	reached := k
	for i := 0; i < k; i++ {
		if m.IsQuiescent() {
			bestOffset, bestSnap = i, m.snapshot()
		}
		if err := m.step(buf[i]); err != nil {
			reached = i
			break
		}
		m.pos++
	}
	if reached == k && m.IsQuiescent() {
		bestOffset, bestSnap = k, m.snapshot()
	}
	if bestOffset == 0 {
		return 0, start, false
	}
	return bestOffset, bestSnap, true
}
