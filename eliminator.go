package minify

import "encoding/binary"

// The eliminator (§4.3) is the fast path for the common case in
// pretty-printed JSON: long runs of indentation and newline whitespace
// between structural tokens. It scans 8 bytes at a time with SWAR
// (SIMD-within-a-register) bit tricks rather than branching per byte, and
// batches those 8-byte words into wider blocks sized by the probed vector
// level so a block that is entirely whitespace is recognized and dropped in
// one comparison.
//
// It only ever skips bytes it can prove are whitespace; every other byte —
// structural, digit, letter, quote, backslash — is left for the scalar
// Machine to consume one at a time, since only the Machine tracks container
// depth and grammar state. Blindly bulk-copying non-whitespace bytes here
// would let a `{` or `"` slip past the Machine's push/pop and string-entry
// logic unexamined.

const (
	swarLo   = 0x0101010101010101
	swarHi   = 0x8080808080808080
	swarLow7 = 0x7f7f7f7f7f7f7f7f
)

// hasByteSWAR sets the high bit of every lane in x that equals n, and
// clears the rest. Exact per-lane "find a zero byte" trick applied to
// x^broadcast(n): adding 0x7f to the low seven bits of each lane never
// carries into the next lane, so no lane is flagged by a neighbour.
func hasByteSWAR(x uint64, n byte) uint64 {
	y := x ^ (swarLo * uint64(n))
	return ^(((y & swarLow7) + swarLow7) | y | swarLow7)
}

func whitespaceLaneMask(x uint64) uint64 {
	return hasByteSWAR(x, ' ') | hasByteSWAR(x, '\t') | hasByteSWAR(x, '\n') | hasByteSWAR(x, '\r')
}

// blockWords is how many 8-byte SWAR words the eliminator batches into one
// block for a given probed SIMDLevel, approximating that level's register
// width (128/256/512 bits, or NEON's 128 bits).
func blockWords(level SIMDLevel) int {
	switch level {
	case SIMDV512:
		return 8
	case SIMDV256:
		return 4
	case SIMDV128, SIMDNeon:
		return 2
	default:
		return 1
	}
}

// skipWhitespace returns the count of leading bytes in src that are
// whitespace (space, tab, LF, CR), scanning whole words/blocks at a time so
// long indentation runs cost a handful of compares instead of one branch per
// byte. It stops at the first byte of any other kind — the caller is
// responsible for handing that byte to the scalar Machine.
func skipWhitespace(level SIMDLevel, src []byte) int {
	blockBytes := blockWords(level) * 8
	i := 0
	for i+blockBytes <= len(src) {
		allWhitespace := true
		for w := 0; w*8 < blockBytes; w++ {
			word := binary.LittleEndian.Uint64(src[i+w*8 : i+w*8+8])
			if whitespaceLaneMask(word) != swarHi {
				allWhitespace = false
				break
			}
		}
		if !allWhitespace {
			break
		}
		i += blockBytes
	}
	for i < len(src) && isWhitespace(src[i]) {
		i++
	}
	return i
}
