package minify

import "io"

// MaxNestingDepth bounds the container stack (§3 "Context stack"). 128 is
// the depth the spec recommends; exceeding it fails with NestingTooDeep.
const MaxNestingDepth = 128

// containerKind is an entry on the context stack.
type containerKind uint8

const (
	containerArray containerKind = iota
	containerObject
)

// expect names what the parser is waiting for while in the TopLevel or
// StructuralPending state (§3). It is the "explicit at-container-boundary
// flag" the spec's is_quiescent() query refers to.
type expect uint8

const (
	expectRootValue expect = iota
	expectValue            // after `:` or after `,` in an array
	expectValueOrArrayClose
	expectKeyOrObjectClose
	expectKeyAfterComma
	expectColon
	expectCommaOrArrayClose
	expectCommaOrObjectClose
	expectEOF // root value consumed, stack empty: only whitespace/EOF valid
)

// litKind identifies which fixed literal (true/false/null) is mid-scan.
type litKind uint8

const (
	litNone litKind = iota
	litTrue
	litFalse
	litNull
)

var litText = [...]string{litTrue: "true", litFalse: "false", litNull: "null"}

// numPhase tracks progress through the number grammar
// -? (0 | [1-9][0-9]*) (.[0-9]+)? ([eE][+-]?[0-9]+)?
// Names follow the teacher parser's number sub-state mnemonics (mi/ze/in/fr/fs/e1/e2/e3).
type numPhase uint8

const (
	numNone numPhase = iota
	numMinus
	numZero
	numInt
	numFracFirst
	numFracRest
	numExpE
	numExpSign
	numExpDigit
)

// machineState is the coarse state from §3's table, used by is_quiescent.
type machineState uint8

const (
	stTopOrStructural machineState = iota // TopLevel or StructuralPending, discriminated by expect
	stInValue                             // InValue: scanning a literal (number/true/false/null)
	stInString
	stInStringEscape
	stInStringUnicode
)

// sink is the narrow interface the Machine writes kept bytes to. Two
// implementations exist: one wraps an io.Writer (streaming ECO/SPORT), the
// other appends directly to a []byte (in-memory modes and TURBO's
// per-worker chunk buffers).
type sink interface {
	write(p []byte) error
}

type writerSink struct {
	w   io.Writer
	pos int64 // absolute offset at start of this sink's stream, for error reporting
}

func (s *writerSink) write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := s.w.Write(p); err != nil {
		return newWriterError(s.pos, err)
	}
	return nil
}

// sliceSink appends to an in-memory buffer; it never fails.
type sliceSink struct {
	buf []byte
}

func (s *sliceSink) write(p []byte) error {
	s.buf = append(s.buf, p...)
	return nil
}

// Machine is the scalar state machine at the core of every Mode (§4.2). It
// consumes bytes via Feed and Flush, writing every kept byte to its sink,
// dropping insignificant whitespace outside string context, and validating
// JSON grammar as it goes. A Machine may be reused across calls via Reset.
type Machine struct {
	out sink
	pos int64

	state   machineState
	exp     expect
	stack   [MaxNestingDepth]containerKind
	depth   int
	lit     litKind
	litPos  int
	num     numPhase
	unicode int // remaining hex digits expected after \u
	// stringIsKey distinguishes, for the string currently being scanned,
	// whether it is an object key (closing quote expects `:` next) or a
	// value (closing quote runs the normal afterValue transition).
	stringIsKey bool
}

// NewMachine creates a Machine writing kept bytes to out.
func NewMachine(out sink) *Machine {
	m := &Machine{out: out}
	m.Reset(out)
	return m
}

// Reset clears all parser state and rebinds the output sink, so a single
// Machine instance can be reused across calls (§3 "Lifecycle").
func (m *Machine) Reset(out sink) {
	*m = Machine{out: out, exp: expectRootValue}
}

// IsQuiescent reports whether the machine is at a safe chunk boundary: not
// mid-string, mid-escape, or mid-literal (§3, §4.2, §4.4). This says nothing
// about container depth — a position between two array elements three
// levels deep is just as unambiguous a resumption point as top level, since
// the byte stream itself carries no nesting ambiguity there. What makes
// resuming from such a point safe is seeding the new Machine with a
// snapshot of the original's container stack and expectation, which
// resolveBoundary's caller is responsible for capturing (see snapshot).
// It only reads the current state, so it may be called between any two bytes.
func (m *Machine) IsQuiescent() bool {
	return m.state == stTopOrStructural
}

// machineSnapshot captures enough of a Machine's grammar state to resume
// parsing at a quiescent point without replaying everything before it
// (§4.4, §4.6): the container stack, its depth, and what the grammar expects
// next.
type machineSnapshot struct {
	stack [MaxNestingDepth]containerKind
	depth int
	exp   expect
}

// snapshot captures m's resumable state. Only valid to call when
// IsQuiescent reports true.
func (m *Machine) snapshot() machineSnapshot {
	return machineSnapshot{stack: m.stack, depth: m.depth, exp: m.exp}
}

// newMachineFromSnapshot creates a Machine picking up exactly where snap
// left off, writing kept bytes to out.
func newMachineFromSnapshot(out sink, snap machineSnapshot) *Machine {
	return &Machine{
		out:   out,
		state: stTopOrStructural,
		stack: snap.stack,
		depth: snap.depth,
		exp:   snap.exp,
	}
}

func (m *Machine) pushContainer(k containerKind) error {
	if m.depth >= MaxNestingDepth {
		return newOffsetError(NestingTooDeep, m.pos)
	}
	m.stack[m.depth] = k
	m.depth++
	return nil
}

func (m *Machine) popContainer() (containerKind, bool) {
	if m.depth == 0 {
		return 0, false
	}
	m.depth--
	return m.stack[m.depth], true
}

func (m *Machine) topContainer() (containerKind, bool) {
	if m.depth == 0 {
		return 0, false
	}
	return m.stack[m.depth-1], true
}

// Feed consumes a slice of input bytes, writing the kept subset to the sink.
// It returns a *Error on the first grammar violation.
func (m *Machine) Feed(b []byte) error {
	for i := 0; i < len(b); i++ {
		if err := m.step(b[i]); err != nil {
			return err
		}
		m.pos++
	}
	return nil
}

// Flush signals end of input. It fails with Truncated if a value is still
// incomplete (non-empty container stack, or a literal/string cut short).
func (m *Machine) Flush() error {
	if m.pos == 0 {
		// Empty input (§8 boundary behavior): zero bytes ever seen is not
		// the same as an all-whitespace stream that resolved to zero kept
		// bytes — the latter still reports Truncated below.
		return nil
	}
	switch m.state {
	case stInString, stInStringEscape, stInStringUnicode:
		return newOffsetError(Truncated, m.pos)
	case stInValue:
		if !m.literalTerminable() {
			return newOffsetError(Truncated, m.pos)
		}
		m.endLiteral()
	}
	if m.depth != 0 || m.exp == expectRootValue {
		return newOffsetError(Truncated, m.pos)
	}
	return nil
}

func (m *Machine) reject(b byte) error {
	return newParseError(UnexpectedByte, m.pos, b)
}

func (m *Machine) step(b byte) error {
	switch m.state {
	case stInString:
		return m.stepString(b)
	case stInStringEscape:
		return m.stepEscape(b)
	case stInStringUnicode:
		return m.stepUnicode(b)
	case stInValue:
		return m.stepLiteral(b)
	default:
		return m.stepStructural(b)
	}
}

func (m *Machine) stepString(b byte) error {
	switch b {
	case '"':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		if m.stringIsKey {
			m.state = stTopOrStructural
			m.exp = expectColon
		} else {
			m.state = stTopOrStructural
			m.afterValue()
		}
		return nil
	case '\\':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		m.state = stInStringEscape
		return nil
	default:
		return m.out.write([]byte{b})
	}
}

func (m *Machine) stepEscape(b byte) error {
	switch b {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		m.state = stInString
		return nil
	case 'u':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		m.state = stInStringUnicode
		m.unicode = 4
		return nil
	default:
		return newParseError(InvalidEscape, m.pos, b)
	}
}

func (m *Machine) stepUnicode(b byte) error {
	if !isHexDigit(b) {
		return newParseError(InvalidUnicodeEscape, m.pos, b)
	}
	if err := m.out.write([]byte{b}); err != nil {
		return err
	}
	m.unicode--
	if m.unicode == 0 {
		m.state = stInString
	}
	return nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// stepStructural handles the TopLevel/StructuralPending state, discriminated
// by m.exp: structural bytes, whitespace (dropped), value-starting bytes.
func (m *Machine) stepStructural(b byte) error {
	if isWhitespace(b) {
		return nil // dropped per §3 invariant and §4.2 whitespace policy
	}

	switch m.exp {
	case expectRootValue, expectValue, expectValueOrArrayClose:
		return m.startValue(b)
	case expectKeyOrObjectClose:
		if b == '"' {
			return m.startString(true)
		}
		if b == '}' {
			return m.closeObject(b)
		}
		return m.reject(b)
	case expectKeyAfterComma:
		if b == '"' {
			return m.startString(true)
		}
		return m.reject(b)
	case expectColon:
		if b == ':' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.exp = expectValue
			return nil
		}
		return m.reject(b)
	case expectCommaOrArrayClose:
		if b == ',' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.exp = expectValue
			return nil
		}
		if b == ']' {
			return m.closeArray(b)
		}
		return m.reject(b)
	case expectCommaOrObjectClose:
		if b == ',' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.exp = expectKeyAfterComma
			return nil
		}
		if b == '}' {
			return m.closeObject(b)
		}
		return m.reject(b)
	case expectEOF:
		return m.reject(b)
	}
	return m.reject(b)
}

func (m *Machine) startValue(b byte) error {
	switch {
	case b == '"':
		return m.startString(false)
	case b == '{':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		if err := m.pushContainer(containerObject); err != nil {
			return err
		}
		m.exp = expectKeyOrObjectClose
		return nil
	case b == '[':
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		if err := m.pushContainer(containerArray); err != nil {
			return err
		}
		m.exp = expectValueOrArrayClose
		return nil
	case b == ']' && m.exp == expectValueOrArrayClose:
		return m.closeArray(b)
	case b == '-' || (b >= '0' && b <= '9'):
		return m.startNumber(b)
	case b == 't':
		return m.startLiteral(litTrue, b)
	case b == 'f':
		return m.startLiteral(litFalse, b)
	case b == 'n':
		return m.startLiteral(litNull, b)
	default:
		return m.reject(b)
	}
}

func (m *Machine) startString(isKey bool) error {
	if err := m.out.write([]byte{'"'}); err != nil {
		return err
	}
	m.state = stInString
	m.stringIsKey = isKey
	return nil
}

func (m *Machine) startLiteral(k litKind, first byte) error {
	if err := m.out.write([]byte{first}); err != nil {
		return err
	}
	m.state = stInValue
	m.lit = k
	m.litPos = 1
	m.num = numNone
	return nil
}

func (m *Machine) startNumber(first byte) error {
	if err := m.out.write([]byte{first}); err != nil {
		return err
	}
	m.state = stInValue
	m.lit = litNone
	switch {
	case first == '-':
		m.num = numMinus
	case first == '0':
		m.num = numZero
	default:
		m.num = numInt
	}
	return nil
}

func (m *Machine) stepLiteral(b byte) error {
	if m.lit != litNone {
		return m.stepFixedLiteral(b)
	}
	return m.stepNumber(b)
}

func (m *Machine) stepFixedLiteral(b byte) error {
	want := litText[m.lit]
	if b != want[m.litPos] {
		return m.reject(b)
	}
	if err := m.out.write([]byte{b}); err != nil {
		return err
	}
	m.litPos++
	if m.litPos == len(want) {
		m.endLiteral()
	}
	return nil
}

func (m *Machine) stepNumber(b byte) error {
	switch m.num {
	case numMinus:
		if b < '0' || b > '9' {
			return m.reject(b)
		}
		if err := m.out.write([]byte{b}); err != nil {
			return err
		}
		if b == '0' {
			m.num = numZero
		} else {
			m.num = numInt
		}
		return nil
	case numZero, numInt:
		if b >= '0' && b <= '9' && m.num == numInt {
			return m.out.write([]byte{b})
		}
		if b == '.' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numFracFirst
			return nil
		}
		if b == 'e' || b == 'E' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numExpE
			return nil
		}
		return m.endLiteralAndReprocess(b)
	case numFracFirst, numFracRest:
		if b >= '0' && b <= '9' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numFracRest
			return nil
		}
		if m.num == numFracFirst {
			return m.reject(b)
		}
		if b == 'e' || b == 'E' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numExpE
			return nil
		}
		return m.endLiteralAndReprocess(b)
	case numExpE:
		if b == '+' || b == '-' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numExpSign
			return nil
		}
		if b >= '0' && b <= '9' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numExpDigit
			return nil
		}
		return m.reject(b)
	case numExpSign:
		if b >= '0' && b <= '9' {
			if err := m.out.write([]byte{b}); err != nil {
				return err
			}
			m.num = numExpDigit
			return nil
		}
		return m.reject(b)
	case numExpDigit:
		if b >= '0' && b <= '9' {
			return m.out.write([]byte{b})
		}
		return m.endLiteralAndReprocess(b)
	}
	return m.reject(b)
}

// literalTerminable reports whether the in-progress number is in a state
// where ending here (EOF or a following structural byte) is grammatically
// valid, vs. mid-fraction/mid-exponent with no digits yet.
func (m *Machine) literalTerminable() bool {
	if m.lit != litNone {
		return false // true/false/null must run to completion
	}
	switch m.num {
	case numZero, numInt, numFracRest, numExpDigit:
		return true
	default:
		return false
	}
}

// endLiteralAndReprocess closes the current literal (which is done, since b
// is not part of it) and reprocesses b in the resulting structural state.
func (m *Machine) endLiteralAndReprocess(b byte) error {
	if !m.literalTerminable() {
		return m.reject(b)
	}
	m.endLiteral()
	return m.step(b)
}

// endLiteral transitions out of InValue back to StructuralPending/TopLevel
// and applies the "just finished a value" grammar transition.
func (m *Machine) endLiteral() {
	m.state = stTopOrStructural
	m.lit = litNone
	m.num = numNone
	m.afterValue()
}

// afterValue updates exp to reflect "a value was just completed", based on
// what (if anything) the context stack's top container is.
func (m *Machine) afterValue() {
	kind, ok := m.topContainer()
	if !ok {
		m.exp = expectEOF
		return
	}
	if kind == containerArray {
		m.exp = expectCommaOrArrayClose
	} else {
		m.exp = expectCommaOrObjectClose
	}
}

func (m *Machine) closeArray(b byte) error {
	kind, ok := m.popContainer()
	if !ok || kind != containerArray {
		return m.reject(b)
	}
	if err := m.out.write([]byte{b}); err != nil {
		return err
	}
	m.afterValue()
	return nil
}

func (m *Machine) closeObject(b byte) error {
	kind, ok := m.popContainer()
	if !ok || kind != containerObject {
		return m.reject(b)
	}
	if err := m.out.write([]byte{b}); err != nil {
		return err
	}
	m.afterValue()
	return nil
}
