package reftree

import (
	"fmt"
	"io"
	"strconv"
)

// Parse builds a Value tree from r using a small hand-written recursive
// descent parser. Only called from tests against documents already known
// to be valid JSON (either test fixtures or the minifier's own output), so
// it favors directness over the production Machine's byte-at-a-time state
// machine: read everything, then walk it recursively.
func Parse(r io.Reader) (*Value, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return &Value{}, err
	}
	return ParseBytes(b)
}

// ParseString builds a Value tree from s.
func ParseString(s string) (*Value, error) {
	return ParseBytes([]byte(s))
}

// ParseBytes builds a Value tree from b.
func ParseBytes(b []byte) (*Value, error) {
	p := &parser{src: b}
	p.skipSpace()
	val, err := p.parseValue()
	if err != nil {
		return &Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return &Value{}, p.errorf("trailing data after value")
	}
	return val, nil
}

type parser struct {
	src []byte
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: at byte %d: %s", ErrParse, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// expect consumes b if it's the next byte, failing otherwise.
func (p *parser) expect(b byte) error {
	got, ok := p.peek()
	if !ok || got != b {
		return p.errorf("expected %q", b)
	}
	p.pos++
	return nil
}

// expectLiteral consumes the rest of a known keyword (true/false/null)
// whose first byte the caller already matched.
func (p *parser) expectLiteral(word string) error {
	if p.pos+len(word) > len(p.src) || string(p.src[p.pos:p.pos+len(word)]) != word {
		return p.errorf("invalid literal, expected %q", word)
	}
	p.pos += len(word)
	return nil
}

func (p *parser) parseValue() (*Value, error) {
	b, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}
	switch {
	case b == '{':
		return p.parseObject()
	case b == '[':
		return p.parseArray()
	case b == '"':
		return p.parseString()
	case b == 't':
		if err := p.expectLiteral("true"); err != nil {
			return nil, err
		}
		return &Value{kind: Boolean, boolean: true}, nil
	case b == 'f':
		if err := p.expectLiteral("false"); err != nil {
			return nil, err
		}
		return &Value{kind: Boolean, boolean: false}, nil
	case b == 'n':
		if err := p.expectLiteral("null"); err != nil {
			return nil, err
		}
		return &Value{kind: Null}, nil
	case b == '-' || (b >= '0' && b <= '9'):
		return p.parseNumber()
	default:
		return nil, p.errorf("unexpected byte %q", b)
	}
}

func (p *parser) parseObject() (*Value, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	p.skipSpace()
	v := &Value{kind: Object}
	if b, ok := p.peek(); ok && b == '}' {
		p.pos++
		return v, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.fields = append(v.fields, member{key: key.str, val: val})
		p.skipSpace()
		b, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated object")
		}
		if b == ',' {
			p.pos++
			continue
		}
		if b == '}' {
			p.pos++
			return v, nil
		}
		return nil, p.errorf("expected ',' or '}', got %q", b)
	}
}

func (p *parser) parseArray() (*Value, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	p.skipSpace()
	v := &Value{kind: Array}
	if b, ok := p.peek(); ok && b == ']' {
		p.pos++
		return v, nil
	}
	for {
		p.skipSpace()
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.items = append(v.items, item)
		p.skipSpace()
		b, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated array")
		}
		if b == ',' {
			p.pos++
			continue
		}
		if b == ']' {
			p.pos++
			return v, nil
		}
		return nil, p.errorf("expected ',' or ']', got %q", b)
	}
}

// parseString consumes a quoted string, unescaping it via strconv.Unquote
// (after normalizing the one escape JSON allows that Go's string literal
// grammar doesn't: a bare `\/`).
func (p *parser) parseString() (*Value, error) {
	start := p.pos
	if err := p.expect('"'); err != nil {
		return nil, err
	}
	for {
		b, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated string")
		}
		p.pos++
		switch b {
		case '"':
			raw := p.src[start:p.pos]
			unescaped, err := unquoteJSONString(raw)
			if err != nil {
				return nil, p.errorf("invalid string literal: %v", err)
			}
			return &Value{kind: String, str: unescaped}, nil
		case '\\':
			if _, ok := p.peek(); !ok {
				return nil, p.errorf("unterminated escape")
			}
			esc := p.src[p.pos]
			p.pos++
			if esc == 'u' {
				if p.pos+4 > len(p.src) {
					return nil, p.errorf("unterminated unicode escape")
				}
				p.pos += 4
			}
		}
	}
}

// unquoteJSONString turns a raw `"..."` slice (escapes untouched) into its
// Go string value. strconv.Unquote handles every JSON escape except `\/`,
// which Go's own string grammar doesn't recognize, so that one is
// normalized to a bare `/` first.
func unquoteJSONString(raw []byte) (string, error) {
	normalized := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			if raw[i+1] == '/' {
				normalized = append(normalized, '/')
			} else {
				normalized = append(normalized, raw[i], raw[i+1])
			}
			i++
			continue
		}
		normalized = append(normalized, raw[i])
	}
	return strconv.Unquote(string(normalized))
}

func (p *parser) parseNumber() (*Value, error) {
	start := p.pos
	isFloat := false

	if b, ok := p.peek(); ok && b == '-' {
		p.pos++
	}
	if b, ok := p.peek(); !ok || b < '0' || b > '9' {
		return nil, p.errorf("invalid number")
	}
	if b, _ := p.peek(); b == '0' {
		p.pos++
	} else {
		for {
			b, ok := p.peek()
			if !ok || b < '0' || b > '9' {
				break
			}
			p.pos++
		}
	}
	if b, ok := p.peek(); ok && b == '.' {
		isFloat = true
		p.pos++
		if b, ok := p.peek(); !ok || b < '0' || b > '9' {
			return nil, p.errorf("invalid number: digit required after '.'")
		}
		for {
			b, ok := p.peek()
			if !ok || b < '0' || b > '9' {
				break
			}
			p.pos++
		}
	}
	if b, ok := p.peek(); ok && (b == 'e' || b == 'E') {
		isFloat = true
		p.pos++
		if b, ok := p.peek(); ok && (b == '+' || b == '-') {
			p.pos++
		}
		if b, ok := p.peek(); !ok || b < '0' || b > '9' {
			return nil, p.errorf("invalid number: digit required in exponent")
		}
		for {
			b, ok := p.peek()
			if !ok || b < '0' || b > '9' {
				break
			}
			p.pos++
		}
	}

	text := string(p.src[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q: %v", text, err)
		}
		return &Value{kind: Number, num: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid integer %q: %v", text, err)
	}
	return &Value{kind: Integer, integer: n}, nil
}
