package minify

import (
	"fmt"
	"testing"
)

func TestIsWhitespace(t *testing.T) {
	for _, test := range []struct {
		input    byte
		expected bool
	}{
		{' ', true},
		{'\t', true},
		{'\n', true},
		{'\r', true},
		{'a', false},
		{'{', false},
		{'"', false},
		{'0', false},
	} {
		t.Run(fmt.Sprintf("%q", test.input), func(t *testing.T) {
			if actual := isWhitespace(test.input); actual != test.expected {
				t.Errorf("isWhitespace(%q): expected %v got %v", test.input, test.expected, actual)
			}
		})
	}
}

func TestClassifyStructural(t *testing.T) {
	for _, b := range []byte{'{', '}', '[', ']', ',', ':'} {
		t.Run(fmt.Sprintf("%q", b), func(t *testing.T) {
			if classify[b] != classStructural {
				t.Errorf("classify[%q]: expected classStructural got %v", b, classify[b])
			}
		})
	}
}

func TestClassifyDigitsAndSign(t *testing.T) {
	for b := '0'; b <= '9'; b++ {
		if classify[byte(b)] != classDigit {
			t.Errorf("classify[%q]: expected classDigit got %v", byte(b), classify[byte(b)])
		}
	}
	for _, b := range []byte{'-', '+'} {
		if classify[b] != classSign {
			t.Errorf("classify[%q]: expected classSign got %v", b, classify[b])
		}
	}
}
