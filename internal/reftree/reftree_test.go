package reftree

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// equal compares two Values field-by-field, including their unexported
// fields, via go-cmp — the same library the minifier's own tests use for
// structural assertions (see package minify's mode_equivalence_test.go).
func equal(a, b *Value) bool {
	return cmp.Diff(a, b, cmp.AllowUnexported(Value{}, member{}), cmpopts.EquateEmpty()) == ""
}

func TestTypeString(t *testing.T) {
	for _, test := range []struct {
		input    Type
		expected string
	}{
		{Null, typeNames[Null]},
		{Array, typeNames[Array]},
		{Object, typeNames[Object]},
		{Boolean, typeNames[Boolean]},
		{Integer, typeNames[Integer]},
		{Number, typeNames[Number]},
		{String, typeNames[String]},
		{numTypes, "<unknown>"},
		{1000, "<unknown>"},
		{-1, "<unknown>"},
	} {
		t.Run(fmt.Sprintf("%v", test.input), func(t *testing.T) {
			if got := test.input.String(); got != test.expected {
				t.Errorf("expected %v got %v", test.expected, got)
			}
		})
	}
}

func TestValueType(t *testing.T) {
	for _, test := range []struct {
		input    Value
		expected Type
	}{
		{Value{kind: Null}, Null},
		{Value{kind: Array}, Array},
		{Value{kind: Object}, Object},
		{Value{kind: Boolean}, Boolean},
		{Value{kind: Integer}, Integer},
		{Value{kind: Number}, Number},
		{Value{kind: String}, String},
		{Value{kind: numTypes}, typeUnknown},
		{Value{kind: 1000}, typeUnknown},
		{Value{kind: -1}, typeUnknown},
	} {
		t.Run(fmt.Sprintf("%v", test.input), func(t *testing.T) {
			if got := test.input.Type(); got != test.expected {
				t.Errorf("expected %v got %v", test.expected, got)
			}
		})
	}
}

func TestAsNull(t *testing.T) {
	if _, err := (&Value{}).AsNull(); err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if _, err := (&Value{kind: Boolean, boolean: true}).AsNull(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsNumber(t *testing.T) {
	for _, v := range []*Value{
		{kind: Number, num: 5},
		{kind: Integer, integer: 5},
	} {
		n, err := v.AsNumber()
		if err != nil {
			t.Errorf("expected no error got %v", err)
		}
		if n != 5 {
			t.Errorf("expected 5 got %v", n)
		}
	}
	if _, err := (&Value{kind: Boolean, boolean: true}).AsNumber(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsInteger(t *testing.T) {
	n, err := (&Value{kind: Integer, integer: 5}).AsInteger()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 got %v", n)
	}
	if _, err := (&Value{kind: Boolean, boolean: true}).AsInteger(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsString(t *testing.T) {
	s, err := (&Value{kind: String, str: "5"}).AsString()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if s != "5" {
		t.Errorf("expected 5 got %v", s)
	}
	if _, err := (&Value{kind: Boolean, boolean: true}).AsString(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsBoolean(t *testing.T) {
	b, err := (&Value{kind: Boolean, boolean: true}).AsBoolean()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if !b {
		t.Errorf("expected true got %v", b)
	}
	if _, err := (&Value{}).AsBoolean(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsArray(t *testing.T) {
	val := &Value{kind: Array, items: []*Value{{}}}
	a, err := val.AsArray()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if !equal(a[0], &Value{}) {
		t.Errorf("expected %v got %v", &Value{}, a[0])
	}
	if _, err := (&Value{}).AsArray(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsObject(t *testing.T) {
	val := &Value{kind: Object, fields: []member{{"a", &Value{}}}}
	o, err := val.AsObject()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if !equal(o["a"], &Value{}) {
		t.Errorf("expected %v got %v", &Value{}, o["a"])
	}
	if _, err := (&Value{}).AsObject(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestValueString(t *testing.T) {
	for _, test := range []struct {
		input    Value
		expected string
	}{
		{Value{}, "null"},
		{Value{kind: Integer, integer: -5}, `-5`},
		{Value{kind: Number, num: -5}, `-5`},
		{Value{kind: Number, num: -5.1}, `-5.1`},
		{Value{kind: Number, num: -5.12}, `-5.12`},
		{Value{kind: String, str: "-5.12"}, `"-5.12"`},
		{Value{kind: Boolean, boolean: true}, `true`},
		{Value{kind: Boolean, boolean: false}, `false`},
		{Value{kind: Array, items: []*Value{
			{},
			{kind: Integer, integer: -5},
			{kind: String, str: "-5.12"},
			{kind: Boolean, boolean: true},
		}}, `[null, -5, "-5.12", true]`},
		{Value{kind: Object, fields: []member{
			{"a", &Value{}},
			{"b", &Value{kind: Integer, integer: -5}},
			{"c", &Value{kind: String, str: "-5.12"}},
			{"d", &Value{kind: Boolean, boolean: true}},
		}}, `{"a": null, "b": -5, "c": "-5.12", "d": true}`},
		{Value{kind: numTypes, integer: -5}, `<unknown>`},
	} {
		t.Run(test.expected, func(t *testing.T) {
			if got := test.input.String(); got != test.expected {
				t.Errorf("expected %v got %v", test.expected, got)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	val, err := ParseString(`[[[true, false]]]`)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	for _, test := range []struct {
		actual   *Value
		expected *Value
	}{
		{val.Index(0).Index(0).Index(0), &Value{kind: Boolean, boolean: true}},
		{val.Index(0).Index(0).Index(1), &Value{kind: Boolean, boolean: false}},
		{val.Index(0).Index(0).Index(2), &Value{}},
		{val.Index(0).Index(1).Index(2), &Value{}},
		{val.Index(-1).Index(1).Index(2), &Value{}},
	} {
		t.Run(fmt.Sprintf("%v", test.actual), func(t *testing.T) {
			if !equal(test.actual, test.expected) {
				t.Errorf("expected %v\ngot %v", test.expected, test.actual)
			}
		})
	}
}

func TestKey(t *testing.T) {
	val, err := ParseString(`{"a": {"b": {"c": true, "d":false}}}`)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	for _, test := range []struct {
		actual   *Value
		expected *Value
	}{
		{val.Key("a").Key("b").Key("c"), &Value{kind: Boolean, boolean: true}},
		{val.Key("a").Key("b").Key("d"), &Value{kind: Boolean, boolean: false}},
		{val.Key("a").Key("b").Key("e"), &Value{}},
		{val.Key("a").Key("e").Key("d"), &Value{}},
		{val.Key("e").Key("b").Key("d"), &Value{}},
	} {
		t.Run(fmt.Sprintf("%v", test.actual), func(t *testing.T) {
			if !equal(test.actual, test.expected) {
				t.Errorf("expected %v\ngot %v", test.expected, test.actual)
			}
		})
	}
}
