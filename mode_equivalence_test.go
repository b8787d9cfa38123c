package minify

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	reftree "github.com/mcvoid/jsonmin/internal/reftree"
)

var modeEquivalenceCorpus = []string{
	`{}`,
	`[]`,
	`null`,
	`true`,
	`false`,
	`0`,
	`-17.25e-3`,
	`"hello \"world\"\n"`,
	`{  "a" : 1 , "b" : [ true , false , null ] , "c" : { "d" : "e" } }`,
	`[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20]`,
	`{"nested":{"deeply":{"enough":{"to":{"matter":[1,2,3]}}}}}`,
}

// treesEqual compares the two documents' parse trees via Value's String
// representation rather than cmp.AllowUnexported: reftree's Value embeds an
// unexported pair type that an external package has no way to name, so
// structural equality here goes through the exported String() accessor
// instead of reflecting into private fields. Key order is preserved by both
// the reference parser and the Machine, so this is still an exact
// structural check, not a looser approximation.
func treesEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	va, err := reftree.ParseBytes(a)
	if err != nil {
		t.Fatalf("reference parser rejected %q: %v", a, err)
	}
	vb, err := reftree.ParseBytes(b)
	if err != nil {
		t.Fatalf("reference parser rejected %q: %v", b, err)
	}
	return cmp.Diff(va.String(), vb.String()) == ""
}

// TestStructuralPreservation checks that minifying a document never changes
// the value tree a conforming parser builds from it (§8).
func TestStructuralPreservation(t *testing.T) {
	for _, doc := range modeEquivalenceCorpus {
		for _, mode := range []Mode{ECO, SPORT, TURBO} {
			t.Run(fmt.Sprintf("%s/%s", mode, doc), func(t *testing.T) {
				out, err := MinifyBytes(mode, []byte(doc))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !treesEqual(t, []byte(doc), out) {
					t.Errorf("minified output %q is not structurally equal to input %q", out, doc)
				}
			})
		}
	}
}

// TestModeEquivalence checks that all three modes produce byte-identical
// output for the same input (§8 "mode equivalence").
func TestModeEquivalence(t *testing.T) {
	for _, doc := range modeEquivalenceCorpus {
		t.Run(doc, func(t *testing.T) {
			eco, err := MinifyBytes(ECO, []byte(doc))
			if err != nil {
				t.Fatalf("ECO: unexpected error: %v", err)
			}
			sport, err := MinifyBytes(SPORT, []byte(doc))
			if err != nil {
				t.Fatalf("SPORT: unexpected error: %v", err)
			}
			turbo, err := MinifyBytes(TURBO, []byte(doc))
			if err != nil {
				t.Fatalf("TURBO: unexpected error: %v", err)
			}
			if string(eco) != string(sport) || string(sport) != string(turbo) {
				t.Errorf("modes disagree: eco=%q sport=%q turbo=%q", eco, sport, turbo)
			}
		})
	}
}

// TestIdempotence checks that minifying already-minified output is a no-op
// (§8 "idempotence").
func TestIdempotence(t *testing.T) {
	for _, doc := range modeEquivalenceCorpus {
		t.Run(doc, func(t *testing.T) {
			once, err := MinifyBytes(SPORT, []byte(doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			twice, err := MinifyBytes(SPORT, once)
			if err != nil {
				t.Fatalf("unexpected error on second pass: %v", err)
			}
			if string(once) != string(twice) {
				t.Errorf("not idempotent: once=%q twice=%q", once, twice)
			}
		})
	}
}

// TestSizeMonotonicity checks that minified output never exceeds input
// size (§8 "size monotonicity").
func TestSizeMonotonicity(t *testing.T) {
	for _, doc := range modeEquivalenceCorpus {
		out, err := MinifyBytes(SPORT, []byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) > len(doc) {
			t.Errorf("%q: minified length %d exceeds input length %d", doc, len(out), len(doc))
		}
	}
}

// randomJSON generates a bounded-depth JSON document for randomized
// coverage, gated behind testing.Short() per the ambient test-tooling
// policy (math/rand, not a property-testing framework).
func randomJSON(r *rand.Rand, depth int) string {
	if depth <= 0 {
		return "0"
	}
	switch r.Intn(6) {
	case 0:
		return "null"
	case 1:
		return fmt.Sprintf("%d", r.Intn(100000)-50000)
	case 2:
		return fmt.Sprintf("%q", "s")
	case 3:
		n := r.Intn(4)
		s := "["
		for i := 0; i < n; i++ {
			if i > 0 {
				s += ",  \n"
			}
			s += randomJSON(r, depth-1)
		}
		return s + "]"
	case 4:
		n := r.Intn(4)
		s := "{"
		for i := 0; i < n; i++ {
			if i > 0 {
				s += " ,\t"
			}
			s += fmt.Sprintf("%q : ", fmt.Sprintf("k%d", i)) + randomJSON(r, depth-1)
		}
		return s + "}"
	default:
		return "true"
	}
}

func TestRandomizedStructuralPreservation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping randomized coverage in -short mode")
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		doc := randomJSON(r, 5)
		out, err := MinifyBytes(SPORT, []byte(doc))
		if err != nil {
			t.Fatalf("doc %q: unexpected error: %v", doc, err)
		}
		if !treesEqual(t, []byte(doc), out) {
			t.Errorf("doc %q: minified %q not structurally equal", doc, out)
		}
	}
}
