package poly

import (
	"testing"

	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/tables"
)

// f(x) = x^2 + 2x - 3, evaluated without wraparound (all values fit in
// GF(p32) without reduction mattering), cross-checked against the reference
// evaluator's own test vectors.
func TestEval32NoWraparound(t *testing.T) {
	c := []field.Element32{
		field.NewElement32(2),
		field.NewElement32(field.Modulus32 - 3), // -3 mod p
	}
	cases := []struct {
		x    uint32
		want uint32
	}{
		{0, field.Modulus32 - 3},
		{1, 0},
		{2, 5},
		{3, 12},
	}
	for _, tc := range cases {
		got := Eval32(c, field.NewElement32(tc.x)).Value()
		if got != tc.want {
			t.Errorf("eval(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
}

// Concrete vector from the reference implementation: a degree-3 monic
// polynomial with three known roots.
func TestEval32WithModulusRoots(t *testing.T) {
	c := []field.Element32{
		field.NewElement32(2539233112),
		field.NewElement32(2884903207),
		field.NewElement32(3439674878),
	}
	roots := []uint32{95976998, 456975625, 1202781556}
	for _, r := range roots {
		if got := Eval32(c, field.NewElement32(r)).Value(); got != 0 {
			t.Errorf("eval(%d) = %d, want 0 (known root)", r, got)
		}
	}
	nonRoots := []uint32{2315971647, 3768947911, 1649073968}
	for _, x := range nonRoots {
		if got := Eval32(c, field.NewElement32(x)).Value(); got == 0 {
			t.Errorf("eval(%d) = 0, want nonzero", x)
		}
	}
}

func TestEval16MatchesEval16Precomputed(t *testing.T) {
	c := []field.Element16{
		field.NewElement16(2),
		field.NewElement16(field.Modulus16 - 3),
	}
	for x := uint16(0); x < 4; x++ {
		want := Eval16(c, field.NewElement16(x))
		got := Eval16Precomputed(c, field.NewElement16(x))
		if !got.Equal(want) {
			t.Errorf("precomputed eval(%d) = %d, want %d", x, got.Value(), want.Value())
		}
	}
}

func TestEval16PrecomputedRequiresTableCoverage(t *testing.T) {
	// Exercise a coefficient vector as long as the default table so the
	// precompute path stays valid for realistic thresholds.
	tables.Ensure(tables.DefaultTMax)
	c := make([]field.Element16, tables.DefaultTMax)
	for i := range c {
		c[i] = field.NewElement16(uint16(i + 1))
	}
	x := field.NewElement16(7)
	want := Eval16(c, x)
	got := Eval16Precomputed(c, x)
	if !got.Equal(want) {
		t.Errorf("precomputed eval mismatch at max table size: got %d want %d", got.Value(), want.Value())
	}
}

func TestEval64Horner(t *testing.T) {
	c := []field.MontgomeryElement64{
		field.ToMontgomery64(2),
		field.ToMontgomery64(field.Modulus64 - 3),
	}
	cases := []struct {
		x    uint64
		want uint64
	}{
		{0, field.Modulus64 - 3},
		{1, 0},
		{2, 5},
		{3, 12},
	}
	for _, tc := range cases {
		got := Eval64(c, field.ToMontgomery64(tc.x)).FromMontgomery64()
		if got != tc.want {
			t.Errorf("eval64(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
}
