package field

import "testing"

func TestElement64AddSubNegRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 1 << 40, Modulus64 - 1} {
		x := NewElement64(n)
		if got := x.Add(x.Neg()); !got.IsZero() {
			t.Errorf("x+neg(x) for %d = %d, want 0", n, got.Value())
		}
		if got := x.Sub(x); !got.IsZero() {
			t.Errorf("x-x for %d = %d, want 0", n, got.Value())
		}
	}
}

func TestElement64MulInvIdentity(t *testing.T) {
	for _, n := range []uint64{1, 2, 1000, Modulus64 - 1} {
		x := NewElement64(n)
		if got := x.Mul(x.Inv()).Value(); got != 1 {
			t.Errorf("x*inv(x) for %d = %d, want 1", n, got)
		}
	}
}

func TestElement64FermatLittleTheorem(t *testing.T) {
	x := NewElement64(98765)
	if got := x.Pow(Modulus64 - 1).Value(); got != 1 {
		t.Errorf("x^(p-1) mod p = %d, want 1", got)
	}
}

func TestElement64MulNearOverflow(t *testing.T) {
	x := NewElement64(Modulus64 - 1)
	got := x.Mul(x).Value()
	want := NewElement64(1).Value() // (-1)*(-1) == 1 mod p
	if got != want {
		t.Errorf("(p-1)*(p-1) mod p = %d, want %d", got, want)
	}
}

func TestElement64ReductionAtModulus(t *testing.T) {
	if got := NewElement64(Modulus64).Value(); got != 0 {
		t.Errorf("NewElement64(p) = %d, want 0", got)
	}
}
