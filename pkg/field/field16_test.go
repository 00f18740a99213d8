package field

import "testing"

func TestElement16AddSubNegRoundTrip(t *testing.T) {
	for _, n := range []uint16{0, 1, 12345, Modulus16 - 1} {
		x := NewElement16(n)
		if got := x.Add(x.Neg()); !got.IsZero() {
			t.Errorf("x+neg(x) for %d = %d, want 0", n, got.Value())
		}
		if got := x.Sub(x); !got.IsZero() {
			t.Errorf("x-x for %d = %d, want 0", n, got.Value())
		}
	}
}

func TestElement16MulInvIdentity(t *testing.T) {
	for _, n := range []uint16{1, 2, 1000, Modulus16 - 1} {
		x := NewElement16(n)
		if got := x.Mul(x.Inv()).Value(); got != 1 {
			t.Errorf("x*inv(x) for %d = %d, want 1", n, got)
		}
	}
}

func TestElement16FermatLittleTheorem(t *testing.T) {
	x := NewElement16(7)
	if got := x.Pow(Modulus16 - 1).Value(); got != 1 {
		t.Errorf("7^(p-1) mod p = %d, want 1", got)
	}
}

func TestElement16ReductionAtModulus(t *testing.T) {
	if got := NewElement16(Modulus16).Value(); got != 0 {
		t.Errorf("NewElement16(p) = %d, want 0", got)
	}
}
