package field

import "testing"

func TestMontgomery64RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 2, 1000, 1 << 40, Modulus64 - 1} {
		m := ToMontgomery64(n)
		if got := m.FromMontgomery64(); got != n {
			t.Errorf("round-trip(%d) = %d", n, got)
		}
	}
}

func TestMontgomery64AddMatchesPlainField(t *testing.T) {
	a, b := uint64(123456789), uint64(987654321)
	gotMont := ToMontgomery64(a).Add(ToMontgomery64(b)).FromMontgomery64()
	wantPlain := NewElement64(a).Add(NewElement64(b)).Value()
	if gotMont != wantPlain {
		t.Errorf("montgomery add = %d, want %d", gotMont, wantPlain)
	}
}

func TestMontgomery64MulMatchesPlainField(t *testing.T) {
	a, b := uint64(123456789), uint64(987654321)
	gotMont := ToMontgomery64(a).Mul(ToMontgomery64(b)).FromMontgomery64()
	wantPlain := NewElement64(a).Mul(NewElement64(b)).Value()
	if gotMont != wantPlain {
		t.Errorf("montgomery mul = %d, want %d", gotMont, wantPlain)
	}
}

func TestMontgomery64MulNearModulus(t *testing.T) {
	a, b := uint64(Modulus64-1), uint64(Modulus64-2)
	gotMont := ToMontgomery64(a).Mul(ToMontgomery64(b)).FromMontgomery64()
	wantPlain := NewElement64(a).Mul(NewElement64(b)).Value()
	if gotMont != wantPlain {
		t.Errorf("montgomery mul near modulus = %d, want %d", gotMont, wantPlain)
	}
}

func TestMontgomery64InvIdentity(t *testing.T) {
	for _, n := range []uint64{1, 2, 1000, Modulus64 - 1} {
		x := ToMontgomery64(n)
		if got := x.Mul(x.Inv()).FromMontgomery64(); got != 1 {
			t.Errorf("x*inv(x) for %d = %d, want 1", n, got)
		}
	}
}

func TestMontgomery64FermatLittleTheorem(t *testing.T) {
	x := ToMontgomery64(42)
	if got := x.Pow(Modulus64 - 1).FromMontgomery64(); got != 1 {
		t.Errorf("x^(p-1) mod p = %d, want 1", got)
	}
}

func TestMontgomery64ZeroIsAdditiveIdentity(t *testing.T) {
	z := ZeroMontgomeryElement64()
	if !z.IsZero() {
		t.Fatal("zero element reports non-zero")
	}
	x := ToMontgomery64(777)
	if got := x.Add(z); !got.Equal(x) {
		t.Errorf("x+0 = %d, want %d", got.FromMontgomery64(), x.FromMontgomery64())
	}
}
