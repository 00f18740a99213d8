package field

import "math/bits"

// Modulus64 is the prime 2^64-59, the widest element width the digest
// supports. It sits close enough to 2^64 that a widened 128-bit product of
// two canonical operands always reduces in a single division.
const Modulus64 = 18446744073709551557

// Element64 is an integer modulo Modulus64 in plain (non-Montgomery) form,
// held in canonical form. See MontgomeryElement64 for the faster form used
// internally by the 64-bit quACK.
type Element64 struct {
	value uint64
}

// NewElement64 reduces n modulo Modulus64.
func NewElement64(n uint64) Element64 {
	if n >= Modulus64 {
		return Element64{value: n - Modulus64}
	}
	return Element64{value: n}
}

// ZeroElement64 is the additive identity.
func ZeroElement64() Element64 { return Element64{} }

// Value returns the canonical representative in [0, Modulus64).
func (e Element64) Value() uint64 { return e.value }

// IsZero reports whether e is the additive identity.
func (e Element64) IsZero() bool { return e.value == 0 }

// Neg returns -e mod p.
func (e Element64) Neg() Element64 {
	if e.value == 0 {
		return e
	}
	return Element64{value: Modulus64 - e.value}
}

// Add returns e+o mod p, widening through uint64 carry detection since the
// sum of two canonical values can itself overflow uint64 by at most one bit.
func (e Element64) Add(o Element64) Element64 {
	sum, carry := bits.Add64(e.value, o.value, 0)
	if carry != 0 || sum >= Modulus64 {
		sum -= Modulus64
	}
	return Element64{value: sum}
}

// Sub returns e-o mod p.
func (e Element64) Sub(o Element64) Element64 {
	return e.Add(o.Neg())
}

// Mul returns e*o mod p, widening to 128 bits and reducing with a single
// division (both operands are always < p < 2^64, so the quotient is exact
// and the remainder is the canonical product).
func (e Element64) Mul(o Element64) Element64 {
	hi, lo := bits.Mul64(e.value, o.value)
	_, rem := bits.Div64(hi, lo, Modulus64)
	return Element64{value: rem}
}

// Pow returns e^k mod p using square-and-multiply.
func (e Element64) Pow(k uint64) Element64 {
	result := NewElement64(1)
	base := e
	for k > 0 {
		if k&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		k >>= 1
	}
	return result
}

// Inv returns e^-1 mod p via Fermat's little theorem. Undefined for e == 0.
func (e Element64) Inv() Element64 {
	return e.Pow(Modulus64 - 2)
}

// Equal reports canonical-form equality.
func (e Element64) Equal(o Element64) bool { return e.value == o.value }
