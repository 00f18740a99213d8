package field

import "math/bits"

// negModulusInv64 is -Modulus64^-1 mod 2^64, precomputed once since Modulus64
// is fixed. It is the multiplier REDC uses to cancel the low 64 bits of a
// product before the shift.
const negModulusInv64 uint64 = 14694863923124558067

// rMod64 is (2^64 mod Modulus64), i.e. R mod p for R=2^64. Since
// Modulus64 = 2^64-59, this is simply 59; deriving the usual R^2 mod p
// conversion constant of a textbook Montgomery implementation collapses to
// this single multiply-and-reduce because R itself already fits the
// reduction's 128-bit widening.
const rMod64 uint64 = 59

// MontgomeryElement64 is an element of GF(Modulus64) held in Montgomery form:
// the stored value is v*R mod p for the true value v, where R = 2^64. All
// arithmetic operates directly on the scaled representation; only
// ToMontgomery64/FromMontgomery64 cross the boundary to and from plain
// integers. This is the representation the 64-bit quACK digest accumulates
// in, since REDC avoids the division that Element64.Mul needs on every
// multiply.
type MontgomeryElement64 struct {
	value uint64
}

// montgomeryRedc implements the REDC step: given a value x = hi*2^64+lo with
// x < p*R, returns x*R^-1 mod p.
func montgomeryRedc(hi, lo uint64) uint64 {
	m := lo * negModulusInv64
	mHi, mLo := bits.Mul64(m, Modulus64)

	sumLo, carry := bits.Add64(lo, mLo, 0)
	sumHi, overflow := bits.Add64(hi, mHi, carry)
	_ = sumLo // always zero by construction of m; kept for clarity, not read

	if overflow != 0 {
		return sumHi - Modulus64
	}
	if sumHi >= Modulus64 {
		return sumHi - Modulus64
	}
	return sumHi
}

// ZeroMontgomeryElement64 is the additive identity in Montgomery form (which
// is zero in both representations).
func ZeroMontgomeryElement64() MontgomeryElement64 { return MontgomeryElement64{} }

// ToMontgomery64 converts a plain integer n into Montgomery form.
func ToMontgomery64(n uint64) MontgomeryElement64 {
	if n >= Modulus64 {
		n -= Modulus64
	}
	hi, lo := bits.Mul64(rMod64, n)
	_, rem := bits.Div64(hi, lo, Modulus64)
	return MontgomeryElement64{value: rem}
}

// FromMontgomery64 recovers the plain integer a Montgomery-form element
// represents.
func (e MontgomeryElement64) FromMontgomery64() uint64 {
	return montgomeryRedc(0, e.value)
}

// IsZero reports whether e represents the additive identity.
func (e MontgomeryElement64) IsZero() bool { return e.value == 0 }

// Neg returns -e mod p, still in Montgomery form.
func (e MontgomeryElement64) Neg() MontgomeryElement64 {
	if e.value == 0 {
		return e
	}
	return MontgomeryElement64{value: Modulus64 - e.value}
}

// Add returns e+o mod p. Addition is linear, so it needs no Montgomery
// conversion: (v1*R + v2*R) mod p == (v1+v2)*R mod p.
func (e MontgomeryElement64) Add(o MontgomeryElement64) MontgomeryElement64 {
	sum, carry := bits.Add64(e.value, o.value, 0)
	if carry != 0 || sum >= Modulus64 {
		sum -= Modulus64
	}
	return MontgomeryElement64{value: sum}
}

// Sub returns e-o mod p.
func (e MontgomeryElement64) Sub(o MontgomeryElement64) MontgomeryElement64 {
	return e.Add(o.Neg())
}

// Mul returns e*o mod p, both in Montgomery form: REDC(x_mont*y_mont) ==
// (v1*v2)*R mod p, the correct Montgomery-form product.
func (e MontgomeryElement64) Mul(o MontgomeryElement64) MontgomeryElement64 {
	hi, lo := bits.Mul64(e.value, o.value)
	return MontgomeryElement64{value: montgomeryRedc(hi, lo)}
}

// Pow returns e^k mod p using square-and-multiply, staying in Montgomery
// form throughout.
func (e MontgomeryElement64) Pow(k uint64) MontgomeryElement64 {
	result := ToMontgomery64(1)
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
func (e MontgomeryElement64) Inv() MontgomeryElement64 {
	return e.Pow(Modulus64 - 2)
}

// Equal reports equality of the underlying Montgomery-form representatives.
func (e MontgomeryElement64) Equal(o MontgomeryElement64) bool { return e.value == o.value }
