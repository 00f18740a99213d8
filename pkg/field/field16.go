// Package field implements GF(p) modular arithmetic for the three element
// widths the quACK digest supports (16, 32 and 64 bits). Each width is a
// concrete, monomorphized type rather than a generic one, matching the
// power-sum quACK's hot insert/remove path where a virtual dispatch per
// element would dominate the cost of the arithmetic itself.
package field

// Modulus16 is the largest 16-bit prime.
const Modulus16 = 65521

// Element16 is an integer modulo Modulus16, always held in canonical form
// (i.e. in [0, Modulus16)).
type Element16 struct {
	value uint16
}

// NewElement16 reduces n modulo Modulus16.
func NewElement16(n uint16) Element16 {
	if n >= Modulus16 {
		return Element16{value: n - Modulus16}
	}
	return Element16{value: n}
}

// ZeroElement16 is the additive identity.
func ZeroElement16() Element16 { return Element16{} }

// Value returns the canonical representative in [0, Modulus16).
func (e Element16) Value() uint16 { return e.value }

// IsZero reports whether e is the additive identity.
func (e Element16) IsZero() bool { return e.value == 0 }

// Neg returns -e mod p.
func (e Element16) Neg() Element16 {
	if e.value == 0 {
		return e
	}
	return Element16{value: Modulus16 - e.value}
}

// Add returns e+o mod p.
func (e Element16) Add(o Element16) Element16 {
	sum := uint32(e.value) + uint32(o.value)
	if sum >= Modulus16 {
		sum -= Modulus16
	}
	return Element16{value: uint16(sum)}
}

// Sub returns e-o mod p.
func (e Element16) Sub(o Element16) Element16 {
	return e.Add(o.Neg())
}

// Mul returns e*o mod p.
func (e Element16) Mul(o Element16) Element16 {
	prod := uint32(e.value) * uint32(o.value)
	return Element16{value: uint16(prod % Modulus16)}
}

// Pow returns e^k mod p using square-and-multiply.
func (e Element16) Pow(k uint32) Element16 {
	result := NewElement16(1)
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
func (e Element16) Inv() Element16 {
	return e.Pow(Modulus16 - 2)
}

// Equal reports canonical-form equality.
func (e Element16) Equal(o Element16) bool { return e.value == o.value }
