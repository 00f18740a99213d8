package field

// Modulus32 is the largest 32-bit prime.
const Modulus32 = 4294967291

// Element32 is an integer modulo Modulus32, held in canonical form.
//
// Multiplication widens to 64 bits and reduces with a single division; on
// modern hardware this is cheaper than a hand-rolled Barrett reduction for
// a single 32x32 product, so that option is left to the compiler/runtime's
// native div.
type Element32 struct {
	value uint32
}

// NewElement32 reduces n modulo Modulus32.
func NewElement32(n uint32) Element32 {
	if n >= Modulus32 {
		return Element32{value: n - Modulus32}
	}
	return Element32{value: n}
}

// ZeroElement32 is the additive identity.
func ZeroElement32() Element32 { return Element32{} }

// Value returns the canonical representative in [0, Modulus32).
func (e Element32) Value() uint32 { return e.value }

// IsZero reports whether e is the additive identity.
func (e Element32) IsZero() bool { return e.value == 0 }

// Neg returns -e mod p.
func (e Element32) Neg() Element32 {
	if e.value == 0 {
		return e
	}
	return Element32{value: Modulus32 - e.value}
}

// Add returns e+o mod p.
func (e Element32) Add(o Element32) Element32 {
	sum := uint64(e.value) + uint64(o.value)
	if sum >= Modulus32 {
		sum -= Modulus32
	}
	return Element32{value: uint32(sum)}
}

// Sub returns e-o mod p.
func (e Element32) Sub(o Element32) Element32 {
	return e.Add(o.Neg())
}

// Mul returns e*o mod p.
func (e Element32) Mul(o Element32) Element32 {
	prod := uint64(e.value) * uint64(o.value)
	return Element32{value: uint32(prod % Modulus32)}
}

// Pow returns e^k mod p using square-and-multiply.
func (e Element32) Pow(k uint32) Element32 {
	result := NewElement32(1)
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
func (e Element32) Inv() Element32 {
	return e.Pow(Modulus32 - 2)
}

// Equal reports canonical-form equality.
func (e Element32) Equal(o Element32) bool { return e.value == o.value }
