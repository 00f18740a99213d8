// Package poly evaluates the monic polynomials the power-sum quACK derives
// from its coefficient vectors, and defines the optional pluggable
// factorization collaborator for exact 32-bit decoding. Each element width
// gets its own concrete evaluator rather than a generic one, matching
// pkg/field's monomorphized types and the quACK's hot decode path.
package poly

import (
	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/tables"
)

// Eval16 evaluates the monic polynomial x^d + c[0]*x^(d-1) + ... + c[d-1]
// at x using Horner's method. Coefficients are ordered highest-degree
// (non-leading) first, matching the quACK's coefficient-extraction order.
func Eval16(c []field.Element16, x field.Element16) field.Element16 {
	r := x
	for i := 0; i < len(c)-1; i++ {
		r = r.Add(c[i])
		r = r.Mul(x)
	}
	if len(c) > 0 {
		r = r.Add(c[len(c)-1])
	}
	return r
}

// Eval16Precomputed evaluates the same polynomial but reads powers of x
// directly from the process-wide power table instead of repeated
// multiplication, trading table-memory for fewer multiplies on the hot
// decode path. Requires tables.TMax() >= len(c).
func Eval16Precomputed(c []field.Element16, x field.Element16) field.Element16 {
	d := len(c)
	r := tables.Pow16(x.Value(), d)
	for i := 0; i < d; i++ {
		term := c[i].Mul(tables.Pow16(x.Value(), d-i-1))
		r = r.Add(term)
	}
	return r
}

// Eval32 evaluates the monic polynomial at x using Horner's method.
func Eval32(c []field.Element32, x field.Element32) field.Element32 {
	r := x
	for i := 0; i < len(c)-1; i++ {
		r = r.Add(c[i])
		r = r.Mul(x)
	}
	if len(c) > 0 {
		r = r.Add(c[len(c)-1])
	}
	return r
}

// Eval64 evaluates the monic polynomial at x (Montgomery form throughout)
// using Horner's method.
func Eval64(c []field.MontgomeryElement64, x field.MontgomeryElement64) field.MontgomeryElement64 {
	r := x
	for i := 0; i < len(c)-1; i++ {
		r = r.Add(c[i])
		r = r.Mul(x)
	}
	if len(c) > 0 {
		r = r.Add(c[len(c)-1])
	}
	return r
}

// Factorizer32 is the pluggable collaborator for exact 32-bit decoding by
// factorization instead of log-evaluation. An implementation delegates to
// an external univariate factorizer over GF(p32) (e.g. a CGo binding to a
// computer-algebra library); no such implementation ships in this module,
// mirroring the reference's optional libpari adapter. The general
// evaluator-based decode path (Eval32 against a candidate log) never
// depends on one being present.
type Factorizer32 interface {
	// Roots returns the complete multiset of roots of the monic polynomial
	// described by coeffs (including the implicit leading root contributed
	// by the degree), or ok=false if the polynomial could not be factored
	// over GF(p32) (for example because the adapter's backend rejected the
	// input or timed out).
	Roots(coeffs []field.Element32) (roots []field.Element32, ok bool)
}
