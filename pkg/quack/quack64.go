package quack

import (
	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/poly"
	"github.com/simeonmiteff/quack-sidekick/pkg/tables"
)

// Quack64 is a power-sum quACK over 64-bit identifiers. It accumulates in
// Montgomery form throughout, converting plain integers at the Insert/Remove
// boundary and back at Last/Coeffs, since Montgomery multiplication avoids
// the division Element64.Mul needs on every step.
type Quack64 struct {
	sums    []field.MontgomeryElement64
	last    field.MontgomeryElement64
	hasLast bool
	count   int32
}

// New64 creates a power-sum quACK that can decode a set difference of up to
// threshold elements.
func New64(threshold int) *Quack64 {
	tables.Ensure(threshold)
	return &Quack64{sums: make([]field.MontgomeryElement64, threshold)}
}

// Threshold returns the fixed maximum decodable set-difference size.
func (q *Quack64) Threshold() int { return len(q.sums) }

// Count returns the number of inserts minus removes, wrapping on overflow.
func (q *Quack64) Count() int32 { return q.count }

// Last returns the most recently inserted element and true, or false if
// unknown.
func (q *Quack64) Last() (uint64, bool) {
	if !q.hasLast {
		return 0, false
	}
	return q.last.FromMontgomery64(), true
}

// Insert adds value to the digest.
func (q *Quack64) Insert(value uint64) {
	x := field.ToMontgomery64(value)
	y := x
	n := len(q.sums)
	for i := 0; i < n-1; i++ {
		q.sums[i] = q.sums[i].Add(y)
		y = y.Mul(x)
	}
	if n > 0 {
		q.sums[n-1] = q.sums[n-1].Add(y)
	}
	q.count++
	q.last = x
	q.hasLast = true
}

// Remove mirrors Insert with subtraction.
func (q *Quack64) Remove(value uint64) {
	x := field.ToMontgomery64(value)
	y := x
	n := len(q.sums)
	for i := 0; i < n-1; i++ {
		q.sums[i] = q.sums[i].Sub(y)
		y = y.Mul(x)
	}
	if n > 0 {
		q.sums[n-1] = q.sums[n-1].Sub(y)
	}
	q.count--
	if q.hasLast && q.last.Equal(x) {
		q.hasLast = false
	}
}

// Subtract subtracts other from q in place.
func (q *Quack64) Subtract(other *Quack64) {
	if len(q.sums) != len(other.sums) {
		panic("quack: Subtract requires matching thresholds")
	}
	for i := range q.sums {
		q.sums[i] = q.sums[i].Sub(other.sums[i])
	}
	q.count -= other.count
	q.hasLast = false
}

// Clone returns an independent copy of q.
func (q *Quack64) Clone() *Quack64 {
	c := &Quack64{
		sums:    make([]field.MontgomeryElement64, len(q.sums)),
		last:    q.last,
		hasLast: q.hasLast,
		count:   q.count,
	}
	copy(c.sums, q.sums)
	return c
}

// CoeffsPreallocated fills coeffs with the Newton's-identities coefficients
// of q's derived monic polynomial, in Montgomery form.
func (q *Quack64) CoeffsPreallocated(coeffs []field.MontgomeryElement64) {
	if len(coeffs) == 0 {
		return
	}
	coeffs[0] = q.sums[0].Neg()
	for i := 1; i < len(coeffs); i++ {
		for j := 0; j < i; j++ {
			coeffs[i] = coeffs[i].Sub(q.sums[j].Mul(coeffs[i-j-1]))
		}
		coeffs[i] = coeffs[i].Sub(q.sums[i])
		coeffs[i] = coeffs[i].Mul(tables.Inv64(i + 1))
	}
}

// Coeffs is CoeffsPreallocated with a freshly allocated vector of length
// abs(q.Count()).
func (q *Quack64) Coeffs() []field.MontgomeryElement64 {
	c := make([]field.MontgomeryElement64, abs32(q.count))
	q.CoeffsPreallocated(c)
	return c
}

// DecodeWithLog returns the elements of log that are roots of q's derived
// polynomial.
func (q *Quack64) DecodeWithLog(log []uint64) []uint64 {
	if q.count == 0 {
		out := make([]uint64, len(log))
		copy(out, log)
		return out
	}
	coeffs := q.Coeffs()
	var out []uint64
	for _, x := range log {
		if poly.Eval64(coeffs, field.ToMontgomery64(x)).IsZero() {
			out = append(out, x)
		}
	}
	return out
}
