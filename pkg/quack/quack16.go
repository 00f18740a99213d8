package quack

import (
	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/poly"
	"github.com/simeonmiteff/quack-sidekick/pkg/tables"
)

// Quack16 is a power-sum quACK over 16-bit identifiers. Its small field
// makes precomputed power tables affordable, so its decode path uses
// poly.Eval16Precomputed instead of Horner's method.
type Quack16 struct {
	sums    []field.Element16
	last    field.Element16
	hasLast bool
	count   int32
}

// New16 creates a power-sum quACK that can decode a set difference of up to
// threshold elements.
func New16(threshold int) *Quack16 {
	tables.Ensure(threshold)
	return &Quack16{sums: make([]field.Element16, threshold)}
}

// Threshold returns the fixed maximum decodable set-difference size.
func (q *Quack16) Threshold() int { return len(q.sums) }

// Count returns the number of inserts minus removes, wrapping on overflow.
func (q *Quack16) Count() int32 { return q.count }

// Last returns the most recently inserted element and true, or false if
// unknown.
func (q *Quack16) Last() (uint16, bool) {
	if !q.hasLast {
		return 0, false
	}
	return q.last.Value(), true
}

// Insert adds value to the digest.
func (q *Quack16) Insert(value uint16) {
	x := field.NewElement16(value)
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
func (q *Quack16) Remove(value uint16) {
	x := field.NewElement16(value)
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
	if q.hasLast && q.last.Value() == value {
		q.hasLast = false
	}
}

// Subtract subtracts other from q in place.
func (q *Quack16) Subtract(other *Quack16) {
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
func (q *Quack16) Clone() *Quack16 {
	c := &Quack16{
		sums:    make([]field.Element16, len(q.sums)),
		last:    q.last,
		hasLast: q.hasLast,
		count:   q.count,
	}
	copy(c.sums, q.sums)
	return c
}

// CoeffsPreallocated fills coeffs with the Newton's-identities coefficients
// of q's derived monic polynomial.
func (q *Quack16) CoeffsPreallocated(coeffs []field.Element16) {
	if len(coeffs) == 0 {
		return
	}
	coeffs[0] = q.sums[0].Neg()
	for i := 1; i < len(coeffs); i++ {
		for j := 0; j < i; j++ {
			coeffs[i] = coeffs[i].Sub(q.sums[j].Mul(coeffs[i-j-1]))
		}
		coeffs[i] = coeffs[i].Sub(q.sums[i])
		coeffs[i] = coeffs[i].Mul(tables.Inv16(i + 1))
	}
}

// Coeffs is CoeffsPreallocated with a freshly allocated vector of length
// abs(q.Count()).
func (q *Quack16) Coeffs() []field.Element16 {
	c := make([]field.Element16, abs32(q.count))
	q.CoeffsPreallocated(c)
	return c
}

// DecodeWithLog returns the elements of log that are roots of q's derived
// polynomial, using the precomputed power table rather than Horner's method.
func (q *Quack16) DecodeWithLog(log []uint16) []uint16 {
	if q.count == 0 {
		out := make([]uint16, len(log))
		copy(out, log)
		return out
	}
	coeffs := q.Coeffs()
	var out []uint16
	for _, x := range log {
		if poly.Eval16Precomputed(coeffs, field.NewElement16(x)).IsZero() {
			out = append(out, x)
		}
	}
	return out
}
