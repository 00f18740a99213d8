// Package quack implements the power-sum quACK: a fixed-size algebraic
// digest over a stream of integer identifiers that supports O(1) insert,
// remove and subtract, and recovers a bounded-size set difference by
// evaluating a polynomial derived from the digest's power sums via Newton's
// identities. Three monomorphized variants exist, one per supported element
// width (16, 32 and 64 bits); there is deliberately no generic digest type,
// since a virtual dispatch per element would dominate the cost of the
// arithmetic on the insert hot path.
package quack

import (
	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/poly"
	"github.com/simeonmiteff/quack-sidekick/pkg/tables"
)

// Quack32 is a power-sum quACK over 32-bit identifiers.
type Quack32 struct {
	sums    []field.Element32
	last    field.Element32
	hasLast bool
	count   int32
}

// New32 creates a power-sum quACK that can decode a set difference of up to
// threshold elements. It grows the process-wide inverse table to cover
// threshold as a side effect.
func New32(threshold int) *Quack32 {
	tables.Ensure(threshold)
	return &Quack32{sums: make([]field.Element32, threshold)}
}

// Threshold returns the fixed maximum decodable set-difference size.
func (q *Quack32) Threshold() int { return len(q.sums) }

// Count returns the number of inserts minus removes, wrapping on overflow
// exactly as Go's int32 arithmetic wraps. A negative value means more
// removes than inserts have been applied, which callers should treat as a
// programming error at the accumulator boundary rather than a valid state.
func (q *Quack32) Count() int32 { return q.count }

// Last returns the most recently inserted element and true, or false if the
// last-inserted value is unknown (never inserted, or cleared by removing it,
// subtracting, or fresh construction).
func (q *Quack32) Last() (uint32, bool) {
	if !q.hasLast {
		return 0, false
	}
	return q.last.Value(), true
}

// Insert adds value to the digest, updating every power sum with one
// running multiplication per step.
func (q *Quack32) Insert(value uint32) {
	x := field.NewElement32(value)
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

// Remove mirrors Insert with subtraction. It does not validate that value
// was actually inserted.
func (q *Quack32) Remove(value uint32) {
	x := field.NewElement32(value)
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

// Subtract subtracts other from q in place. Both must share the same
// threshold; mismatched thresholds are a caller bug. The resulting digest's
// last-inserted value is unknown.
func (q *Quack32) Subtract(other *Quack32) {
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
func (q *Quack32) Clone() *Quack32 {
	c := &Quack32{
		sums:    make([]field.Element32, len(q.sums)),
		last:    q.last,
		hasLast: q.hasLast,
		count:   q.count,
	}
	copy(c.sums, q.sums)
	return c
}

func abs32(n int32) int {
	if n < 0 {
		return int(-n)
	}
	return int(n)
}

// CoeffsPreallocated fills coeffs (whose length the caller chooses) with the
// non-leading coefficients of the monic polynomial Newton's identities
// derive from q's power sums, highest degree first. Callers normally choose
// len(coeffs) == abs(q.Count()); a longer length produces coefficients whose
// meaning is undefined but still deterministic, and a length exceeding
// Threshold() is invalid.
func (q *Quack32) CoeffsPreallocated(coeffs []field.Element32) {
	if len(coeffs) == 0 {
		return
	}
	coeffs[0] = q.sums[0].Neg()
	for i := 1; i < len(coeffs); i++ {
		for j := 0; j < i; j++ {
			coeffs[i] = coeffs[i].Sub(q.sums[j].Mul(coeffs[i-j-1]))
		}
		coeffs[i] = coeffs[i].Sub(q.sums[i])
		coeffs[i] = coeffs[i].Mul(tables.Inv32(i + 1))
	}
}

// Coeffs is CoeffsPreallocated with a freshly allocated vector of length
// abs(q.Count()).
func (q *Quack32) Coeffs() []field.Element32 {
	c := make([]field.Element32, abs32(q.count))
	q.CoeffsPreallocated(c)
	return c
}

// DecodeWithLog returns the elements of log that are algebraically
// consistent with q's digest: roots of q's derived polynomial. If q is
// empty, every element of log is returned (nothing is known-missing). Order
// and multiplicity of log are preserved. False positives are possible with
// probability approximately count/p for an identifier outside the true
// multiset. If abs(Count()) exceeds Threshold(), decoding is not attempted
// and nil is returned.
func (q *Quack32) DecodeWithLog(log []uint32) []uint32 {
	if q.count == 0 {
		out := make([]uint32, len(log))
		copy(out, log)
		return out
	}
	if abs32(q.count) > len(q.sums) {
		return nil
	}
	coeffs := q.Coeffs()
	var out []uint32
	for _, x := range log {
		if poly.Eval32(coeffs, field.NewElement32(x)).IsZero() {
			out = append(out, x)
		}
	}
	return out
}

// DecodeByFactorization decodes the exact multiset of missing elements by
// delegating coefficient factorization to f, instead of testing candidates
// from a log. It returns ok=false if f could not factor the polynomial,
// which can happen if the digest was corrupted or the true difference
// exceeds the threshold.
func (q *Quack32) DecodeByFactorization(f poly.Factorizer32) (roots []uint32, ok bool) {
	if q.count == 0 {
		return []uint32{}, true
	}
	coeffs := q.Coeffs()
	modRoots, ok := f.Roots(coeffs)
	if !ok {
		return nil, false
	}
	out := make([]uint32, len(modRoots))
	for i, r := range modRoots {
		out[i] = r.Value()
	}
	return out, true
}
