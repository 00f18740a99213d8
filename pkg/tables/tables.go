// Package tables holds the process-wide inverse and power lookup tables the
// polynomial evaluator and power-sum quACK need for Newton's-identity
// coefficient extraction. Tables are built once under a one-shot gate and
// are immutable and safely shared for reads after that, mirroring the
// teacher's kernel-feature-table init gate (pkg/linux/init.go in the
// reference tree), adapted here for a threshold that can grow at runtime
// instead of a kernel version fixed at process start.
package tables

import (
	"sync"
	"sync/atomic"

	"github.com/simeonmiteff/quack-sidekick/pkg/field"
)

// DefaultTMax is the inverse-table size built at package initialization, large enough for
// the thresholds typical deployments configure without forcing a resize.
const DefaultTMax = 1024

type tableSet struct {
	tMax  int
	inv16 []field.Element16
	inv32 []field.Element32
	inv64 []field.MontgomeryElement64
	pow16 [][]field.Element16 // pow16[x][k] = x^k mod p16, k in [0, tMax+1]
}

var (
	growMu  sync.Mutex // serializes growth; readers never take this
	current atomic.Pointer[tableSet]
)

func init() {
	current.Store(build(DefaultTMax))
}

func build(t int) *tableSet {
	ts := &tableSet{
		tMax:  t,
		inv16: make([]field.Element16, t+1),
		inv32: make([]field.Element32, t+1),
		inv64: make([]field.MontgomeryElement64, t+1),
		pow16: make([][]field.Element16, 1<<16),
	}
	for i := 1; i <= t; i++ {
		ts.inv16[i] = field.NewElement16(uint16(i)).Inv()
		ts.inv32[i] = field.NewElement32(uint32(i)).Inv()
		ts.inv64[i] = field.ToMontgomery64(uint64(i)).Inv()
	}
	for x := 0; x < (1 << 16); x++ {
		row := make([]field.Element16, t+2)
		row[0] = field.NewElement16(1)
		base := field.NewElement16(uint16(x))
		for k := 1; k <= t+1; k++ {
			row[k] = row[k-1].Mul(base)
		}
		ts.pow16[x] = row
	}
	return ts
}

// Ensure grows the tables to cover threshold t if they don't already,
// rebuilding the inverse and power tables and atomically publishing the
// replacement. It is safe to call concurrently and from multiple quACK
// constructors; callers constructing a quACK never need to call it
// directly, since each width's New() calls it internally with its
// threshold. Readers observing the table mid-growth see the prior,
// still-valid table until the swap completes.
func Ensure(t int) {
	if current.Load().tMax >= t {
		return
	}
	growMu.Lock()
	defer growMu.Unlock()
	if current.Load().tMax >= t {
		return
	}
	current.Store(build(t))
}

// TMax returns the current inverse-table size. Accessing inverse or power
// table entries with i > TMax is a programming error.
func TMax() int {
	return current.Load().tMax
}

// Inv16 returns i^-1 mod p16 for i in [1, TMax()].
func Inv16(i int) field.Element16 {
	return current.Load().inv16[i]
}

// Inv32 returns i^-1 mod p32 for i in [1, TMax()].
func Inv32(i int) field.Element32 {
	return current.Load().inv32[i]
}

// Inv64 returns i^-1 mod p64 (Montgomery form) for i in [1, TMax()].
func Inv64(i int) field.MontgomeryElement64 {
	return current.Load().inv64[i]
}

// Pow16 returns x^k mod p16 for x in [0, 2^16) and k in [0, TMax()+1],
// read directly from the precomputed table rather than recomputed by
// repeated squaring.
func Pow16(x uint16, k int) field.Element16 {
	return current.Load().pow16[x][k]
}
