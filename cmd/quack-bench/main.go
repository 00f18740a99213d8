// Command quack-bench constructs a power-sum quACK over a synthetic stream
// of identifiers, removes a random subset to simulate packet loss, and
// decodes the missing set back out via DecodeWithLog, reporting whether the
// decode was exact for each of the three element widths. Grounded on
// original_source/quack/benches' construct-then-decode microbenchmark
// shape, re-expressed as a one-shot CLI report instead of a criterion
// harness since this module has no benchmark-framework dependency to
// match.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
)

func main() {
	var numPackets int
	var numDropped int
	var threshold int
	var bits int
	var seed int64

	root := &cobra.Command{
		Use:   "quack-bench",
		Short: "Construct-and-decode demo for the power-sum quACK",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(numPackets, numDropped, threshold, bits, seed)
		},
	}
	root.Flags().IntVar(&numPackets, "packets", 10000, "number of identifiers to insert")
	root.Flags().IntVar(&numDropped, "dropped", 10, "number of identifiers to remove after insertion")
	root.Flags().IntVar(&threshold, "threshold", 20, "decode threshold")
	root.Flags().IntVar(&bits, "bits", 0, "element width to test: 16, 32, 64, or 0 for all three")
	root.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "PRNG seed")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(numPackets, numDropped, threshold, bits int, seed int64) error {
	if numDropped > numPackets {
		return fmt.Errorf("quack-bench: --dropped (%d) exceeds --packets (%d)", numDropped, numPackets)
	}
	if numDropped > threshold {
		fmt.Printf("warning: --dropped (%d) exceeds --threshold (%d); decode is expected to fail\n", numDropped, threshold)
	}

	widths := []int{16, 32, 64}
	if bits != 0 {
		widths = []int{bits}
	}

	rng := rand.New(rand.NewSource(seed))
	for _, w := range widths {
		if err := runWidth(w, numPackets, numDropped, threshold, rng); err != nil {
			return err
		}
	}
	return nil
}

func runWidth(bits, numPackets, numDropped, threshold int, rng *rand.Rand) error {
	switch bits {
	case 16:
		return run16(numPackets, numDropped, threshold, rng)
	case 32:
		return run32(numPackets, numDropped, threshold, rng)
	case 64:
		return run64(numPackets, numDropped, threshold, rng)
	default:
		return fmt.Errorf("quack-bench: unsupported --bits %d", bits)
	}
}

func run16(numPackets, numDropped, threshold int, rng *rand.Rand) error {
	q := quack.New16(threshold)
	log := make([]uint16, numPackets)
	for i := range log {
		id := uint16(rng.Uint32())
		log[i] = id
		q.Insert(id)
	}

	dropped := pickDropped16(log, numDropped, rng)
	for _, id := range dropped {
		q.Remove(id)
	}

	start := time.Now()
	decoded := q.DecodeWithLog(log)
	elapsed := time.Since(start)

	report(16, numPackets, dropped16ToUint32(dropped), decoded16ToUint32(decoded), elapsed)
	return nil
}

func run32(numPackets, numDropped, threshold int, rng *rand.Rand) error {
	q := quack.New32(threshold)
	log := make([]uint32, numPackets)
	for i := range log {
		id := rng.Uint32()
		log[i] = id
		q.Insert(id)
	}

	dropped := pickDropped32(log, numDropped, rng)
	for _, id := range dropped {
		q.Remove(id)
	}

	start := time.Now()
	decoded := q.DecodeWithLog(log)
	elapsed := time.Since(start)

	report(32, numPackets, dropped, decoded, elapsed)
	return nil
}

func run64(numPackets, numDropped, threshold int, rng *rand.Rand) error {
	q := quack.New64(threshold)
	log := make([]uint64, numPackets)
	for i := range log {
		id := rng.Uint64()
		log[i] = id
		q.Insert(id)
	}

	dropped := pickDropped64(log, numDropped, rng)
	for _, id := range dropped {
		q.Remove(id)
	}

	start := time.Now()
	decoded := q.DecodeWithLog(log)
	elapsed := time.Since(start)

	report(64, numPackets, dropped64ToUint32(dropped), decoded64ToUint32(decoded), elapsed)
	return nil
}

func pickDropped16(log []uint16, n int, rng *rand.Rand) []uint16 {
	idx := rng.Perm(len(log))[:n]
	out := make([]uint16, n)
	for i, j := range idx {
		out[i] = log[j]
	}
	return out
}

func pickDropped32(log []uint32, n int, rng *rand.Rand) []uint32 {
	idx := rng.Perm(len(log))[:n]
	out := make([]uint32, n)
	for i, j := range idx {
		out[i] = log[j]
	}
	return out
}

func pickDropped64(log []uint64, n int, rng *rand.Rand) []uint64 {
	idx := rng.Perm(len(log))[:n]
	out := make([]uint64, n)
	for i, j := range idx {
		out[i] = log[j]
	}
	return out
}

func dropped16ToUint32(in []uint16) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func decoded16ToUint32(in []uint16) []uint32 {
	return dropped16ToUint32(in)
}

func dropped64ToUint32(in []uint64) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func decoded64ToUint32(in []uint64) []uint32 {
	return dropped64ToUint32(in)
}

func report(bits, numPackets int, dropped, decoded []uint32, elapsed time.Duration) {
	exact := sameSet(dropped, decoded)
	fmt.Printf("bits=%d packets=%d dropped=%d decoded=%d exact=%v decode_time=%s\n",
		bits, numPackets, len(dropped), len(decoded), exact, elapsed)
}

func sameSet(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint32]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
