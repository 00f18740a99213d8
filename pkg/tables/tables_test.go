package tables

import (
	"testing"

	"github.com/simeonmiteff/quack-sidekick/pkg/field"
)

func TestInverseTablesAgreeWithDirectInverse(t *testing.T) {
	for _, i := range []int{1, 2, 3, 100, DefaultTMax} {
		want := field.NewElement32(uint32(i)).Inv().Value()
		if got := Inv32(i).Value(); got != want {
			t.Errorf("Inv32(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestPow16MatchesRepeatedSquaring(t *testing.T) {
	for _, x := range []uint16{0, 1, 2, 12345, 65520} {
		for _, k := range []int{0, 1, 2, 10} {
			got := Pow16(x, k)
			want := field.NewElement16(x).Pow(uint32(k)).Value()
			if got.Value() != want {
				t.Errorf("Pow16(%d, %d) = %d, want %d", x, k, got.Value(), want)
			}
		}
	}
}

func TestEnsureGrowsWithoutLosingExistingEntries(t *testing.T) {
	before := TMax()
	bigger := before + 500
	Ensure(bigger)
	if TMax() < bigger {
		t.Fatalf("TMax() = %d after Ensure(%d)", TMax(), bigger)
	}
	// entries that existed before growth must still be correct
	if got, want := Inv32(1).Value(), uint32(1); got != want {
		t.Errorf("Inv32(1) after growth = %d, want %d", got, want)
	}
}

func TestEnsureIsNoOpWhenAlreadyLargeEnough(t *testing.T) {
	Ensure(1) // TMax is already >= DefaultTMax from init
	if TMax() < DefaultTMax {
		t.Fatalf("TMax() = %d, shrank below DefaultTMax", TMax())
	}
}
