package quack

import "testing"

func TestQuack32WireRoundTrip(t *testing.T) {
	q := New32(5)
	q.Insert(11)
	q.Insert(22)
	data, err := q.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalQuack32(data)
	if err != nil {
		t.Fatalf("UnmarshalQuack32: %v", err)
	}
	if got.Threshold() != q.Threshold() {
		t.Errorf("threshold = %d, want %d", got.Threshold(), q.Threshold())
	}
	if got.Count() != q.Count() {
		t.Errorf("count = %d, want %d", got.Count(), q.Count())
	}
	for i := range q.sums {
		if !got.sums[i].Equal(q.sums[i]) {
			t.Errorf("sums[%d] mismatch after round-trip", i)
		}
	}
	last, ok := got.Last()
	wantLast, wantOK := q.Last()
	if ok != wantOK || last != wantLast {
		t.Errorf("last = (%d,%v), want (%d,%v)", last, ok, wantLast, wantOK)
	}
}

func TestQuack32WireOmitsLastWhenUnknown(t *testing.T) {
	a := New32(4)
	a.Insert(1)
	a.Insert(2)
	b := New32(4)
	b.Insert(1)
	a.Subtract(b) // clears hasLast

	data, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalQuack32(data)
	if err != nil {
		t.Fatalf("UnmarshalQuack32: %v", err)
	}
	if _, ok := got.Last(); ok {
		t.Error("decoded quack reports a known last value, want unknown")
	}
}

func TestQuack16WireRoundTrip(t *testing.T) {
	q := New16(5)
	q.Insert(123)
	q.Insert(456)
	data, err := q.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalQuack16(data)
	if err != nil {
		t.Fatalf("UnmarshalQuack16: %v", err)
	}
	if got.Count() != q.Count() {
		t.Errorf("count = %d, want %d", got.Count(), q.Count())
	}
	for i := range q.sums {
		if !got.sums[i].Equal(q.sums[i]) {
			t.Errorf("sums[%d] mismatch after round-trip", i)
		}
	}
}

func TestQuack64WireRoundTrip(t *testing.T) {
	q := New64(5)
	q.Insert(10_000_000_000)
	q.Insert(20_000_000_000)
	data, err := q.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalQuack64(data)
	if err != nil {
		t.Fatalf("UnmarshalQuack64: %v", err)
	}
	if got.Count() != q.Count() {
		t.Errorf("count = %d, want %d", got.Count(), q.Count())
	}
	for i := range q.sums {
		if !got.sums[i].Equal(q.sums[i]) {
			t.Errorf("sums[%d] mismatch after round-trip", i)
		}
	}
	last, ok := got.Last()
	wantLast, wantOK := q.Last()
	if ok != wantOK || last != wantLast {
		t.Errorf("last = (%d,%v), want (%d,%v)", last, ok, wantLast, wantOK)
	}
}

func TestQuack32WireDerivesThresholdFromLength(t *testing.T) {
	q := New32(7)
	data, _ := q.MarshalBinary()
	got, err := UnmarshalQuack32(data)
	if err != nil {
		t.Fatalf("UnmarshalQuack32: %v", err)
	}
	if got.Threshold() != 7 {
		t.Errorf("threshold = %d, want 7 (derived from encoded sums length)", got.Threshold())
	}
}
