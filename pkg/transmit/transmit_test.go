package transmit

import (
	"net"
	"testing"
	"time"

	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
)

type fakeSingleSource struct {
	q        *quack.Quack32
	firstCh  chan struct{}
	insertCh chan struct{}
}

func newFakeSingleSource() *fakeSingleSource {
	return &fakeSingleSource{
		q:        quack.New32(10),
		firstCh:  make(chan struct{}),
		insertCh: make(chan struct{}, 1),
	}
}

func (f *fakeSingleSource) Snapshot() *quack.Quack32      { return f.q.Clone() }
func (f *fakeSingleSource) FirstPacket() <-chan struct{}  { return f.firstCh }
func (f *fakeSingleSource) InsertNotify() <-chan struct{} { return f.insertCh }

func (f *fakeSingleSource) insert(id uint32) {
	f.q.Insert(id)
	select {
	case f.insertCh <- struct{}{}:
	default:
	}
}

func listenAndCollect(t *testing.T, n int, timeout time.Duration) (*net.UDPConn, chan []byte) {
	t.Helper()
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	out := make(chan []byte, n)
	go func() {
		buf := make([]byte, 1500)
		for i := 0; i < n; i++ {
			ln.SetReadDeadline(time.Now().Add(timeout))
			nr, _, err := ln.ReadFromUDP(buf)
			if err != nil {
				close(out)
				return
			}
			cp := make([]byte, nr)
			copy(cp, buf[:nr])
			out <- cp
		}
		close(out)
	}()
	return ln, out
}

func TestSingleCountBasedSendsEveryKInserts(t *testing.T) {
	ln, out := listenAndCollect(t, 2, 2*time.Second)
	defer ln.Close()

	src := newFakeSingleSource()
	tx, err := NewSingle(src, ln.LocalAddr().(*net.UDPAddr), nil, nil)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	defer tx.Close()

	stop := make(chan struct{})
	defer close(stop)
	go tx.RunCountBased(2, stop)

	for i := uint32(1); i <= 4; i++ {
		src.insert(i)
		time.Sleep(10 * time.Millisecond)
	}

	received := 0
	for range out {
		received++
	}
	if received != 2 {
		t.Errorf("received %d datagrams, want 2 (after inserts 2 and 4)", received)
	}
}

func TestSingleTimeBasedWaitsForFirstPacket(t *testing.T) {
	ln, out := listenAndCollect(t, 1, 500*time.Millisecond)
	defer ln.Close()

	src := newFakeSingleSource()
	tx, err := NewSingle(src, ln.LocalAddr().(*net.UDPAddr), nil, nil)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	defer tx.Close()

	stop := make(chan struct{})
	defer close(stop)
	go tx.RunTimeBased(20*time.Millisecond, stop)

	time.Sleep(50 * time.Millisecond)
	select {
	case b, ok := <-out:
		if ok {
			t.Fatalf("unexpected datagram before first packet: %v", b)
		}
	default:
	}

	close(src.firstCh)
	src.q.Insert(1)

	b, ok := <-out
	if !ok {
		t.Fatal("expected a datagram after first packet observed")
	}
	q, err := quack.UnmarshalQuack32(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Count() != 1 {
		t.Errorf("count = %d, want 1", q.Count())
	}
}

type fakeMultiSource struct {
	flows    map[packet.FlowKey]*quack.Quack32
	firstCh  chan struct{}
	insertCh chan packet.FlowKey
}

func newFakeMultiSource() *fakeMultiSource {
	return &fakeMultiSource{
		flows:    make(map[packet.FlowKey]*quack.Quack32),
		firstCh:  make(chan struct{}),
		insertCh: make(chan packet.FlowKey, 256),
	}
}

func (f *fakeMultiSource) Flows() []packet.FlowKey {
	out := make([]packet.FlowKey, 0, len(f.flows))
	for k := range f.flows {
		out = append(out, k)
	}
	return out
}

func (f *fakeMultiSource) Snapshot(key packet.FlowKey) (*quack.Quack32, bool) {
	q, ok := f.flows[key]
	if !ok {
		return nil, false
	}
	return q.Clone(), true
}

func (f *fakeMultiSource) FirstPacket() <-chan struct{}            { return f.firstCh }
func (f *fakeMultiSource) InsertNotify() <-chan packet.FlowKey { return f.insertCh }

func (f *fakeMultiSource) insert(key packet.FlowKey, id uint32) {
	q, ok := f.flows[key]
	if !ok {
		q = quack.New32(10)
		f.flows[key] = q
	}
	q.Insert(id)
	select {
	case f.insertCh <- key:
	default:
	}
}

func TestMultiCountBasedSendsOnlyAffectedFlow(t *testing.T) {
	ln, out := listenAndCollect(t, 2, time.Second)
	defer ln.Close()

	src := newFakeMultiSource()
	tx, err := NewMulti(src, ln.LocalAddr().(*net.UDPAddr), nil, nil)
	if err != nil {
		t.Fatalf("NewMulti: %v", err)
	}
	defer tx.Close()

	stop := make(chan struct{})
	defer close(stop)
	go tx.RunCountBased(1, stop)

	var k1, k2 packet.FlowKey
	k1[0] = 1
	k2[0] = 2
	src.insert(k2, 1) // unrelated flow, primed so Snapshot(k1) would differ if keys leaked
	src.insert(k1, 99)

	// With k=1 the priming insert into k2 is itself sent first; the
	// datagram for k1's insert follows it.
	if _, ok := <-out; !ok {
		t.Fatal("expected the datagram for k2's insert")
	}
	b, ok := <-out
	if !ok {
		t.Fatal("expected a datagram")
	}
	q, err := quack.UnmarshalQuack32(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last, ok := q.Last(); !ok || last != 99 {
		t.Errorf("last = (%d, %v), want (99, true)", last, ok)
	}
}
