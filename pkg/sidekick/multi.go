package sidekick

import (
	"sync"

	"github.com/rs/xid"

	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
)

// flowEntry is one Multi map slot: the per-flow digest plus an opaque trace
// id used only for log correlation and metrics labels, never for algebra or
// wire serialization.
type flowEntry struct {
	q     *quack.Quack32
	trace xid.ID
}

// Multi accumulates identifiers per flow into a map of flow-key to quACK,
// sharing one interface tap across every multiplexed connection to it. Its
// single exclusive mutex guards the whole map; the reference's single-
// writer discipline (one owning task, short critical sections) is kept
// rather than striping the lock per flow, since table inserts are already
// O(1) and cheap to hold the lock across.
type Multi struct {
	mu         sync.Mutex
	myEndpoint packet.EndpointKey
	threshold  int
	senders    map[packet.FlowKey]*flowEntry

	firstOnce sync.Once
	firstCh   chan struct{}
	insertCh  chan packet.FlowKey
}

// NewMulti creates a Multi accumulator with the given threshold, watching
// for reset packets addressed to myEndpoint (destination IP and port).
func NewMulti(myEndpoint packet.EndpointKey, threshold int) *Multi {
	return &Multi{
		myEndpoint: myEndpoint,
		threshold:  threshold,
		senders:    make(map[packet.FlowKey]*flowEntry),
		firstCh:    make(chan struct{}),
		insertCh:   make(chan packet.FlowKey, 256),
	}
}

// FirstPacket returns a channel closed the first time ProcessFrame inserts
// an identifier into any flow.
func (m *Multi) FirstPacket() <-chan struct{} {
	return m.firstCh
}

// InsertNotify returns a channel of flow keys, one value per insert, used
// by a count-based transmitter (pkg/transmit) to know which flow to
// re-snapshot. A count-based transmitter still computes the modulus off
// Snapshot(key).Count() itself rather than trusting a counter carried
// through the channel. The send never blocks the ingress loop: if the
// channel is full the wake-up is dropped, since the transmitter will still
// see the flow's current count the next time it observes that flow.
func (m *Multi) InsertNotify() <-chan packet.FlowKey {
	return m.insertCh
}

func (m *Multi) notifyInsert(key packet.FlowKey) {
	select {
	case m.insertCh <- key:
	default:
	}
}

// ResetFlow reinitializes the digest for key if an entry for it exists; an
// unknown key is a no-op, mirroring the reference's "reset only if present"
// behavior rather than implicitly creating an entry just to reset it.
func (m *Multi) ResetFlow(key packet.FlowKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.senders[key]; ok {
		e.q = quack.New32(m.threshold)
	}
}

// ProcessFrame classifies one captured frame. protocol is the L2 protocol
// field the tap captured alongside buf (see packet.IsIP); a socket bound
// with ETH_P_ALL delivers non-IP frames too, so ProcessFrame rejects
// anything that isn't IP before ever reading buf as if it were one. A frame
// whose destination endpoint matches myEndpoint resets that same flow key's
// digest (the reset signal and the flow it resets share one 12-byte flow
// key, even though the signal arrives as a reply rather than forward
// traffic). Any other UDP frame observed as incoming traffic is inserted
// into its flow's digest, creating the entry on first sight. It returns
// true if an identifier was inserted.
func (m *Multi) ProcessFrame(buf *packet.Buffer, direction packet.Direction, protocol uint16) bool {
	if direction != packet.DirectionIncoming {
		return false
	}
	if !packet.IsIP(protocol) {
		return false
	}
	if !buf.IsUDP() {
		return false
	}

	key := buf.FlowKey()

	m.mu.Lock()
	defer m.mu.Unlock()

	if buf.DstEndpointKey() == m.myEndpoint {
		if e, ok := m.senders[key]; ok {
			e.q = quack.New32(m.threshold)
		}
		return false
	}

	e, ok := m.senders[key]
	if !ok {
		e = &flowEntry{q: quack.New32(m.threshold), trace: xid.New()}
		m.senders[key] = e
	}
	e.q.Insert(buf.Identifier())

	m.firstOnce.Do(func() { close(m.firstCh) })
	m.notifyInsert(key)
	return true
}

// Snapshot returns a copy of the digest for key, or ok=false if no entry
// exists for it yet.
func (m *Multi) Snapshot(key packet.FlowKey) (q *quack.Quack32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.senders[key]
	if !ok {
		return nil, false
	}
	return e.q.Clone(), true
}

// Flows returns every flow key currently tracked. The returned slice is a
// point-in-time copy; concurrent inserts may add or reset flows after it is
// taken.
func (m *Multi) Flows() []packet.FlowKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]packet.FlowKey, 0, len(m.senders))
	for k := range m.senders {
		out = append(out, k)
	}
	return out
}

// TraceID returns the opaque correlation id assigned to key's flow entry,
// or the zero ID if no entry exists.
func (m *Multi) TraceID(key packet.FlowKey) xid.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.senders[key]; ok {
		return e.trace
	}
	return xid.ID{}
}
