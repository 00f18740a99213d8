// Package sidekick implements the on-path accumulators that turn sniffed
// traffic into power-sum quACKs: Single for a single flow (component G) and
// Multi for a map of flow-key to quACK shared across multiplexed
// connections to the same interface (component H). Both reset their digest
// when they observe a packet destined for the configured local endpoint,
// and both are single-writer structures guarded by one mutex per
// accumulator instance, grounded on the reference sidekick.rs/
// sidekick_multi.rs state machines.
package sidekick

import (
	"net"
	"sync"

	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
)

// Single accumulates identifiers from one flow's forward traffic into a
// single quACK, resetting whenever it observes a packet addressed to the
// configured local address.
type Single struct {
	mu        sync.Mutex
	myIPv4    net.IP
	threshold int
	q         *quack.Quack32
	log       []uint32

	firstOnce sync.Once
	firstCh   chan struct{}
	insertCh  chan struct{}
}

// NewSingle creates a Single accumulator with the given threshold, watching
// for reset packets addressed to myIPv4.
func NewSingle(myIPv4 net.IP, threshold int) *Single {
	return &Single{
		myIPv4:    myIPv4.To4(),
		threshold: threshold,
		q:         quack.New32(threshold),
		firstCh:   make(chan struct{}),
		insertCh:  make(chan struct{}, 1),
	}
}

// FirstPacket returns a channel closed the first time ProcessFrame inserts
// an identifier, letting callers synchronize startup (e.g. benchmarks
// timing from the first observed packet) without polling.
func (s *Single) FirstPacket() <-chan struct{} {
	return s.firstCh
}

// InsertNotify returns a channel with one pending slot that receives a
// wake-up after every insert. It carries no payload: a count-based
// transmitter (pkg/transmit) reacts to the wake-up by re-reading
// Snapshot().Count() itself rather than trusting a count shipped through
// the channel, so the transmitter always operates off quack.count itself.
// A send never blocks the insert path: if the single pending slot is
// already full the wake-up is dropped, since the transmitter will still
// observe the up-to-date count next time it drains the channel.
func (s *Single) InsertNotify() <-chan struct{} {
	return s.insertCh
}

func (s *Single) notifyInsert() {
	select {
	case s.insertCh <- struct{}{}:
	default:
	}
}

// Reset reinitializes the digest and clears the log.
func (s *Single) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Single) resetLocked() {
	s.q = quack.New32(s.threshold)
	s.log = nil
}

// ProcessFrame classifies one captured frame and either inserts its
// identifier, resets the digest, or ignores it (non-IP, non-UDP, not
// incoming). protocol is the L2 protocol field the tap captured alongside
// buf (see packet.IsIP); a socket bound with ETH_P_ALL delivers ARP, IPv6
// and other non-IP frames too, and a 67-byte frame of one of those happening
// to carry 17 at byte 23 must not be misread as UDP. It returns true if the
// identifier was inserted.
func (s *Single) ProcessFrame(buf *packet.Buffer, direction packet.Direction, protocol uint16) bool {
	if direction != packet.DirectionIncoming {
		return false
	}
	if !packet.IsIP(protocol) {
		return false
	}
	if !buf.IsUDP() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if buf.DstIP().Equal(s.myIPv4) {
		s.resetLocked()
		return false
	}

	if s.threshold > 0 {
		id := buf.Identifier()
		s.q.Insert(id)
		s.log = append(s.log, id)
	}

	s.firstOnce.Do(func() { close(s.firstCh) })
	s.notifyInsert()
	return true
}

// InsertPacket inserts id directly, bypassing frame classification, for a
// caller that obtains identifiers some other way than sniffing them off the
// wire. It sends an insert notification but does not signal FirstPacket.
func (s *Single) InsertPacket(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.threshold > 0 {
		s.q.Insert(id)
		s.log = append(s.log, id)
	}
	s.notifyInsert()
}

// Snapshot returns a copy of the current digest without disturbing ongoing
// inserts; inserts racing a concurrent snapshot may land before or after it
// but never partially.
func (s *Single) Snapshot() *quack.Quack32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Clone()
}

// SnapshotWithLog returns a copy of the digest and a copy of the log of
// every identifier inserted since the last reset.
func (s *Single) SnapshotWithLog() (*quack.Quack32, []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logCopy := make([]uint32, len(s.log))
	copy(logCopy, s.log)
	return s.q.Clone(), logCopy
}
