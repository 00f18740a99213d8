// Package transmit implements the snapshot transmitter: it reads a quACK
// accumulator on a schedule and emits the serialized digest as a UDP
// datagram. Two mutually exclusive scheduling modes are supported, time-
// based and count-based, grounded on the reference sender.rs's
// send_quacks/start_frequency_pkts split.
package transmit

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
	"github.com/simeonmiteff/quack-sidekick/pkg/transport"
)

// SingleSource is the subset of *sidekick.Single a transmitter needs.
type SingleSource interface {
	Snapshot() *quack.Quack32
	FirstPacket() <-chan struct{}
	InsertNotify() <-chan struct{}
}

// MultiSource is the subset of *sidekick.Multi a transmitter needs.
type MultiSource interface {
	Flows() []packet.FlowKey
	Snapshot(key packet.FlowKey) (*quack.Quack32, bool)
	FirstPacket() <-chan struct{}
	InsertNotify() <-chan packet.FlowKey
}

// Single transmits one flow's digest to a single UDP endpoint.
type Single struct {
	source SingleSource
	conn   *transport.Conn
	log    *logrus.Logger
}

// NewSingle opens a UDP connection to addr and returns a transmitter bound
// to source. report (may be nil) observes the underlying socket's send
// lifecycle.
func NewSingle(source SingleSource, addr *net.UDPAddr, report transport.ReportStatsFn, log *logrus.Logger) (*Single, error) {
	conn, err := transport.Dial(addr, report)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Single{source: source, conn: conn, log: log}, nil
}

// Close releases the underlying socket.
func (t *Single) Close() error { return t.conn.Close() }

func (t *Single) send() {
	q := t.source.Snapshot()
	b, err := q.MarshalBinary()
	if err != nil {
		t.log.WithError(err).Error("failed to marshal quack snapshot")
		return
	}
	if err := t.conn.Send(b); err != nil {
		// Transport failure: log and continue rather than aborting the loop.
		t.log.WithError(err).Warn("snapshot send failed")
	}
}

// RunTimeBased snapshots and sends every interval, skipping missed ticks.
// The first tick fires only after source's first packet has been observed.
// The loop returns as soon as stop is closed.
func (t *Single) RunTimeBased(interval time.Duration, stop <-chan struct{}) {
	select {
	case <-t.source.FirstPacket():
	case <-stop:
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.send()
		case <-stop:
			return
		}
	}
}

// RunCountBased sends after every k inserted identifiers, computing the
// modulus off the snapshot's own Count() rather than a separately
// maintained counter, always deriving the modulus from quack.count itself.
func (t *Single) RunCountBased(k int, stop <-chan struct{}) {
	if k <= 0 {
		return
	}
	for {
		select {
		case <-t.source.InsertNotify():
			if int(t.source.Snapshot().Count())%k == 0 {
				t.send()
			}
		case <-stop:
			return
		}
	}
}

// Multi transmits every flow's digest, one datagram per flow, to a single
// UDP endpoint.
type Multi struct {
	source MultiSource
	conn   *transport.Conn
	log    *logrus.Logger
}

// NewMulti opens a UDP connection to addr and returns a transmitter bound
// to source.
func NewMulti(source MultiSource, addr *net.UDPAddr, report transport.ReportStatsFn, log *logrus.Logger) (*Multi, error) {
	conn, err := transport.Dial(addr, report)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Multi{source: source, conn: conn, log: log}, nil
}

// Close releases the underlying socket.
func (t *Multi) Close() error { return t.conn.Close() }

func (t *Multi) sendFlow(key packet.FlowKey) {
	q, ok := t.source.Snapshot(key)
	if !ok {
		return
	}
	b, err := q.MarshalBinary()
	if err != nil {
		t.log.WithError(err).WithField("flow", key).Error("failed to marshal quack snapshot")
		return
	}
	if err := t.conn.Send(b); err != nil {
		t.log.WithError(err).WithField("flow", key).Warn("snapshot send failed")
	}
}

// RunTimeBased snapshots and sends every flow's digest every interval,
// skipping missed ticks. The first tick fires only after the source's
// first packet has been observed across any flow.
func (t *Multi) RunTimeBased(interval time.Duration, stop <-chan struct{}) {
	select {
	case <-t.source.FirstPacket():
	case <-stop:
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, key := range t.source.Flows() {
				t.sendFlow(key)
			}
		case <-stop:
			return
		}
	}
}

// RunCountBased sends a flow's digest after every k identifiers inserted
// into that flow.
func (t *Multi) RunCountBased(k int, stop <-chan struct{}) {
	if k <= 0 {
		return
	}
	for {
		select {
		case key := <-t.source.InsertNotify():
			q, ok := t.source.Snapshot(key)
			if ok && int(q.Count())%k == 0 {
				t.sendFlow(key)
			}
		case <-stop:
			return
		}
	}
}
