// Package reconcile implements the receiver-side reconciler: given a
// per-flow send-order log and a mirror digest, it reconciles incoming
// sidekick snapshots against what was actually sent, deciding between a
// full resync (reset) and a targeted retransmission of the packets a
// diff-then-decode pass identifies as missing. Grounded on
// webrtc_client.rs's listen_for_quacks_power_sum loop.
package reconcile

import (
	"time"

	"github.com/simeonmiteff/quack-sidekick/pkg/field"
	"github.com/simeonmiteff/quack-sidekick/pkg/poly"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
)

// DefaultResetCooldown is the minimum time between reset datagrams for one
// flow, preventing a reset storm while the remote end is still catching up
// to a prior reset.
const DefaultResetCooldown = 100 * time.Millisecond

// LogEntry pairs a send-order sequence number with the identifier that was
// derived from it (e.g. a hash of the packet payload).
type LogEntry struct {
	Seqno uint32
	ID    uint32
}

// Outcome reports what ProcessSnapshot decided for one incoming remote
// snapshot.
type Outcome struct {
	// Ignored is true if the snapshot was redundant (same last value as
	// already processed) and nothing else happened.
	Ignored bool
	// Reset is true if local state was wiped and the caller must send a
	// zero-byte reset datagram to the sidekick's reset endpoint.
	Reset bool
	// ResetSuppressed is true if a reset was warranted but skipped because
	// the cooldown since the last reset has not yet elapsed.
	ResetSuppressed bool
	// Missing lists the log entries the diff-and-decode pass identified as
	// not yet observed by the sidekick; the caller is responsible for
	// actually retransmitting each one.
	Missing []LogEntry
}

// Reconciler tracks, for one outbound flow, a mirror quACK of everything
// the sidekick is believed to have observed and an ordered log of
// everything actually sent, reconciling the two whenever a sidekick
// snapshot arrives.
type Reconciler struct {
	threshold     int
	local         *quack.Quack32
	log           []LogEntry
	resetCooldown time.Duration
	lastReset     time.Time
	hasResetTime  bool
}

// New creates a Reconciler for a flow with the given decode threshold.
func New(threshold int) *Reconciler {
	return &Reconciler{
		threshold:     threshold,
		local:         quack.New32(threshold),
		resetCooldown: DefaultResetCooldown,
	}
}

// SetResetCooldown overrides DefaultResetCooldown, mainly for tests that
// want to observe suppression without sleeping.
func (r *Reconciler) SetResetCooldown(d time.Duration) {
	r.resetCooldown = d
}

// Push records that seqno carrying id was just sent. It does not insert id
// into the mirror digest: the mirror only learns about an identifier once
// a remote snapshot proves the sidekick actually observed it, which is
// more robust to a lossy tap (the sidekick itself may never have seen a
// dropped packet, so optimistically inserting on send would desynchronize
// the mirror from what the sidekick can possibly report).
func (r *Reconciler) Push(seqno, id uint32) {
	r.log = append(r.log, LogEntry{Seqno: seqno, ID: id})
}

// LogLen returns the number of unacknowledged log entries currently held.
func (r *Reconciler) LogLen() int { return len(r.log) }

// Local returns a copy of the current mirror digest, mainly for tests and
// diagnostics.
func (r *Reconciler) Local() *quack.Quack32 { return r.local.Clone() }

// ProcessSnapshot reconciles one incoming sidekick snapshot against the
// send log: it ignores a snapshot whose last value matches the mirror's,
// mirrors the log prefix up to the remote last value, resets (subject to
// the cooldown) on reorder, behind or overflow, and otherwise decodes the
// mirror-minus-remote difference against the log to find missing entries.
func (r *Reconciler) ProcessSnapshot(remote *quack.Quack32, now time.Time) Outcome {
	remoteLast, remoteHasLast := remote.Last()
	localLast, localHasLast := r.local.Last()
	if remoteHasLast == localHasLast && remoteLast == localLast {
		return Outcome{Ignored: true}
	}

	idx := -1
	if remoteHasLast {
		for i, e := range r.log {
			if e.ID == remoteLast {
				idx = i
				break
			}
		}
	}

	reorder := idx == -1
	if !reorder {
		for _, e := range r.log[:idx+1] {
			r.local.Insert(e.ID)
		}
	}

	behind := r.local.Count() < remote.Count()
	overflow := r.local.Count() > remote.Count()+int32(r.threshold)

	if reorder || behind || overflow {
		shouldReset := !r.hasResetTime || now.Sub(r.lastReset) >= r.resetCooldown
		if !shouldReset {
			return Outcome{ResetSuppressed: true}
		}
		r.local = quack.New32(r.threshold)
		r.log = nil
		r.lastReset = now
		r.hasResetTime = true
		return Outcome{Reset: true}
	}

	diff := r.local.Clone()
	diff.Subtract(remote)
	if diff.Count() == 0 {
		r.drain(idx)
		return Outcome{}
	}

	coeffs := diff.Coeffs()
	diffLast, diffHasLast := diff.Last()
	var missing []LogEntry
	for _, e := range r.log {
		if diffHasLast && e.ID == diffLast {
			break
		}
		if poly.Eval32(coeffs, field.NewElement32(e.ID)).IsZero() {
			missing = append(missing, e)
		}
	}

	r.drain(idx)
	for _, e := range missing {
		r.local.Remove(e.ID)
	}
	return Outcome{Missing: missing}
}

// drain removes the acknowledged prefix log[0..=idx] from the log. A
// negative idx (no acknowledged prefix identified) drains nothing.
func (r *Reconciler) drain(idx int) {
	if idx < 0 {
		return
	}
	r.log = append([]LogEntry(nil), r.log[idx+1:]...)
}
