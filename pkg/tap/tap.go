// Package tap defines the sniffer source the core packages consume: a
// narrow Recv/Close interface standing in for a raw recvfrom(buf, addr)
// call. pkg/sidekick does not import this package: the cmd/ drivers read
// frames from a Tap and pass the buffers to the accumulators, so
// pkg/sidekick's tests run without root privileges or a real network
// interface.
package tap

import "errors"

// ErrUnsupportedPlatform is returned by Open on platforms with no raw
// AF_PACKET capture implementation (everything but linux).
var ErrUnsupportedPlatform = errors.New("tap: raw packet capture is not supported on this platform")

// Tap receives raw L2 frames from a network interface along with the
// kernel's classification of each frame's direction (PACKET_HOST,
// PACKET_OTHERHOST, PACKET_OUTGOING, ...) and its L2 protocol field
// (sockaddr_ll.sll_protocol), since a socket bound with ETH_P_ALL delivers
// every protocol the interface sees, not just IP.
type Tap interface {
	// Recv blocks until a frame is available, copies it into buf, and
	// returns its length, direction byte and L2 protocol field (in network
	// byte order, suitable for packet.IsIP). A transient receive error is
	// returned as-is; the caller decides whether to retry or give up.
	Recv(buf []byte) (n int, direction byte, protocol uint16, err error)
	Close() error
}

// Open starts capturing frames on the named interface. On linux this
// binds an AF_PACKET/SOCK_RAW socket in promiscuous mode; on every other
// platform it returns ErrUnsupportedPlatform.
func Open(iface string) (Tap, error) {
	return open(iface)
}
