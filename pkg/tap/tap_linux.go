//go:build linux

package tap

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/simeonmiteff/quack-sidekick/pkg/kernel"
)

func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

type linuxTap struct {
	fd int
}

func open(iface string) (Tap, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("tap: %w", err)
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("tap: socket: %w", err)
	}

	sll := &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sll); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tap: bind: %w", err)
	}

	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &unix.PacketMreq{
		Ifindex: int32(ifi.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tap: set promiscuous: %w", err)
	}

	if kernel.Supports(kernel.FeatureFanout) {
		// Multi-queue fan-out is an opportunistic optimization: a single
		// reader still works correctly if this fails, so the error is not
		// fatal to Open.
		fanoutArg := int(1)<<16 | int(unix.PACKET_FANOUT_HASH)
		_ = unix.SetsockoptInt(fd, unix.SOL_PACKET, unix.PACKET_FANOUT, fanoutArg)
	}

	return &linuxTap{fd: fd}, nil
}

func (t *linuxTap) Recv(buf []byte) (int, byte, uint16, error) {
	n, from, err := unix.Recvfrom(t.fd, buf, 0)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("tap: recvfrom: %w", err)
	}
	sll, ok := from.(*unix.SockaddrLinklayer)
	if !ok {
		return n, 0, 0, nil
	}
	return n, sll.Pkttype, sll.Protocol, nil
}

func (t *linuxTap) Close() error {
	return unix.Close(t.fd)
}
