// Package packet parses the fixed-size link-layer buffer the sniffer tap
// captures into the direction, protocol and addressing fields the sidekick
// accumulators need, plus the fixed-offset identifier the end host embeds
// in each datagram. Every accessor is a pure read over a 67-byte buffer: no
// allocation, no error path, matching the reference UdpParser's offset
// table for an Ethernet+IPv4+UDP header stack.
package packet

import (
	"encoding/binary"
	"net"
)

// BufferSize is the fixed capture length: 14 bytes of Ethernet header, 20 of
// IPv4, 8 of UDP, and 25 bytes of payload carrying the 4-byte identifier at
// a fixed offset.
const BufferSize = 67

// IDOffset is the offset of the 4-byte big-endian identifier within the
// buffer: a randomly-encrypted QUIC short-header payload places it here.
const IDOffset = 63

// ipProtocolUDP is the IPv4 protocol number for UDP.
const ipProtocolUDP = 17

// EthPIP is ETH_P_IP (0x0800) as AF_PACKET reports it in
// sockaddr_ll.sll_protocol: network byte order, not swapped to host order by
// the kernel or by golang.org/x/sys/unix on the way out.
const EthPIP = 0x0008

// Link-layer packet types, as reported by AF_PACKET's sockaddr_ll.sll_pkttype
// (see linux/if_packet.h). These describe how the kernel classified the
// frame relative to the interface it was captured on, not anything encoded
// in the frame itself.
const (
	PacketHost      = 0
	PacketOtherhost = 3
	PacketOutgoing  = 4
)

// Direction classifies a captured frame relative to the tapped host.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionIncoming
	DirectionOutgoing
)

// ClassifyDirection maps an AF_PACKET pkttype byte to a Direction.
// PacketHost and PacketOtherhost both mean the frame arrived off the wire
// (the latter when the interface is in promiscuous mode and the frame
// wasn't addressed to this host); PacketOutgoing means the host sent it.
func ClassifyDirection(pktType byte) Direction {
	switch pktType {
	case PacketHost, PacketOtherhost:
		return DirectionIncoming
	case PacketOutgoing:
		return DirectionOutgoing
	default:
		return DirectionUnknown
	}
}

// Buffer is a captured frame, laid out as Ethernet+IPv4+UDP+payload.
type Buffer [BufferSize]byte

// IsUDP reports whether the IPv4 protocol field identifies a UDP payload.
func (b *Buffer) IsUDP() bool {
	return b[23] == ipProtocolUDP
}

// IsIP reports whether protocol, the L2 protocol field the tap captured
// alongside the frame (sockaddr_ll.sll_protocol on Linux), identifies an
// IPv4 payload. It takes the protocol value rather than reading it from the
// buffer because AF_PACKET with ETH_P_ALL delivers every link-layer
// protocol, and the only reliable place to learn which one arrived is the
// capture address the kernel hands back alongside the frame, not a fixed
// buffer offset that only means "EtherType" for frames that are Ethernet II
// to begin with.
func IsIP(protocol uint16) bool {
	return protocol == EthPIP
}

// SrcIP returns the IPv4 source address.
func (b *Buffer) SrcIP() net.IP {
	return net.IPv4(b[26], b[27], b[28], b[29])
}

// DstIP returns the IPv4 destination address.
func (b *Buffer) DstIP() net.IP {
	return net.IPv4(b[30], b[31], b[32], b[33])
}

// SrcPort returns the UDP source port.
func (b *Buffer) SrcPort() uint16 {
	return binary.BigEndian.Uint16(b[34:36])
}

// DstPort returns the UDP destination port.
func (b *Buffer) DstPort() uint16 {
	return binary.BigEndian.Uint16(b[36:38])
}

// Identifier returns the 4-byte big-endian identifier at IDOffset.
func (b *Buffer) Identifier() uint32 {
	return binary.BigEndian.Uint32(b[IDOffset : IDOffset+4])
}

// FlowKey uniquely identifies a UDP 4-tuple: 12 bytes of
// src_ip‖src_port‖dst_ip‖dst_port, suitable as a map key for the multi-flow
// accumulator (component H).
type FlowKey [12]byte

// FlowKey extracts the 4-tuple flow key from the buffer.
func (b *Buffer) FlowKey() FlowKey {
	var k FlowKey
	copy(k[0:4], b[26:30])   // src_ip
	copy(k[4:6], b[34:36])   // src_port
	copy(k[6:10], b[30:34])  // dst_ip
	copy(k[10:12], b[36:38]) // dst_port
	return k
}

// EndpointKey identifies a destination endpoint (IP+port) without the
// source side of the flow: 6 bytes of dst_ip‖dst_port. The multi-flow
// accumulator resets a flow's digest when a packet's destination matches
// the configured endpoint key, rather than just its destination IP, so that
// distinct flows multiplexed to the same host (e.g. two QUIC connections
// to the same server IP on different ports) are disambiguated.
type EndpointKey [6]byte

// DstEndpointKey extracts the destination endpoint key from the buffer.
func (b *Buffer) DstEndpointKey() EndpointKey {
	var k EndpointKey
	copy(k[0:4], b[30:34])
	copy(k[4:6], b[36:38])
	return k
}
