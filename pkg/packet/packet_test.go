package packet

import (
	"encoding/binary"
	"net"
	"testing"
)

func makeTestBuffer(srcIP, dstIP [4]byte, srcPort, dstPort uint16, ident uint32, protocol byte) *Buffer {
	var b Buffer
	b[23] = protocol
	copy(b[26:30], srcIP[:])
	copy(b[30:34], dstIP[:])
	binary.BigEndian.PutUint16(b[34:36], srcPort)
	binary.BigEndian.PutUint16(b[36:38], dstPort)
	binary.BigEndian.PutUint32(b[IDOffset:IDOffset+4], ident)
	return &b
}

func TestBufferParsesAddressingAndIdentifier(t *testing.T) {
	b := makeTestBuffer([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 5000, 443, 0xDEADBEEF, ipProtocolUDP)

	if !b.IsUDP() {
		t.Fatal("expected IsUDP() true")
	}
	if !b.SrcIP().Equal(net.IPv4(10, 0, 0, 1)) {
		t.Errorf("SrcIP() = %v, want 10.0.0.1", b.SrcIP())
	}
	if !b.DstIP().Equal(net.IPv4(10, 0, 0, 2)) {
		t.Errorf("DstIP() = %v, want 10.0.0.2", b.DstIP())
	}
	if b.SrcPort() != 5000 {
		t.Errorf("SrcPort() = %d, want 5000", b.SrcPort())
	}
	if b.DstPort() != 443 {
		t.Errorf("DstPort() = %d, want 443", b.DstPort())
	}
	if b.Identifier() != 0xDEADBEEF {
		t.Errorf("Identifier() = %#x, want 0xDEADBEEF", b.Identifier())
	}
}

func TestBufferIsUDPFalseForOtherProtocol(t *testing.T) {
	b := makeTestBuffer([4]byte{1, 1, 1, 1}, [4]byte{2, 2, 2, 2}, 1, 2, 3, 6) // TCP
	if b.IsUDP() {
		t.Error("expected IsUDP() false for non-UDP protocol")
	}
}

func TestFlowKeyLayout(t *testing.T) {
	b := makeTestBuffer([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 5000, 443, 1, ipProtocolUDP)
	k := b.FlowKey()
	want := FlowKey{10, 0, 0, 1, 0x13, 0x88, 10, 0, 0, 2, 0x01, 0xBB}
	if k != want {
		t.Errorf("FlowKey() = %v, want %v", k, want)
	}
}

func TestEndpointKeyLayout(t *testing.T) {
	b := makeTestBuffer([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 5000, 443, 1, ipProtocolUDP)
	k := b.DstEndpointKey()
	want := EndpointKey{10, 0, 0, 2, 0x01, 0xBB}
	if k != want {
		t.Errorf("DstEndpointKey() = %v, want %v", k, want)
	}
}

func TestIsIP(t *testing.T) {
	if !IsIP(EthPIP) {
		t.Error("expected IsIP(EthPIP) true")
	}
	if IsIP(0x0608) { // ETH_P_ARP, big-endian
		t.Error("expected IsIP(ETH_P_ARP) false")
	}
	if IsIP(0x0800) { // host-order 0x0800, i.e. the un-swapped constant
		t.Error("expected IsIP to require the network-byte-order form, not the host-order one")
	}
}

func TestClassifyDirection(t *testing.T) {
	cases := []struct {
		pktType byte
		want    Direction
	}{
		{PacketHost, DirectionIncoming},
		{PacketOtherhost, DirectionIncoming},
		{PacketOutgoing, DirectionOutgoing},
		{7, DirectionUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyDirection(tc.pktType); got != tc.want {
			t.Errorf("ClassifyDirection(%d) = %v, want %v", tc.pktType, got, tc.want)
		}
	}
}
