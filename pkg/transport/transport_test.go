package transport

import (
	"net"
	"testing"
)

func TestSendDeliversDatagramAndUpdatesStats(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	var events []Event
	c, err := Dial(ln.LocalAddr().(*net.UDPAddr), func(c *Conn, e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}

	buf := make([]byte, 64)
	n, _, err := ln.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("received %q, want %q", buf[:n], "hello")
	}

	bytes, count, lastErr := c.Stats()
	if bytes != 5 || count != 1 || lastErr != nil {
		t.Errorf("stats = (%d, %d, %v), want (5, 1, nil)", bytes, count, lastErr)
	}
	if c.Fd() <= 0 {
		t.Errorf("fd = %d, want a positive descriptor", c.Fd())
	}

	if len(events) < 2 || events[0] != EventOpened || events[len(events)-1] != EventSent {
		t.Errorf("events = %v, want opened then sent", events)
	}
}

func TestCloseReportsClosedEvent(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	seen := false
	c, err := Dial(ln.LocalAddr().(*net.UDPAddr), func(c *Conn, e Event) {
		if e == EventClosed {
			seen = true
		}
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c.Close()
	if !seen {
		t.Error("expected a closed event to be reported")
	}
}
