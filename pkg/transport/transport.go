// Package transport wraps a *net.UDPConn to track open time, bytes sent,
// and the last send error, invoking an optional callback after every
// datagram so a caller can surface send failures (logged, loop continues)
// without the hot send path itself allocating or blocking on logging.
package transport

import (
	"net"
	"sync"
	"time"

	"github.com/higebu/netfd"
)

// Event identifies which lifecycle point triggered a ReportStatsFn call.
type Event int

const (
	EventOpened Event = iota
	EventSent
	EventClosed
)

// ReportStatsFn is invoked after every datagram send (and once on open and
// close) with the current state of the connection.
type ReportStatsFn func(c *Conn, event Event)

// Conn wraps a *net.UDPConn, accumulating send statistics across its
// lifetime. It is safe for concurrent use by multiple goroutines, though
// the transmitter (pkg/transmit) uses each Conn from a single goroutine in
// practice.
type Conn struct {
	*net.UDPConn

	mu         sync.Mutex
	report     ReportStatsFn
	openedAt   time.Time
	sentBytes  int64
	sentCount  int64
	lastErr    error
	fd         int
	fdResolved bool
}

// Dial opens a UDP socket bound to an ephemeral local port and connected to
// addr, wrapping it for instrumented sends. report may be nil.
func Dial(addr *net.UDPAddr, report ReportStatsFn) (*Conn, error) {
	uc, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	c := &Conn{
		UDPConn:  uc,
		report:   report,
		openedAt: time.Now(),
	}
	c.fd = netfd.GetFdFromConn(uc)
	c.fdResolved = true
	if c.report != nil {
		c.report(c, EventOpened)
	}
	return c, nil
}

// Fd returns the raw file descriptor of the underlying socket, resolved
// once at Dial time via netfd rather than on every send.
func (c *Conn) Fd() int { return c.fd }

// OpenedAt returns when the connection was dialed.
func (c *Conn) OpenedAt() time.Time { return c.openedAt }

// Stats returns the cumulative bytes sent, number of sends, and the most
// recent send error (nil if the last send, if any, succeeded).
func (c *Conn) Stats() (bytes int64, count int64, lastErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sentBytes, c.sentCount, c.lastErr
}

// Send writes b as one datagram and reports the outcome.
func (c *Conn) Send(b []byte) error {
	n, err := c.Write(b)

	c.mu.Lock()
	c.sentBytes += int64(n)
	c.sentCount++
	c.lastErr = err
	c.mu.Unlock()

	if c.report != nil {
		c.report(c, EventSent)
	}
	return err
}

// Close closes the underlying socket and reports the final state.
func (c *Conn) Close() error {
	err := c.UDPConn.Close()
	if c.report != nil {
		c.report(c, EventClosed)
	}
	return err
}
