// Command reconciler plays the end-host role of the quACK protocol: it
// sends identifier-tagged packets toward a peer, mirrors what it believes
// the sidekick has observed, listens for incoming sidekick snapshots, and
// decides between a full reset and a targeted retransmission of whatever a
// diff-and-decode pass identifies as missing. Grounded on
// webrtc_client.rs's listen_for_quacks_power_sum loop and sender.rs's
// packet-tagging scheme, with an added /status endpoint in the style of
// cake-stats' pkg/server.
package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simeonmiteff/quack-sidekick/pkg/config"
	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/quack"
	"github.com/simeonmiteff/quack-sidekick/pkg/reconcile"
)

// status is the JSON body served at /status.
type status struct {
	LogLen          int    `json:"log_len"`
	LastOutcome     string `json:"last_outcome"`
	PacketsSent     int64  `json:"packets_sent"`
	Retransmissions int64  `json:"retransmissions"`
	Resets          int64  `json:"resets"`
}

type statusTracker struct {
	mu sync.Mutex
	status
}

func (s *statusTracker) snapshot() status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func main() {
	var cfg *config.Config
	var statusAddr string
	var sendInterval time.Duration

	root := &cobra.Command{
		Use:   "reconciler",
		Short: "End-host quACK reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, statusAddr, sendInterval)
		},
	}
	cfg = config.Bind(root.Flags())
	root.Flags().StringVar(&statusAddr, "status-addr", "0.0.0.0:9274", "bind address for the /status endpoint")
	root.Flags().DurationVar(&sendInterval, "send-interval", 10*time.Millisecond, "interval between synthetic outgoing packets")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		logrus.Fatalf("reconciler: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, statusAddr string, sendInterval time.Duration) error {
	if err := cfg.ValidateThreshold(); err != nil {
		return err
	}
	myAddr, err := cfg.ResolveMyAddr()
	if err != nil {
		return err
	}
	targetAddr, err := cfg.ResolveTargetAddr()
	if err != nil {
		return err
	}

	listenConn, err := net.ListenUDP("udp", myAddr)
	if err != nil {
		return fmt.Errorf("reconciler: listening on %s: %w", myAddr, err)
	}
	defer listenConn.Close()

	sendConn, err := net.DialUDP("udp", nil, targetAddr)
	if err != nil {
		return fmt.Errorf("reconciler: dialing %s: %w", targetAddr, err)
	}
	defer sendConn.Close()

	r := reconcile.New(cfg.Threshold)
	tracker := &statusTracker{}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tracker.snapshot())
	})
	srv := &http.Server{Addr: statusAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("reconciler: status server failed")
		}
	}()

	go sendLoop(ctx, sendConn, r, tracker, sendInterval)

	recvLoop(ctx, listenConn, sendConn, r, tracker)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logrus.Info("reconciler: shutdown complete")
	return nil
}

// sendLoop emits a synthetic identifier-tagged packet every interval and
// records it in the reconciler's send log.
func sendLoop(ctx context.Context, conn *net.UDPConn, r *reconcile.Reconciler, tracker *statusTracker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seqno uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id := rand.Uint32()
			sendPacket(conn, id, tracker)
			r.Push(seqno, id)
			seqno++
		}
	}
}

// payloadSize is the UDP payload length once the Ethernet, IPv4 and UDP
// headers the tap captures alongside it are excluded.
const payloadSize = packet.BufferSize - 14 - 20 - 8

// payloadIDOffset is packet.IDOffset translated from a full captured frame
// offset to an offset within just the UDP payload this process writes.
const payloadIDOffset = packet.IDOffset - 14 - 20 - 8

func encodeIdentifierPacket(id uint32) []byte {
	buf := make([]byte, payloadSize)
	binary.BigEndian.PutUint32(buf[payloadIDOffset:], id)
	return buf
}

func sendPacket(conn *net.UDPConn, id uint32, tracker *statusTracker) {
	if _, err := conn.Write(encodeIdentifierPacket(id)); err != nil {
		logrus.WithError(err).Warn("reconciler: send failed")
		return
	}
	tracker.mu.Lock()
	tracker.PacketsSent++
	tracker.mu.Unlock()
}

// recvLoop listens for incoming sidekick snapshots and reconciles each one.
func recvLoop(ctx context.Context, listenConn *net.UDPConn, sendConn *net.UDPConn, r *reconcile.Reconciler, tracker *statusTracker) {
	buf := make([]byte, 65536)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = listenConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, err := listenConn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			logrus.WithError(err).Warn("reconciler: recv failed")
			continue
		}

		remote, err := quack.UnmarshalQuack32(buf[:n])
		if err != nil {
			logrus.WithError(err).Warn("reconciler: malformed snapshot")
			continue
		}

		outcome := r.ProcessSnapshot(remote, time.Now())
		applyOutcome(outcome, sendConn, r, tracker)
	}
}

// applyOutcome acts on one ProcessSnapshot result: a reset sends a
// zero-byte datagram to the sidekick's reset address (the same connected
// target, since the reset address and the snapshot target coincide in this
// single-flow demo), and a set of missing entries is retransmitted by
// resending each one's identifier.
func applyOutcome(outcome reconcile.Outcome, sendConn *net.UDPConn, r *reconcile.Reconciler, tracker *statusTracker) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.LogLen = r.LogLen()

	switch {
	case outcome.Ignored:
		tracker.LastOutcome = "ignored"
	case outcome.ResetSuppressed:
		tracker.LastOutcome = "reset-suppressed"
	case outcome.Reset:
		tracker.LastOutcome = "reset"
		tracker.Resets++
		if _, err := sendConn.Write(nil); err != nil {
			logrus.WithError(err).Warn("reconciler: reset datagram failed")
		}
	case len(outcome.Missing) > 0:
		tracker.LastOutcome = fmt.Sprintf("retransmit %d", len(outcome.Missing))
		for _, e := range outcome.Missing {
			if _, err := sendConn.Write(encodeIdentifierPacket(e.ID)); err != nil {
				logrus.WithError(err).Warn("reconciler: retransmit failed")
				continue
			}
			tracker.Retransmissions++
		}
	default:
		tracker.LastOutcome = "acked"
	}
}
