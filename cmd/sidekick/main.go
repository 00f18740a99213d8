// Command sidekick runs a single-flow on-path observer: it sniffs one
// interface, accumulates identifiers from incoming traffic into a
// power-sum quACK, and periodically transmits the digest to a configured
// endpoint. Grounded on cmd/get/main.go's shape of a narrow single-purpose
// binary, with the cobra/pflag command tree of ja7ad-consumption's
// cmd/consumption/main.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simeonmiteff/quack-sidekick/pkg/config"
	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/sidekick"
	"github.com/simeonmiteff/quack-sidekick/pkg/tap"
	"github.com/simeonmiteff/quack-sidekick/pkg/transmit"
	"github.com/simeonmiteff/quack-sidekick/pkg/transport"
)

func main() {
	var cfg *config.Config

	root := &cobra.Command{
		Use:   "sidekick",
		Short: "Single-flow on-path quACK observer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	cfg = config.Bind(root.Flags())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		logrus.Fatalf("sidekick: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Bits != 32 {
		return fmt.Errorf("sidekick: --bits=%d not supported (only 32 is wired to a running accumulator)", cfg.Bits)
	}
	if cfg.Interface == "" {
		return fmt.Errorf("sidekick: --interface is required")
	}
	myAddr, err := cfg.ResolveMyAddr()
	if err != nil {
		return err
	}
	targetAddr, err := cfg.ResolveTargetAddr()
	if err != nil {
		return err
	}

	t, err := tap.Open(cfg.Interface)
	if err != nil {
		return fmt.Errorf("sidekick: opening interface %s: %w", cfg.Interface, err)
	}
	defer t.Close()

	acc := sidekick.NewSingle(myAddr.IP, cfg.Threshold)

	report := func(c *transport.Conn, event transport.Event) {
		if event == transport.EventSent {
			logrus.WithField("fd", c.Fd()).Debug("sent quack snapshot")
		}
	}
	tx, err := transmit.NewSingle(acc, targetAddr, report, logrus.StandardLogger())
	if err != nil {
		return fmt.Errorf("sidekick: dialing target %s: %w", targetAddr, err)
	}
	defer tx.Close()

	stopCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopCh)
	}()

	go sniffLoop(ctx, t, acc)

	switch {
	case cfg.FrequencyPkts > 0:
		tx.RunCountBased(cfg.FrequencyPkts, stopCh)
	case cfg.FrequencyMS > 0:
		tx.RunTimeBased(cfg.FrequencyMS, stopCh)
	default:
		tx.RunTimeBased(time.Second, stopCh)
	}

	logrus.Info("sidekick: shutdown complete")
	return nil
}

// ingress is the subset of *sidekick.Single the sniff loop needs.
type ingress interface {
	ProcessFrame(buf *packet.Buffer, direction packet.Direction, protocol uint16) bool
}

func sniffLoop(ctx context.Context, t tap.Tap, acc ingress) {
	var buf packet.Buffer
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, pktType, protocol, err := t.Recv(buf[:])
		if err != nil {
			logrus.WithError(err).Warn("sidekick: tap recv failed")
			continue
		}
		if n != packet.BufferSize {
			continue
		}
		acc.ProcessFrame(&buf, packet.ClassifyDirection(pktType), protocol)
	}
}
