// Command sidekickd runs a multi-flow on-path observer: it sniffs one
// interface, accumulates identifiers per flow into per-flow power-sum
// quACKs, periodically transmits every flow's digest to a configured
// endpoint, and exposes per-flow stats on /metrics for Prometheus to scrape.
// Grounded on cmd/exporter_example2/main.go's xid-tagged connection loop and
// cmd/cake-stats/main.go's bind-and-serve shape.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simeonmiteff/quack-sidekick/pkg/config"
	"github.com/simeonmiteff/quack-sidekick/pkg/metrics"
	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
	"github.com/simeonmiteff/quack-sidekick/pkg/sidekick"
	"github.com/simeonmiteff/quack-sidekick/pkg/tap"
	"github.com/simeonmiteff/quack-sidekick/pkg/transmit"
)

func main() {
	var cfg *config.Config
	var metricsAddr string

	root := &cobra.Command{
		Use:   "sidekickd",
		Short: "Multi-flow on-path quACK observer with a Prometheus exporter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, metricsAddr)
		},
	}
	cfg = config.Bind(root.Flags())
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "0.0.0.0:9273", "bind address for the /metrics endpoint")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		logrus.Fatalf("sidekickd: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, metricsAddr string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Bits != 32 {
		return fmt.Errorf("sidekickd: --bits=%d not supported (only 32 is wired to a running accumulator)", cfg.Bits)
	}
	if cfg.Interface == "" {
		return fmt.Errorf("sidekickd: --interface is required")
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
		return fmt.Errorf("sidekickd: opening interface %s: %w", cfg.Interface, err)
	}
	defer t.Close()

	var endpoint packet.EndpointKey
	copy(endpoint[0:4], myAddr.IP.To4())
	endpoint[4] = byte(myAddr.Port >> 8)
	endpoint[5] = byte(myAddr.Port)

	acc := sidekick.NewMulti(endpoint, cfg.Threshold)

	collector := metrics.NewCollector([]string{"flow", "trace_id"}, nil, func(err error) {
		logrus.WithError(err).Warn("sidekickd: metrics collect error")
	})
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	tx, err := transmit.NewMulti(acc, targetAddr, nil, logrus.StandardLogger())
	if err != nil {
		return fmt.Errorf("sidekickd: dialing target %s: %w", targetAddr, err)
	}
	defer tx.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("sidekickd: metrics server failed")
		}
	}()

	stopCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopCh)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go sniffLoop(ctx, t, acc, collector)

	switch {
	case cfg.FrequencyPkts > 0:
		tx.RunCountBased(cfg.FrequencyPkts, stopCh)
	case cfg.FrequencyMS > 0:
		tx.RunTimeBased(cfg.FrequencyMS, stopCh)
	default:
		tx.RunTimeBased(time.Second, stopCh)
	}

	logrus.Info("sidekickd: shutdown complete")
	return nil
}

func sniffLoop(ctx context.Context, t tap.Tap, acc *sidekick.Multi, collector *metrics.Collector) {
	var buf packet.Buffer
	seen := make(map[packet.FlowKey]bool)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, pktType, protocol, err := t.Recv(buf[:])
		if err != nil {
			logrus.WithError(err).Warn("sidekickd: tap recv failed")
			continue
		}
		if n != packet.BufferSize {
			continue
		}

		key := buf.FlowKey()
		inserted := acc.ProcessFrame(&buf, packet.ClassifyDirection(pktType), protocol)
		if !inserted {
			continue
		}

		q, ok := acc.Snapshot(key)
		if !ok {
			continue
		}
		trace := acc.TraceID(key)
		last, _ := q.Last()
		if !seen[key] {
			collector.Add(key, []string{fmt.Sprintf("%x", key), trace.String()})
			seen[key] = true
		}
		collector.Record(key, metrics.FlowStats{
			Count:     int64(q.Count()),
			Last:      last,
			Snapshots: 0,
		})
	}
}
