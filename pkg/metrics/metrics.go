// Copyright (c) 2022, Xerra Earth Observation Institute.
// Copyright (c) 2025, Simeon Miteff.
//
// See LICENSE.TXT in the root directory of this source tree.

package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simeonmiteff/quack-sidekick/pkg/packet"
)

type flowEntry struct {
	stats  *FlowStats
	labels []string
}

// Collector exposes a FlowStats snapshot per tracked flow as Prometheus
// metrics. It is pkg/exporter.TCPInfoCollector with the polled fd swapped
// for a caller-maintained FlowStats pointer: there is no live connection to
// re-query at scrape time, so Collect reads whatever the caller last wrote
// via Record rather than calling back out to the kernel.
type Collector struct {
	flows  map[packet.FlowKey]*flowEntry
	mu     sync.Mutex
	logger func(error)
	infos  []metricInfo
}

// NewCollector builds a Collector. labelNames are the label names attached
// to every metric; values are supplied per flow via Add. constLabels carry
// values fixed for the whole process (e.g. the host's own address).
// errorLoggingCallback receives any error encountered during Collect; it
// must not block.
func NewCollector(labelNames []string, constLabels prometheus.Labels, errorLoggingCallback func(error)) *Collector {
	return &Collector{
		flows:  make(map[packet.FlowKey]*flowEntry),
		logger: errorLoggingCallback,
		infos:  newMetricInfos(labelNames, constLabels),
	}
}

func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	for _, info := range c.infos {
		descs <- info.description
	}
}

func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.flows {
		if entry.stats == nil {
			c.logger(fmt.Errorf("metrics: flow %v has no recorded stats (removing)", key))
			delete(c.flows, key)
			continue
		}

		for _, info := range c.infos {
			metrics <- info.supplier(entry.stats, entry.labels)
		}
	}
}

// Add registers a flow under key with the given per-flow label values,
// ordered to match labelNames. The flow is exposed with a zero FlowStats
// until the first Record call.
func (c *Collector) Add(key packet.FlowKey, labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flows[key] = &flowEntry{
		stats:  &FlowStats{},
		labels: labels,
	}
}

// Remove stops exposing metrics for key. It is a no-op if key was never
// added.
func (c *Collector) Remove(key packet.FlowKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.flows, key)
}

// Record overwrites the stats exposed for key with stats. It is a no-op if
// key was never added, so a flow removed concurrently with a pending
// Record doesn't resurrect itself.
func (c *Collector) Record(key packet.FlowKey, stats FlowStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.flows[key]
	if !ok {
		return
	}
	s := stats
	entry.stats = &s
}
