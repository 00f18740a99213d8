package metrics

// FlowStats is the per-flow payload scanned by cmd/quack-metrics-gen to
// produce generated_collectors.go, tagged with a quackm struct tag per
// field rather than an out-of-band metric registry.
type FlowStats struct {
	Count     int64  `quackm:"name='quack_flow_count',prom_type='gauge',prom_help='Number of identifiers currently tracked by the flow digest.'"`
	Last      uint32 `quackm:"name='quack_flow_last_identifier',prom_type='gauge',prom_help='Last identifier inserted into the flow digest.'"`
	Resets    uint64 `quackm:"name='quack_flow_resets_total',prom_type='counter',prom_help='Number of times the flow digest has been reset.'"`
	Snapshots uint64 `quackm:"name='quack_flow_snapshots_total',prom_type='counter',prom_help='Number of snapshots emitted for the flow.'"`
}
