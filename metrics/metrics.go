// Package metrics exposes Prometheus instrumentation for the embed player lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lifecycle metrics
var (
	InstancesRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mwembed_instances_registered_total",
			Help: "Total number of embed player instances registered",
		},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_state_transitions_total",
			Help: "Total number of embed player state transitions by target state",
		},
		[]string{"state"},
	)

	ReadyBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mwembed_ready_batches_total",
			Help: "Total number of readiness batches delivered to waiting callbacks",
		},
	)

	MetadataWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_metadata_waits_total",
			Help: "Total number of metadata waits by outcome",
		},
		[]string{"outcome"}, // "loaded", "timeout"
	)
)

// Backend metrics
var (
	BackendLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_backend_loads_total",
			Help: "Total number of backend loads by backend and status",
		},
		[]string{"backend", "status"},
	)

	BackendSwaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mwembed_backend_swaps_total",
			Help: "Total number of backend swaps on live instances",
		},
	)
)

// Playback metrics
var (
	MonitorTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mwembed_monitor_ticks_total",
			Help: "Total number of monitor loop ticks",
		},
	)

	AccessorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_accessor_failures_total",
			Help: "Total number of backend accessor failures replaced by last-known values",
		},
		[]string{"accessor"},
	)

	ClipsDone = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mwembed_clips_done_total",
			Help: "Total number of clips played to their end",
		},
	)

	Seeks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_seeks_total",
			Help: "Total number of seeks by mode",
		},
		[]string{"mode"}, // "client", "server"
	)
)

// Lookup metrics
var (
	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mwembed_source_lookups_total",
			Help: "Total number of external source lookups by status",
		},
		[]string{"status"}, // "resolved", "failed", "cached"
	)
)
