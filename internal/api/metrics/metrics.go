// Package metrics defines all custom Prometheus metrics for the ChatMind
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesSentTotal counts messages accepted and persisted.
// Label:
//   - room_type: "direct" or "group"
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages persisted, by room type.",
	},
	[]string{"room_type"},
)

// ── Fan-out metrics ───────────────────────────────────────────────────────────

// DeliveriesTotal counts per-subscriber delivery attempts.
// Label:
//   - result: "ok" (written to the socket), "failed" (write or enqueue
//     error, connection closing), or "dropped" (dispatcher worker queue full)
var DeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Total number of fan-out delivery attempts, by result.",
	},
	[]string{"result"},
)

// FanoutSubscribers measures how many subscribers each publish call fans
// out to.
var FanoutSubscribers = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fanout_subscribers",
		Help:      "Number of subscribers per publish call.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	},
)

// ── Connection metrics ────────────────────────────────────────────────────────

// ConnectionsActive tracks the number of currently open WebSocket
// connections.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Current number of open WebSocket connections.",
	},
)

// RoomsActive tracks the number of rooms with at least one live subscriber.
var RoomsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms_active",
		Help:      "Current number of rooms with at least one subscriber.",
	},
)
