package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebSocketBackpressureDrops counts messages dropped because a client's
// send buffer was full or its channel closed.
var WebSocketBackpressureDrops = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "perch_websocket_backpressure_drops_total",
		Help: "Messages dropped due to websocket client backpressure.",
	},
	[]string{"hub", "reason"},
)

// RelayErrors counts realtime message relays converted into error events.
var RelayErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "perch_relay_errors_total",
		Help: "Realtime message relays rejected or failed, by error code.",
	},
	[]string{"code"},
)

// MessagePersistFailures counts messages delivered but not durably stored.
var MessagePersistFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "perch_message_persist_failures_total",
		Help: "Messages emitted to rooms whose persistence afterwards failed.",
	},
)
