// Package metrics exposes Prometheus instrumentation for the bot engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesHandled counts engine invocations by outcome.
	MessagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botengine",
		Name:      "messages_handled_total",
		Help:      "Inbound messages processed by the flow engine, by outcome.",
	}, []string{"outcome"})

	// SessionsCreated counts new conversation sessions.
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "botengine",
		Name:      "sessions_created_total",
		Help:      "Conversation sessions created.",
	})

	// SessionsCompleted counts sessions reaching a terminal state.
	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "botengine",
		Name:      "sessions_completed_total",
		Help:      "Conversation sessions completed.",
	})

	// NodeTraversals counts node processing passes by node type.
	NodeTraversals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botengine",
		Name:      "node_traversals_total",
		Help:      "Nodes processed by the engine loop, by node type.",
	}, []string{"type"})

	// HandleDuration observes end-to-end engine invocation latency.
	HandleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "botengine",
		Name:      "handle_duration_seconds",
		Help:      "Latency of one engine invocation.",
		Buckets:   prometheus.DefBuckets,
	})
)
