// Package metrics exposes Prometheus counters for the claim workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsReportedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaim_items_reported_total",
		Help: "Total number of lost or found items reported.",
	},
		[]string{"kind"},
	)

	ItemsReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reclaim_items_returned_total",
		Help: "Total number of items marked as returned.",
	})

	ClaimsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reclaim_claims_submitted_total",
		Help: "Total number of claim requests submitted.",
	})

	ClaimsDecidedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaim_claims_decided_total",
		Help: "Total number of claim requests decided, by outcome.",
	},
		[]string{"decision"},
	)

	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reclaim_messages_sent_total",
		Help: "Total number of chat messages sent.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaim_operation_errors_total",
		Help: "Total number of failed workflow operations, by operation and failure kind.",
	},
		[]string{"operation", "kind"},
	)
)

// Decision outcomes beyond the owner's explicit accept/reject.
const DecisionAutoRejected = "auto_rejected"
