package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook ingestion and task processing counters, exposed on /metrics.
var (
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhooks_received_total",
		Help: "Inbound webhook requests by topic.",
	}, []string{"topic"})

	WebhooksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhooks_rejected_total",
		Help: "Webhook requests rejected at the boundary, by reason.",
	}, []string{"reason"})

	EnqueueFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_enqueue_failures_total",
		Help: "Webhook payloads acknowledged but not enqueued; needs manual follow-up.",
	})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasks_processed_total",
		Help: "Background tasks finished, by type and outcome.",
	}, []string{"type", "outcome"})
)
