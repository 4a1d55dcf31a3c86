package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todos_audit_messages_published_total",
		Help: "Total number of audit messages published to the log channel.",
	})
	AuditPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todos_audit_messages_failed_total",
		Help: "Total number of audit messages that failed to publish.",
	})
)
