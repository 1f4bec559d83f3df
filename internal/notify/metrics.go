package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery metrics. Failures are labeled by pipeline stage so a flaky mail
// provider is distinguishable from a broken notification table.
var (
	eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_notify_events_dispatched_total",
		Help: "Number of domain events processed by the notification dispatcher.",
	}, []string{"kind"})

	recordsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_records_delivered_total",
		Help: "Number of in-app notification records durably persisted.",
	})

	emailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_emails_sent_total",
		Help: "Number of notification emails accepted by the delivery gateway.",
	})

	deliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_notify_failures_total",
		Help: "Per-recipient notification failures by pipeline stage.",
	}, []string{"stage"})
)

// Failure stage label values.
const (
	stageResolution = "resolution"
	stagePersist    = "persist"
	stageEmail      = "email"
)
