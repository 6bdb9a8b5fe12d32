package assessment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// submissions counts accepted batches.
	// Labels: kind (case, quiz)
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "assessment",
		Name:      "submissions_total",
		Help:      "Total graded batches accepted",
	}, []string{"kind"})

	// rejected counts batches refused before any state changed.
	// Labels: reason (invalid, contradictory, duplicate, empty)
	rejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "assessment",
		Name:      "rejected_submissions_total",
		Help:      "Total graded batches rejected by validation",
	}, []string{"reason"})

	// sinkFailures counts score events that could not be delivered.
	sinkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "assessment",
		Name:      "score_event_failures_total",
		Help:      "Total score events that failed to reach a sink",
	})
)
