package sampling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// itemsServed counts items returned to learners.
	// Labels: mode (flat, hierarchical)
	itemsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "sampling",
		Name:      "items_served_total",
		Help:      "Total items served to learners",
	}, []string{"mode"})

	// exposureResets counts exhausted scopes whose exposure was cleared for a learner.
	exposureResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "sampling",
		Name:      "exposure_resets_total",
		Help:      "Total exposure resets after a scope ran out of unseen items",
	})

	// shortBatches counts batches returned with fewer items than requested.
	// Labels: mode
	shortBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "sampling",
		Name:      "short_batches_total",
		Help:      "Total batches smaller than the requested size",
	}, []string{"mode"})

	// casePicks counts case selections.
	// Labels: source (unseen, any)
	casePicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_quiz",
		Subsystem: "sampling",
		Name:      "case_picks_total",
		Help:      "Total cases picked for learners",
	}, []string{"source"})
)
