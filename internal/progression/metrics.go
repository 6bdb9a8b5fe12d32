package progression

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// transitions counts batch outcomes.
// Labels: status (ONGOING, DEMOTED, REPEAT_LEVEL, NEXT_LEVEL)
var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pai_quiz",
	Subsystem: "progression",
	Name:      "transitions_total",
	Help:      "Total case batches by resulting status",
}, []string{"status"})
