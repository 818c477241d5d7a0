package workflow

import "github.com/prometheus/client_golang/prometheus"

var (
	callsRegistered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regiond",
		Subsystem: "workflow",
		Name:      "calls_registered_total",
		Help:      "Workflow calls queued by a unit of work.",
	}, []string{"workflow"})

	callsMerged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regiond",
		Subsystem: "workflow",
		Name:      "calls_merged_total",
		Help:      "Registrations merged into an already pending call.",
	}, []string{"workflow"})

	callsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regiond",
		Subsystem: "workflow",
		Name:      "calls_dispatched_total",
		Help:      "Workflow calls handed to the executor, by result.",
	}, []string{"workflow", "result"})
)

func init() {
	prometheus.MustRegister(callsRegistered, callsMerged, callsDispatched)
}
