package runpolicy

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	promNamespace = "sling"
	promSubsystem = "runpolicy"
)

var (
	venueLabels = []string{"venue"}
	submissions = prom.NewCounterVec(prom.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "submissions_total",
		Help:      "remote runs submitted to a scheduler",
	}, venueLabels)
	executeSeconds = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "execute_seconds",
		Help:      "duration of blocking scheduler executions, queue time included",
		Buckets:   prom.ExponentialBuckets(1, 4, 10),
	}, venueLabels)
	hydrationErrors = prom.NewCounterVec(prom.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "hydration_errors_total",
		Help:      "runs whose result files could not be loaded after execution",
	}, venueLabels)
)

func init() {
	prom.MustRegister(submissions)
	prom.MustRegister(executeSeconds)
	prom.MustRegister(hydrationErrors)
}
