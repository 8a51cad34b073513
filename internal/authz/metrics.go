package authz

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultGranted = "granted"
	resultDenied  = "denied"
	resultError   = "error"
)

var (
	decisions     *prometheus.CounterVec //nolint:gochecknoglobals
	decisionsOnce sync.Once              //nolint:gochecknoglobals
)

// decisionCounter returns the authz_decisions_total counter, registering it on first use.
func decisionCounter() *prometheus.CounterVec {
	decisionsOnce.Do(func() {
		decisions = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authz_decisions_total",
				Help: "Number of authorization decisions, differentiated by check and result.",
			},
			[]string{"check", "result"},
		)
	})

	return decisions
}

func countDecision(check string, granted bool, err error) {
	result := resultDenied

	switch {
	case err != nil:
		result = resultError
	case granted:
		result = resultGranted
	}

	decisionCounter().WithLabelValues(check, result).Inc()
}
