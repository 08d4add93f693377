package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "justplanit",
		Name:      "analyses_total",
		Help:      "Idea analyses by entry point and outcome.",
	}, []string{"mode", "outcome"})

	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "justplanit",
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of idea analyses, including the completion call.",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 60, 90, 120, 180},
	}, []string{"mode"})
)

func observe(mode string, err error, seconds float64) {
	outcome := "success"
	if err != nil {
		outcome = ErrorKind(err)
	}
	analysesTotal.WithLabelValues(mode, outcome).Inc()
	analysisDuration.WithLabelValues(mode).Observe(seconds)
}
