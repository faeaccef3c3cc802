package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelIndex     = "index"
	LabelOperation = "operation"
	LabelResult    = "result"
)

var (
	BuildIndexSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hybridrec",
		Subsystem: "engine",
		Name:      "build_index_seconds",
	}, []string{LabelIndex})
	IndexGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hybridrec",
		Subsystem: "engine",
		Name:      "index_generation",
	})
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybridrec",
		Subsystem: "engine",
		Name:      "requests_total",
	}, []string{LabelOperation, LabelResult})
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybridrec",
		Subsystem: "engine",
		Name:      "cache_hits_total",
	}, []string{LabelOperation})
)

func observe(op string, res *Result, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case res != nil && res.Miss:
		result = "miss"
	case res != nil && len(res.Items) == 0:
		result = "empty"
	}
	RequestsTotal.WithLabelValues(op, result).Inc()
}
