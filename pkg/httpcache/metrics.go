package httpcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks middleware outcomes per request.
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholar_httpcache_requests_total",
			Help: "Total requests seen by the caching middleware",
		},
		[]string{"result"}, // "hit", "miss", "bypass"
	)

	// faultsTotal tracks cache faults degraded to forced misses.
	faultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_httpcache_faults_total",
			Help: "Total cache faults contained by the middleware",
		},
	)
)
