package warming

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal tracks completed warmup batches by kind.
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholar_warmup_runs_total",
			Help: "Total completed warmup runs",
		},
		[]string{"kind"}, // "essentials", "queue"
	)

	// tasksTotal tracks individual warmup task outcomes.
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholar_warmup_tasks_total",
			Help: "Total warmup tasks by outcome",
		},
		[]string{"outcome"}, // "success", "failed", "skipped"
	)
)
