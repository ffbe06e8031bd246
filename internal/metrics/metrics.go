package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_updates_total",
		Help: "Field updates handled, labelled by entity type and outcome.",
	}, []string{"entity", "outcome"})

	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facility_events_published_total",
		Help: "Change events handed to the broadcast hub.",
	})

	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facility_subscribers_dropped_total",
		Help: "Subscribers disconnected because their buffer was full.",
	})

	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "facility_subscribers",
		Help: "Currently connected change-feed subscribers (websocket and gRPC).",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "facility_sessions_active",
		Help: "Sessions currently held in the session registry.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_logins_total",
		Help: "Login attempts, labelled by outcome (ok, bad_credentials, rejected, error).",
	}, []string{"outcome"})

	SessionsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facility_sessions_pruned_total",
		Help: "Idle sessions removed by the pruner.",
	})

	DBTxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facility_db_tx_duration_ms",
		Help:    "Write transaction latency in milliseconds, labelled by result.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"result"})
)

// ObserveTx matches db.TxObserver.
func ObserveTx(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DBTxDuration.WithLabelValues(result).Observe(float64(elapsed.Microseconds()) / 1000)
}
