package monitoring

import (
	"net/http"
	"time"

	"powchain/logx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type chainPromMetrics struct {
	hashAttempts       prometheus.Counter
	blocksMined        prometheus.Counter
	miningAborted      prometheus.Counter
	staleAppends       prometheus.Counter
	chainHeight        prometheus.Gauge
	miningDuration     prometheus.Histogram
	validationFailures *prometheus.CounterVec
	workersActive      prometheus.Gauge
}

func newChainPromMetrics() *chainPromMetrics {
	return &chainPromMetrics{
		hashAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_hash_attempts_total",
				Help: "Total number of nonces hashed by miners",
			},
		),
		blocksMined: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_blocks_mined_total",
				Help: "Total number of blocks whose proof of work was found",
			},
		),
		miningAborted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_mining_aborted_total",
				Help: "Searches stopped by cancellation or nonce exhaustion",
			},
		),
		staleAppends: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_stale_appends_total",
				Help: "Appends rejected because the chain tail moved while mining",
			},
		),
		chainHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_chain_height",
				Help: "Index of the latest block in the chain",
			},
		),
		miningDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "powchain_mining_duration_seconds",
				Help:    "Wall time spent searching for a single proof of work",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
		),
		validationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powchain_validation_failures_total",
				Help: "Chain validations that found a broken block",
			},
			[]string{"reason"},
		),
		workersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_workers_active",
				Help: "Mining workers currently pulling from the queue",
			},
		),
	}
}

var metrics = newChainPromMetrics()

func RecordHashAttempts(n uint64) {
	metrics.hashAttempts.Add(float64(n))
}

func RecordBlockMined(elapsed time.Duration) {
	metrics.blocksMined.Inc()
	metrics.miningDuration.Observe(elapsed.Seconds())
}

func RecordMiningAborted() {
	metrics.miningAborted.Inc()
}

func RecordStaleAppend() {
	metrics.staleAppends.Inc()
}

func SetChainHeight(height uint64) {
	metrics.chainHeight.Set(float64(height))
}

func RecordValidationFailure(reason string) {
	metrics.validationFailures.WithLabelValues(reason).Inc()
}

func WorkerStarted() {
	metrics.workersActive.Inc()
}

func WorkerStopped() {
	metrics.workersActive.Dec()
}

// ServeMetrics blocks serving /metrics on addr.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logx.Info("METRICS", "serving prometheus metrics at ", addr)
	return server.ListenAndServe()
}
