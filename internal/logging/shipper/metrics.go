package shipper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logship_records_total",
		Help: "The total number of log records accepted by the shipper",
	}, []string{"level", "service"})
	batchesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logship_batches_sent_total",
		Help: "Total number of batches delivered to the sink",
	})
	batchesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logship_batches_dropped_total",
		Help: "Total number of batches dropped after a delivery failure",
	})
	sendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logship_send_duration_seconds",
		Help:    "Time taken to deliver a batch to the sink",
		Buckets: prometheus.DefBuckets,
	})
)
