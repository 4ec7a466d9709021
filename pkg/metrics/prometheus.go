package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal      prometheus.Counter
	tradesTotal     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	deliveries      prometheus.Counter
	observerCount   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ascent_ticks_total",
				Help: "Total number of scheduler ticks executed (paused ticks excluded)",
			},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascent_trades_total",
				Help: "Total number of executed trades",
			},
			[]string{"symbol", "side"},
		),
		eventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascent_events_published_total",
				Help: "Total number of events published to the broker channel",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ascent_last_price",
				Help: "Last observed close price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascent_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ascent_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		deliveries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ascent_broadcast_deliveries_total",
				Help: "Total number of event deliveries to connected observers",
			},
		),
		observerCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ascent_observer_connections",
				Help: "Number of currently connected websocket observers",
			},
		),
	}
}

// RecordTick records one executed scheduler tick.
func (r *Recorder) RecordTick() {
	r.ticksTotal.Inc()
}

// RecordTrade records an executed trade.
func (r *Recorder) RecordTrade(symbol, side string) {
	r.tradesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordEventPublished records an event published to the broker.
func (r *Recorder) RecordEventPublished(kind string) {
	r.eventsPublished.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBroadcast records how many observers one event reached.
func (r *Recorder) RecordBroadcast(delivered int) {
	r.deliveries.Add(float64(delivered))
}

// SetObserverCount records the current observer connection count.
func (r *Recorder) SetObserverCount(n int) {
	r.observerCount.Set(float64(n))
}
