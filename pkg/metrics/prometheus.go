package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	tokenRefreshes  *prometheus.CounterVec
	ordersSubmitted *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	quoteLatency    prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		tokenRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kistrader_token_refreshes_total",
				Help: "Total number of brokerage token refreshes",
			},
			[]string{"mode"},
		),
		ordersSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kistrader_orders_submitted_total",
				Help: "Total number of orders submitted to the brokerage",
			},
			[]string{"symbol", "order_type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kistrader_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kistrader_last_price",
				Help: "Last observed close price for a symbol",
			},
			[]string{"symbol"},
		),
		quoteLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kistrader_quote_fetch_seconds",
				Help:    "Duration of daily price lookups in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordTokenRefresh counts one credential exchange.
func (r *Recorder) RecordTokenRefresh(mode string) {
	r.tokenRefreshes.WithLabelValues(mode).Inc()
}

// RecordQuoteLatency records one price lookup duration.
func (r *Recorder) RecordQuoteLatency(seconds float64) {
	r.quoteLatency.Observe(seconds)
}

// RecordOrderSubmitted counts one accepted order.
func (r *Recorder) RecordOrderSubmitted(symbol, orderType string) {
	r.ordersSubmitted.WithLabelValues(symbol, orderType).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
