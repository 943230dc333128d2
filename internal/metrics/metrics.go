package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the order pipeline instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	ordersSubmitted   *prometheus.CounterVec
	submitFailures    *prometheus.CounterVec
	submitDuration    prometheus.Histogram
	statusTransitions *prometheus.CounterVec
	boardResyncs      prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_submitted_total",
		Help: "Orders persisted with a day number, by order type.",
	}, []string{"order_type"})
	submitFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_submit_failures_total",
		Help: "Order submissions that failed after validation.",
	}, []string{"reason"})
	submitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_order_submit_duration_seconds",
		Help:    "Latency of the numbering transaction.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_status_transitions_total",
		Help: "Kitchen status transitions.",
	}, []string{"from", "to"})
	boardResyncs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_kitchen_board_resyncs_total",
		Help: "Times the kitchen board reloaded after its change stream dropped.",
	})

	registerer.MustRegister(
		ordersSubmitted,
		submitFailures,
		submitDuration,
		statusTransitions,
		boardResyncs,
	)

	return &Metrics{
		ordersSubmitted:   ordersSubmitted,
		submitFailures:    submitFailures,
		submitDuration:    submitDuration,
		statusTransitions: statusTransitions,
		boardResyncs:      boardResyncs,
	}
}

func (m *Metrics) OrderSubmitted(orderType string, took time.Duration) {
	if m == nil {
		return
	}
	m.ordersSubmitted.WithLabelValues(orderType).Inc()
	m.submitDuration.Observe(took.Seconds())
}

// SubmitFailed records a failed submission. reason must be low-cardinality.
func (m *Metrics) SubmitFailed(reason string) {
	if m == nil {
		return
	}
	m.submitFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) BoardResync() {
	if m == nil {
		return
	}
	m.boardResyncs.Inc()
}
