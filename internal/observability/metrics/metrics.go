package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the reservation flows.
type BookingMetrics struct {
	reservationsTotal  *prometheus.CounterVec
	guardChecksTotal   *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	availabilityTime   prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "reservations",
			Name:      "total",
			Help:      "Reservation attempts by outcome",
		}, []string{"outcome"}),
		guardChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "guard",
			Name:      "checks_total",
			Help:      "Pre-booking slot checks by result",
		}, []string{"result"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "cancellations",
			Name:      "total",
			Help:      "Cancellation attempts by outcome",
		}, []string{"outcome"}),
		availabilityTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "availability",
			Name:      "resolve_seconds",
			Help:      "Latency of availability resolution including the store query",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.reservationsTotal, m.guardChecksTotal, m.cancellationsTotal, m.availabilityTime)
	return m
}

func (m *BookingMetrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveGuardCheck(result string) {
	if m == nil {
		return
	}
	m.guardChecksTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveAvailabilityLatency(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityTime.Observe(seconds)
}
