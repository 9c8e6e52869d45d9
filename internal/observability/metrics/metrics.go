package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	ticketsIssued  prometheus.Counter
	slotsBooked    prometheus.Counter
	submissions    *prometheus.CounterVec
	webhookTotal   *prometheus.CounterVec
	webhookLatency prometheus.Histogram
	slotsPruned    prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		ticketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "tickets_issued_total",
			Help:      "Ticket numbers allocated",
		}),
		slotsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "slots_booked_total",
			Help:      "Time slots marked as booked",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking form submissions by result",
		}, []string{"result"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "webhook_total",
			Help:      "Spreadsheet webhook deliveries by outcome",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of spreadsheet webhook calls",
			Buckets:   prometheus.DefBuckets,
		}),
		slotsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etihasam",
			Subsystem: "booking",
			Name:      "slots_pruned_total",
			Help:      "Stale booked-slot ids removed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ticketsIssued, m.slotsBooked, m.submissions, m.webhookTotal, m.webhookLatency, m.slotsPruned)
	return m
}

func (m *BookingMetrics) ObserveTicketIssued() {
	if m == nil {
		return
	}
	m.ticketsIssued.Inc()
}

func (m *BookingMetrics) ObserveSlotBooked() {
	if m == nil {
		return
	}
	m.slotsBooked.Inc()
}

// ObserveSubmission records a submission result such as "ok", "invalid",
// "conflict" or "error".
func (m *BookingMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveWebhook(status string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(status).Inc()
	if seconds > 0 {
		m.webhookLatency.Observe(seconds)
	}
}

func (m *BookingMetrics) ObserveSlotsPruned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsPruned.Add(float64(n))
}
