package metrics

import "github.com/prometheus/client_golang/prometheus"

// LifecycleMetrics exposes counters for appointment-book mutations.
type LifecycleMetrics struct {
	mutationsTotal *prometheus.CounterVec
}

func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	m := &LifecycleMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "lifecycle",
			Name:      "mutations_total",
			Help:      "Total lifecycle mutations by operation and outcome",
		}, []string{"operation", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal)
	return m
}

func (m *LifecycleMetrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.mutationsTotal.WithLabelValues(operation, status).Inc()
}

// ReminderMetrics exposes counters for reminder worker runs.
type ReminderMetrics struct {
	runsTotal  *prometheus.CounterVec
	pendingNow prometheus.Gauge
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "reminder",
			Name:      "runs_total",
			Help:      "Total reminder derivation runs by outcome",
		}, []string{"status"}),
		pendingNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinicbook",
			Subsystem: "reminder",
			Name:      "pending",
			Help:      "Reminders currently due",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.pendingNow)
	return m
}

func (m *ReminderMetrics) ObserveRun(pending int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.runsTotal.WithLabelValues("error").Inc()
		return
	}
	m.runsTotal.WithLabelValues("ok").Inc()
	m.pendingNow.Set(float64(pending))
}
