package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the widget's externally observable outcomes.
type Metrics struct {
	SessionsCreated  prometheus.Counter
	ScheduleAttempts prometheus.Counter
	ScheduleOutcomes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_widget_sessions_created_total",
			Help: "Widget sessions created.",
		}),
		ScheduleAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_widget_schedule_attempts_total",
			Help: "Schedule submissions received, valid or not.",
		}),
		ScheduleOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_widget_schedule_outcomes_total",
			Help: "Schedule submission outcomes by result.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.SessionsCreated, m.ScheduleAttempts, m.ScheduleOutcomes)
	return m
}

const (
	outcomeConfirmed  = "confirmed"
	outcomeValidation = "validation_error"
	outcomeAPIError   = "api_error"
)
