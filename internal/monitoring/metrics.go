package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanqr_checkins_total",
			Help: "QR check-in attempts by outcome (ok or failure code)",
		},
		[]string{"status"},
	)

	registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_registrations_total",
			Help: "Successful event registrations",
		},
	)

	approvals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_approvals_total",
			Help: "Event approval decisions by result (approved/rejected)",
		},
		[]string{"result"},
	)
)

func TrackCheckIn(status string) {
	checkins.WithLabelValues(status).Inc()
}

func TrackRegistration() {
	registrations.Inc()
}

func TrackApproval(result string) {
	approvals.WithLabelValues(result).Inc()
}
