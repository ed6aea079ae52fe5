package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts accepted registrations (pending users filed).
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_registrations_total",
		Help: "Accepted registration requests.",
	})

	// LoginsTotal counts login attempts by outcome (ok, invalid, unapproved).
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// TimeInsTotal counts time-in requests by outcome (recorded, duplicate).
	TimeInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_time_ins_total",
		Help: "Time-in requests by outcome.",
	}, []string{"outcome"})
)
