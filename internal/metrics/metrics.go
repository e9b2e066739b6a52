// Package metrics exposes Prometheus collectors for portal workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultInvalid   = "invalid"
	ResultDuplicate = "duplicate"
	ResultThrottled = "throttled"
	ResultError     = "error"
	ResultSkipped   = "skipped"
)

// Session event labels.
const (
	SessionCreated   = "created"
	SessionDestroyed = "destroyed"
)

var (
	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evoting",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// Registrations counts registration submissions by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evoting",
		Name:      "registrations_total",
		Help:      "Registration submissions by result.",
	}, []string{"result"})

	// Notifications counts outgoing emails by template and outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evoting",
		Name:      "notifications_total",
		Help:      "Outgoing notifications by template and result.",
	}, []string{"template", "result"})

	// SessionEvents counts session lifecycle events. Sessions that lapse
	// through their Redis TTL are not observed here.
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evoting",
		Name:      "session_events_total",
		Help:      "Sessions created and explicitly destroyed.",
	}, []string{"event"})
)
