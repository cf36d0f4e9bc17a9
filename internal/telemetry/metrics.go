package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScrimTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "scrim_transitions_total",
		Help:      "Scrim state transitions that were committed, by target status.",
	}, []string{"status"})

	TransitionConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "scrim_transition_conflicts_total",
		Help:      "Scrim transitions lost to a concurrent change, by target status.",
	}, []string{"status"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "notifications_total",
		Help:      "Notification deliveries by result.",
	}, []string{"result"})

	SideEffectFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "side_effect_failures_total",
		Help:      "Best-effort platform side effects that failed after a committed change.",
	}, []string{"effect"})

	InteractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "interactions_total",
		Help:      "Handled commands and button presses by name and outcome.",
	}, []string{"name", "outcome"})

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scrimbot",
		Name:      "reminders_sent_total",
		Help:      "Scrims whose one-hour reminder was sent.",
	})
)
