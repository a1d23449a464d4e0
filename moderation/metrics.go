package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_actions_total",
	Help: "Number of moderation actions executed, by kind and outcome",
}, []string{"kind", "outcome"})

var dmAttemptCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_dm_attempts_total",
	Help: "Number of direct-message notifications attempted, by timing and outcome",
}, []string{"timing", "outcome"})

var compensationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_compensations_total",
	Help: "Number of compensation steps run after failed actions, by step and outcome",
}, []string{"step", "outcome"})

var bestEffortErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_best_effort_errors_total",
	Help: "Number of best-effort steps that failed without failing the action",
}, []string{"step"})
