// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors for the coordination server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll outcomes.
const (
	PollCommand = "command"
	PollEmpty   = "empty"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scenecue_sessions_active",
		Help: "Number of client sessions currently registered",
	})

	sessionsReapedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenecue_sessions_reaped_total",
		Help: "Total number of sessions removed by the idle sweep",
	})

	commandsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_commands_dropped_total",
		Help: "Pending commands discarded without delivery",
	}, []string{"reason"}) // reason=interrupt|reaped

	commandsEnqueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_commands_enqueued_total",
		Help: "Commands appended to client queues, counted per target",
	}, []string{"kind"})

	commandsDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_commands_delivered_total",
		Help: "Commands handed to polling clients",
	}, []string{"kind"})

	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_polls_total",
		Help: "Client queue polls by outcome",
	}, []string{"outcome"}) // outcome=command|empty

	queueClearsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenecue_queue_clears_total",
		Help: "Queues cleared by interrupting commands",
	})
)

func SetActiveSessions(n int) { activeSessions.Set(float64(n)) }

func RecordPoll(outcome string) { pollsTotal.WithLabelValues(outcome).Inc() }

func RecordCommandDelivered(kind string) { commandsDeliveredTotal.WithLabelValues(kind).Inc() }

// RecordCommandsEnqueued adds n enqueued commands of the given kind. n may be
// zero when a dispatch resolved no targets.
func RecordCommandsEnqueued(kind string, n int) {
	if n <= 0 {
		return
	}
	commandsEnqueuedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordQueueClears records interrupt clears over queues and the commands
// they discarded.
func RecordQueueClears(queues, dropped int) {
	if queues > 0 {
		queueClearsTotal.Add(float64(queues))
	}
	if dropped > 0 {
		commandsDroppedTotal.WithLabelValues("interrupt").Add(float64(dropped))
	}
}

func RecordSessionsReaped(sessions, dropped int) {
	sessionsReapedTotal.Add(float64(sessions))
	if dropped > 0 {
		commandsDroppedTotal.WithLabelValues("reaped").Add(float64(dropped))
	}
}
