// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	circuitBreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scenecue_circuit_breaker_open",
		Help: "Number of keys whose circuit breaker is currently open, by component",
	}, []string{"component"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_circuit_breaker_trips_total",
		Help: "Total number of circuit breaker trips (transitions to open state)",
	}, []string{"component", "reason"})
)

// AddCircuitBreakerOpen adjusts the open breaker gauge by delta.
func AddCircuitBreakerOpen(component string, delta float64) {
	circuitBreakerOpen.WithLabelValues(component).Add(delta)
}

// RecordCircuitBreakerTrip increments the trip counter when a breaker opens.
func RecordCircuitBreakerTrip(component, reason string) {
	circuitBreakerTrips.WithLabelValues(component, reason).Inc()
}
