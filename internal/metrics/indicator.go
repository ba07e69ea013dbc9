// Package metrics provides Prometheus metrics for the status indicator and bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	modeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dongled",
		Subsystem: "indicator",
		Name:      "mode_changes_total",
		Help:      "Display mode transitions by resulting mode",
	}, []string{"mode"})

	blinkSequences = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dongled",
		Subsystem: "indicator",
		Name:      "blink_sequences_total",
		Help:      "Completed layer blink sequences",
	})

	blinkCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dongled",
		Subsystem: "indicator",
		Name:      "blink_requests_coalesced_total",
		Help:      "Layer blink requests merged into an already pending wake",
	})

	indicatorWrites = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dongled",
		Subsystem: "indicator",
		Name:      "writes_total",
		Help:      "Commands written to the LED device",
	})

	bridgeLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dongled",
		Subsystem: "bridge",
		Name:      "lines_total",
		Help:      "Status lines received from the firmware bridge by result",
	}, []string{"result"})
)

// RecordModeChange records a display mode transition.
func RecordModeChange(mode string) {
	modeChanges.WithLabelValues(mode).Inc()
}

// RecordBlinkSequence records a completed layer blink sequence.
func RecordBlinkSequence() {
	blinkSequences.Inc()
}

// RecordBlinkCoalesced records a blink request that merged into a pending wake.
func RecordBlinkCoalesced() {
	blinkCoalesced.Inc()
}

// RecordIndicatorWrite records a command written to the LED device.
func RecordIndicatorWrite() {
	indicatorWrites.Inc()
}

// RecordBridgeLine records a received bridge status line.
// Result is "ok" or "malformed".
func RecordBridgeLine(result string) {
	bridgeLines.WithLabelValues(result).Inc()
}
