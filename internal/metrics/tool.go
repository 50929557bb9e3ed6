// Package metrics provides Prometheus metrics for device tool invocations,
// color applies and the dependency check.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keycolor"

// Invocation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeNotFound = "not_found"
	// OutcomeInvalid marks an apply rejected before the tool ran.
	OutcomeInvalid  = "invalid"
)

var (
	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tool",
		Name:      "invocations_total",
		Help:      "Device tool invocations by operation and outcome",
	}, []string{"operation", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tool",
		Name:      "invocation_duration_seconds",
		Help:      "Wall time of device tool invocations",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	colorApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "color_applies_total",
		Help:      "Color apply attempts by mode and outcome",
	}, []string{"mode", "outcome"})

	devicesDiscovered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "devices",
		Help:      "Devices found by the last discovery",
	})

	dependencyInstalled = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dependency",
		Name:      "installed",
		Help:      "1 when the device tool answered its version query",
	})

	// Local cache for SSE exporter access.
	toolCache   = make(map[string]*ToolStats)
	toolCacheMu sync.RWMutex
)

// ToolStats holds running counters for one tool operation.
type ToolStats struct {
	Success      uint64
	Failed       uint64
	NotFound     uint64
	LastDuration time.Duration
}

// ObserveToolInvocation records one finished tool invocation.
func ObserveToolInvocation(operation, outcome string, d time.Duration) {
	toolInvocations.WithLabelValues(operation, outcome).Inc()
	toolDuration.WithLabelValues(operation).Observe(d.Seconds())

	toolCacheMu.Lock()
	defer toolCacheMu.Unlock()
	s, ok := toolCache[operation]
	if !ok {
		s = &ToolStats{}
		toolCache[operation] = s
	}
	switch outcome {
	case OutcomeSuccess:
		s.Success++
	case OutcomeNotFound:
		s.NotFound++
	default:
		s.Failed++
	}
	s.LastDuration = d
}

// RecordColorApply counts one apply attempt.
func RecordColorApply(mode, outcome string) {
	colorApplies.WithLabelValues(mode, outcome).Inc()
}

// SetDevicesDiscovered sets the device count of the last discovery.
func SetDevicesDiscovered(n int) {
	devicesDiscovered.Set(float64(n))
}

// SetDependencyInstalled records the result of the last dependency check.
func SetDependencyInstalled(installed bool) {
	if installed {
		dependencyInstalled.Set(1)
		return
	}
	dependencyInstalled.Set(0)
}

// GetToolStats returns a copy of the counters for every operation seen.
func GetToolStats() map[string]ToolStats {
	toolCacheMu.RLock()
	defer toolCacheMu.RUnlock()
	result := make(map[string]ToolStats, len(toolCache))
	for op, s := range toolCache {
		result[op] = *s
	}
	return result
}

// Operations returns the operation names seen so far, sorted.
func Operations() []string {
	toolCacheMu.RLock()
	defer toolCacheMu.RUnlock()
	ops := make([]string, 0, len(toolCache))
	for op := range toolCache {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
