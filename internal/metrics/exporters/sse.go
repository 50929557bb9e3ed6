package exporters

import (
	"context"
	"sync"
	"time"

	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter publishes tool invocation counters as events. An operation
// is only published again after its counters change.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	last     map[string]metrics.ToolStats
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
		last:     make(map[string]metrics.ToolStats),
	}
}

// Start begins the SSE export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop stops the SSE exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.publishStats()
		}
	}
}

func (s *SSEExporter) publishStats() {
	for op, st := range metrics.GetToolStats() {
		if prev, ok := s.last[op]; ok && prev == st {
			continue
		}
		s.last[op] = st
		s.eventBus.Publish(toolStatsEvent(op, st))
	}
}

// ToolStatsSnapshot returns the current counters of every operation seen,
// sorted by operation name.
func ToolStatsSnapshot() []events.ToolStatsEvent {
	stats := metrics.GetToolStats()
	out := make([]events.ToolStatsEvent, 0, len(stats))
	for _, op := range metrics.Operations() {
		if st, ok := stats[op]; ok {
			out = append(out, toolStatsEvent(op, st))
		}
	}
	return out
}

func toolStatsEvent(op string, st metrics.ToolStats) events.ToolStatsEvent {
	return events.ToolStatsEvent{
		Operation:      op,
		Success:        st.Success,
		Failed:         st.Failed,
		NotFound:       st.NotFound,
		LastDurationMs: st.LastDuration.Milliseconds(),
	}
}
