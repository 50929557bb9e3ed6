package exporters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/metrics"
)

type mockEventBus struct {
	mu        sync.Mutex
	events    []events.Event
	published chan struct{}
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{
		events:    make([]events.Event, 0),
		published: make(chan struct{}, 100),
	}
}

func (m *mockEventBus) Publish(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	select {
	case m.published <- struct{}{}:
	default:
	}
}

func (m *mockEventBus) statsFor(op string) []events.ToolStatsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []events.ToolStatsEvent
	for _, ev := range m.events {
		if ts, ok := ev.(events.ToolStatsEvent); ok && ts.Operation == op {
			result = append(result, ts)
		}
	}
	return result
}

func TestSSEExporterPublishesToolStats(t *testing.T) {
	op := "sse_test_op"
	metrics.ObserveToolInvocation(op, metrics.OutcomeSuccess, 20*time.Millisecond)
	metrics.ObserveToolInvocation(op, metrics.OutcomeFailed, 30*time.Millisecond)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	exporter.Start(ctx)

	select {
	case <-mock.published:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for stats publish")
	}

	// Several more ticks without changes
	time.Sleep(200 * time.Millisecond)
	cancel()
	exporter.Stop()

	stats := mock.statsFor(op)
	if len(stats) != 1 {
		t.Fatalf("expected exactly one event for unchanged counters, got %d", len(stats))
	}
	if stats[0].Success != 1 || stats[0].Failed != 1 || stats[0].LastDurationMs != 30 {
		t.Errorf("unexpected stats %+v", stats[0])
	}
}

func TestSSEExporterPublishesChanges(t *testing.T) {
	op := "sse_change_op"
	metrics.ObserveToolInvocation(op, metrics.OutcomeSuccess, time.Millisecond)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)

	exporter.publishStats()
	metrics.ObserveToolInvocation(op, metrics.OutcomeNotFound, time.Millisecond)
	exporter.publishStats()

	stats := mock.statsFor(op)
	if len(stats) != 2 {
		t.Fatalf("expected 2 events, got %d", len(stats))
	}
	if stats[1].NotFound != 1 {
		t.Errorf("second event should carry the not found count: %+v", stats[1])
	}
}

func TestToolStatsSnapshotSorted(t *testing.T) {
	metrics.ObserveToolInvocation("snapshot_b", metrics.OutcomeSuccess, 5*time.Millisecond)
	metrics.ObserveToolInvocation("snapshot_a", metrics.OutcomeFailed, 7*time.Millisecond)

	snapshot := ToolStatsSnapshot()

	var seen []string
	for i, ev := range snapshot {
		if i > 0 && snapshot[i-1].Operation > ev.Operation {
			t.Fatalf("snapshot not sorted: %q before %q", snapshot[i-1].Operation, ev.Operation)
		}
		if ev.Operation == "snapshot_a" || ev.Operation == "snapshot_b" {
			seen = append(seen, ev.Operation)
		}
		if ev.Operation == "snapshot_a" && (ev.Failed != 1 || ev.LastDurationMs != 7) {
			t.Errorf("unexpected counters for snapshot_a: %+v", ev)
		}
	}
	if len(seen) != 2 || seen[0] != "snapshot_a" {
		t.Errorf("expected snapshot_a then snapshot_b, got %v", seen)
	}
}
