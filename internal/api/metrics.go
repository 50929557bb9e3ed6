package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/keycolor/internal/api/models"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/metrics/exporters"
)

// registerMetricsRoutes registers the device tool counter endpoints.
func (s *Server) registerMetricsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-tool-stats",
		Method:      http.MethodGet,
		Path:        "/api/metrics/tools",
		Summary:     "Tool Counters",
		Description: "Invocation counters per device tool operation since startup",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ToolStatsResponse, error) {
		resp := &models.ToolStatsResponse{}
		resp.Body.Operations = exporters.ToolStatsSnapshot()
		return resp, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Metrics Server-Sent Events Stream",
		Description: "Real-time stream of device tool counters, sent when they change",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"tool-stats": events.ToolStatsEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		if s.eventBus == nil {
			return
		}

		eventCh := make(chan any, 10)
		unsubscribe := events.SubscribeToChannel[events.ToolStatsEvent](s.eventBus, eventCh)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
