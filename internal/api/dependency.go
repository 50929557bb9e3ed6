package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/keycolor/internal/api/models"
	"github.com/smazurov/keycolor/internal/systemd"
)

func (s *Server) registerDependencyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "check-dependency",
		Method:      http.MethodGet,
		Path:        "/api/dependency",
		Summary:     "Check Dependency",
		Description: "Run the device tool's version query. A missing tool is reported as installed=false, not as an error.",
		Tags:        []string{"dependency"},
		Errors:      []int{401, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.DependencyResponse, error) {
		status, err := s.options.Dependency.Check(ctx)
		if err != nil {
			return nil, toHTTPError(err)
		}
		return &models.DependencyResponse{Body: status}, nil
	})

	if s.options.Services == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-ratbagd-status",
		Method:      http.MethodGet,
		Path:        "/api/dependency/service",
		Summary:     "ratbagd Service Status",
		Description: "ActiveState of the ratbagd systemd unit",
		Tags:        []string{"dependency"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.ServiceStatusResponse, error) {
		status, err := s.options.Services.GetServiceStatus(ctx, systemd.RatbagdUnit)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get service status", err)
		}
		resp := &models.ServiceStatusResponse{}
		resp.Body.Service = systemd.RatbagdUnit
		resp.Body.Status = status
		return resp, nil
	})
}
