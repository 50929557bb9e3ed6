package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/keycolor/internal/api/models"
	"github.com/smazurov/keycolor/internal/color"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/session"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "Run ratbagctl list and pick the default device: the remembered one, then the first matching the model marker, then the first listed.",
		Tags:        []string{"devices"},
		Errors:      []int{401, 502, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.DevicesResponse, error) {
		remembered := s.state.Selection().Device
		gen := s.state.BeginDiscovery()

		list, err := s.options.Workflow.DiscoverDevices(ctx, gen, remembered)
		if err != nil {
			return nil, toHTTPError(err)
		}
		if !s.state.AcceptDevices(gen, list) {
			s.logger.Debug("Device listing superseded", "generation", gen)
		}
		return &models.DevicesResponse{Body: list}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device}/leds",
		Summary:     "List LEDs",
		Description: "Run ratbagctl <device> led get and pick the default LED: the remembered one, then the first listed.",
		Tags:        []string{"devices"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.LedsRequest) (*models.LedsResponse, error) {
		remembered := s.state.Selection().Led
		gen, _ := s.state.BeginLedDiscovery()

		list, err := s.options.Workflow.DiscoverLeds(ctx, input.Device, remembered)
		if err != nil {
			return nil, toHTTPError(err)
		}
		// Only kept when it belongs to the session's device
		s.state.AcceptLeds(gen, list)
		return &models.LedsResponse{Body: list}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Get Session",
		Description: "Current server side selection and the last accepted listings",
		Tags:        []string{"devices"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.SessionResponse, error) {
		return &models.SessionResponse{Body: s.state.Snapshot()}, nil
	})
}

func (s *Server) registerColorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "apply-color",
		Method:      http.MethodPost,
		Path:        "/api/color",
		Summary:     "Apply Color",
		Description: "Validate the selection and run one set-color command using the configured apply mode. The tool's error text is returned unchanged.",
		Tags:        []string{"color"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.ApplyColorRequest) (*models.ApplyColorResponse, error) {
		res, err := s.options.Workflow.ApplyColor(ctx, session.Selection{
			Device: input.Body.Device,
			Led:    input.Body.Led,
			Color:  input.Body.Color,
		})
		if err != nil {
			return nil, toHTTPError(err)
		}

		s.state.SelectDevice(res.Device)
		s.state.SelectLed(res.Led)
		s.state.SetColor(res.Color)
		s.publish(events.PreferencesChangedEvent{Source: "apply", Timestamp: time.Now().UTC().Format(time.RFC3339)})

		resp := &models.ApplyColorResponse{}
		resp.Body.ApplyResult = res
		resp.Body.Message = session.AppliedStatus(res)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-colors",
		Method:      http.MethodGet,
		Path:        "/api/colors",
		Summary:     "List Named Colors",
		Description: "The built-in palette, in display order",
		Tags:        []string{"color"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.PaletteResponse, error) {
		resp := &models.PaletteResponse{}
		resp.Body.Colors = color.Palette()
		return resp, nil
	})
}
