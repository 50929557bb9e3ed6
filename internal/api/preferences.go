package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/keycolor/internal/api/models"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/session"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-preferences",
		Method:      http.MethodGet,
		Path:        "/api/preferences",
		Summary:     "Get Preferences",
		Description: "The preference record: last selection plus install settings",
		Tags:        []string{"preferences"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.PreferencesResponse, error) {
		return preferencesResponse(s.options.Preferences.Get(), nil), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-preferences",
		Method:      http.MethodPut,
		Path:        "/api/preferences",
		Summary:     "Save Settings",
		Description: "Replace the install settings. A write failure is reported as a warning; the new settings still apply.",
		Tags:        []string{"preferences"},
		Errors:      []int{400, 401, 422},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.UpdatePreferencesRequest) (*models.PreferencesResponse, error) {
		rec, err := s.options.Preferences.UpdateSettings(input.Body)
		s.publishPreferencesChanged()
		return preferencesResponse(rec, err), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-preferences",
		Method:      http.MethodPost,
		Path:        "/api/preferences/reset",
		Summary:     "Reset Settings",
		Description: "Re-detect the package manager and restore the default install settings. The remembered selection is kept.",
		Tags:        []string{"preferences"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.PreferencesResponse, error) {
		rec, err := s.options.Preferences.Reset()
		s.publishPreferencesChanged()
		return preferencesResponse(rec, err), nil
	})
}

func preferencesResponse(rec prefs.Record, warning error) *models.PreferencesResponse {
	resp := &models.PreferencesResponse{}
	resp.Body.Record = rec
	if warning != nil {
		resp.Body.Warning = session.ErrorMessage(warning)
	}
	return resp
}

func (s *Server) publishPreferencesChanged() {
	s.publish(events.PreferencesChangedEvent{Source: "api", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}
