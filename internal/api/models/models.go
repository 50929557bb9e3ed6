// Package models holds the request and response shapes of the HTTP API.
package models

import (
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/color"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/session"
	"github.com/smazurov/keycolor/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// Discovery models
type DevicesResponse struct {
	Body session.DeviceList
}

type LedsRequest struct {
	Device string `path:"device" doc:"Device display name as listed by GET /api/devices"`
}

type LedsResponse struct {
	Body session.LedList
}

type SessionResponse struct {
	Body session.Snapshot
}

// Apply models
type ApplyColorData struct {
	Device string `json:"device" minLength:"1" doc:"Target device display name"`
	Led    string `json:"led" minLength:"1" example:"0" doc:"Target LED id"`
	Color  string `json:"color" example:"2bdee6" doc:"Six hex digits; a leading # is accepted"`
}

type ApplyColorRequest struct {
	Body ApplyColorData
}

type ApplyColorResponse struct {
	Body struct {
		session.ApplyResult
		Message string `json:"message" example:"Color changed successfully to #2bdee6" doc:"Status line"`
	}
}

type PaletteResponse struct {
	Body struct {
		Colors []color.Named `json:"colors" doc:"Named colors in display order"`
	}
}

// Preference models
type PreferencesData struct {
	prefs.Record
	Warning string `json:"warning,omitempty" doc:"Set when the preference file could not be written; the change still applies to this session"`
}

type PreferencesResponse struct {
	Body PreferencesData
}

type UpdatePreferencesRequest struct {
	Body prefs.Settings
}

// Dependency models
type DependencyResponse struct {
	Body bootstrap.Status
}

// ServiceStatusResponse reports the ratbagd unit state.
type ServiceStatusResponse struct {
	Body struct {
		Service string `json:"service" example:"ratbagd.service" doc:"Unit name"`
		Status  string `json:"status" example:"active" doc:"systemd ActiveState"`
	}
}

// ToolStatsResponse lists the device tool invocation counters.
type ToolStatsResponse struct {
	Body struct {
		Operations []events.ToolStatsEvent `json:"operations" doc:"Counters per tool operation, sorted by name"`
	}
}
