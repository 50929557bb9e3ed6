// Package systemd starts and enables the ratbagd service through systemd's
// D-Bus API.
package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// RatbagdUnit is the service that backs the device tool.
const RatbagdUnit = "ratbagd.service"

// Manager handles systemd service lifecycle operations via D-Bus.
type Manager struct {
	conn *dbus.Conn
}

// NewManager creates a new systemd manager on the system D-Bus, where
// ratbagd runs.
func NewManager(ctx context.Context) (*Manager, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{conn: conn}, nil
}

// GetServiceStatus retrieves the ActiveState property of a systemd service.
func (m *Manager) GetServiceStatus(ctx context.Context, serviceName string) (string, error) {
	prop, err := m.conn.GetUnitPropertyContext(ctx, serviceName, "ActiveState")
	if err != nil {
		return "", err
	}
	if state, ok := prop.Value.Value().(string); ok {
		return state, nil
	}
	return prop.Value.String(), nil
}

// StartService starts a systemd service using the replace mode and waits
// for the job to finish.
func (m *Manager) StartService(ctx context.Context, serviceName string) error {
	done := make(chan string, 1)
	if _, err := m.conn.StartUnitContext(ctx, serviceName, "replace", done); err != nil {
		return err
	}

	select {
	case result := <-done:
		if result != "done" {
			return fmt.Errorf("start %s: job %s", serviceName, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnableService enables a unit file so the service starts at boot, then
// reloads the systemd configuration.
func (m *Manager) EnableService(ctx context.Context, serviceName string) error {
	if _, _, err := m.conn.EnableUnitFilesContext(ctx, []string{serviceName}, false, true); err != nil {
		return err
	}
	return m.conn.ReloadContext(ctx)
}

// Close cleanly closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
