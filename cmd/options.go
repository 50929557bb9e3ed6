package cmd

import (
	"strings"

	"github.com/smazurov/keycolor/internal/config"
	"github.com/smazurov/keycolor/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"~/.config/keycolor/config.toml"`

	// Device tool settings
	Tool        string `help:"Device configuration tool" default:"ratbagctl" toml:"ratbag.tool" env:"RATBAG_TOOL"`
	ModelMarker string `help:"Substring preferred when picking the default device" default:"G915" toml:"ratbag.model_marker" env:"RATBAG_MODEL_MARKER"`

	// Apply settings
	ApplyMode    string `help:"Set-color command shape (unscoped, active-profile, fixed-profile)" default:"unscoped" toml:"apply.mode" env:"APPLY_MODE"`
	ApplyProfile int    `help:"Profile index used by fixed-profile mode" default:"0" toml:"apply.profile" env:"APPLY_PROFILE"`

	// Preferences
	PrefsPath string `help:"Preference file" default:"~/.g915colorchanger.json" toml:"prefs.path" env:"PREFS_PATH"`

	// Server settings
	ServerListen      string `help:"Address the HTTP API listens on" default:"127.0.0.1:8091" toml:"server.listen" env:"SERVER_LISTEN"`
	ServerCORSOrigins string `help:"Comma-separated allowed CORS origins" default:"" toml:"server.cors_origins" env:"SERVER_CORS_ORIGINS"`
	ServerMetrics     bool   `help:"Expose Prometheus metrics at /metrics" default:"true" toml:"server.metrics" env:"SERVER_METRICS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username (empty disables auth)" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Update settings
	UpdateRepository string `help:"GitHub repository releases are fetched from" default:"smazurov/keycolor" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases when updating" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingRatbag    string `help:"Device tool logging level" default:"info" toml:"logging.ratbag" env:"LOGGING_RATBAG"`
	LoggingSession   string `help:"Color workflow logging level" default:"info" toml:"logging.session" env:"LOGGING_SESSION"`
	LoggingPrefs     string `help:"Preferences logging level" default:"info" toml:"logging.prefs" env:"LOGGING_PREFS"`
	LoggingBootstrap string `help:"Dependency install logging level" default:"info" toml:"logging.bootstrap" env:"LOGGING_BOOTSTRAP"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// CORSOrigins splits ServerCORSOrigins into its non-empty entries.
func (o *Options) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(o.ServerCORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// LoggingConfig builds the logging configuration. Module levels that have
// no flag of their own (process, updater, ...) are read from the
// [logging] table of the config file.
func (o *Options) LoggingConfig() logging.Config {
	cfg := config.LoadLoggingConfig(o.Config)
	cfg.Level = o.LoggingLevel
	cfg.Format = o.LoggingFormat
	cfg.Modules["ratbag"] = o.LoggingRatbag
	cfg.Modules["session"] = o.LoggingSession
	cfg.Modules["prefs"] = o.LoggingPrefs
	cfg.Modules["bootstrap"] = o.LoggingBootstrap
	cfg.Modules["api"] = o.LoggingAPI
	return cfg
}
