// Package logging is keycolor's structured logging: log/slog loggers per
// module, each with its own level.
//
// Records go to up to three sinks. Stdout is used unless the caller
// disables it or stdout is detached. The systemd journal is used when
// journald is running. An in-memory ring buffer is always kept; the
// terminal form shows it in its Log tab and `keycolor serve` streams it
// over SSE.
//
// Initialize once the configuration is known, then ask for loggers by
// module name:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"ratbag": "debug"},
//	})
//	logger := logging.GetLogger("session")
//	logger.Info("Color applied", "device", device, "led", led)
//
// Loggers fetched before Initialize keep their module level in sync with
// later configuration.
//
// The module names in use are main, ratbag, process, session, prefs,
// bootstrap, api, http and updater. Module levels come from the [logging]
// table of the config file:
//
//	[logging]
//	level = "info"
//	ratbag = "debug"
//
// In the journal every record carries SYSLOG_IDENTIFIER=keycolor and a
// MODULE field:
//
//	journalctl -t keycolor MODULE=ratbag -f
package logging
