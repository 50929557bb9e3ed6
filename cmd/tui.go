package cmd

import (
	"context"
	"time"

	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/tui"
)

// RunTUI shows the interactive form until the user quits or ctx ends.
// The form owns the terminal, so logs go to the journal and the Log tab.
func RunTUI(ctx context.Context, opts *Options) error {
	InitLogging(opts, false)

	app, err := NewApp(opts, Deps{})
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Options{
		Workflow:    app.Controller,
		Preferences: app.Prefs,
		Dependency:  app.Bootstrap,
		Logs:        logging.GetBuffer().ReadAll,
		LogRefresh:  time.Second,
	})
}
