package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/session"
	"github.com/smazurov/keycolor/internal/updater"
	"github.com/spf13/cobra"
)

// optionsFunc is the body of a one-shot command that needs no devices.
type optionsFunc func(cmd *cobra.Command, args []string, opts *Options) error

// appFunc is the body of a one-shot command driving the device tool.
type appFunc func(cmd *cobra.Command, args []string, app *App) error

// withOptions adapts a one-shot command body to cobra's Run. Logging stays
// off stdout so the command's output can be piped. Any error is printed
// to stderr and exits with status 1.
func withOptions(body optionsFunc) func(*cobra.Command, []string) {
	return humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
		InitLogging(opts, false)
		if err := body(cmd, args, opts); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", errorText(err))
			os.Exit(1)
		}
	})
}

// withApp is withOptions with the component graph built.
func withApp(body appFunc) func(*cobra.Command, []string) {
	return withOptions(func(cmd *cobra.Command, args []string, opts *Options) error {
		app, err := NewApp(opts, Deps{})
		if err != nil {
			return err
		}
		return body(cmd, args, app)
	})
}

// errorText returns the user facing text of err without error codes.
func errorText(err error) string {
	var berr *bootstrap.Error
	if errors.As(err, &berr) {
		if berr.Cause != nil {
			return berr.Message + ": " + session.ErrorMessage(berr.Cause)
		}
		return berr.Message
	}
	var uerr *updater.Error
	if errors.As(err, &uerr) {
		if uerr.Cause != nil {
			return uerr.Message + ": " + uerr.Cause.Error()
		}
		return uerr.Message
	}
	return session.ErrorMessage(err)
}
