package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/systemd"
	"github.com/spf13/cobra"
)

// errMissing makes `keycolor check` exit 1 when the tool is absent.
var errMissing = errors.New("device tool is not installed")

// CreateCheckCmd creates the check command.
func CreateCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the device tool is installed",
		Long:  `Runs the device tool's version query. Exits with status 1 when the tool is missing or the check fails.`,
		Args:  cobra.NoArgs,
		Run: withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			return checkDependency(cmd.Context(), app, cmd.OutOrStdout())
		}),
	}
}

// CreateInstallCmd creates the install command.
func CreateInstallCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the device tool with the configured package manager",
		Long: `Runs the install command from the preference file with the package name appended, ` +
			`then starts and enables ratbagd when the host uses systemd. Asks for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		Run: withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			return installDependency(cmd.Context(), app, cmd.InOrStdin(), cmd.OutOrStdout(), yes)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Install without asking for confirmation")
	return cmd
}

func checkDependency(ctx context.Context, app *App, out io.Writer) error {
	status, err := app.Bootstrap.Check(ctx)
	if err != nil {
		return err
	}
	if !status.Installed {
		fmt.Fprintf(out, "%s is not installed. Run `keycolor install` to install it.\n", status.Tool)
		return errMissing
	}
	fmt.Fprintln(out, "Dependencies are installed.")
	if status.Version != "" {
		fmt.Fprintf(out, "%s %s\n", status.Tool, status.Version)
	}
	return nil
}

func installDependency(ctx context.Context, app *App, in io.Reader, out io.Writer, yes bool) error {
	rec := app.Prefs.Get()
	plan, err := bootstrap.PlanInstall(rec)
	if err != nil {
		return err
	}

	if !yes {
		fmt.Fprintf(out, "Command: %s\n", plan.String())
		if plan.StartService {
			fmt.Fprintf(out, "%s will be started and enabled afterwards.\n", systemd.RatbagdUnit)
		}
		if !confirm(in, out, "Install dependencies?") {
			fmt.Fprintln(out, "Install cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Installing dependencies...")
	if _, err := app.Bootstrap.Install(ctx, rec); err != nil {
		return err
	}
	fmt.Fprintln(out, "Dependencies installed successfully.")
	return nil
}

// confirm asks a y/N question. Anything but y or yes declines.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
