package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CreateSettingsCmd creates the settings command.
func CreateSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the install preferences",
		Long: `Without flags, prints the preference file as JSON. With flags, changes the given install settings and saves. ` +
			`--reset re-detects the package manager and clears the skip flag, keeping the remembered selection.`,
		Args: cobra.NoArgs,
		Run: withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			return editSettings(app.Prefs, cmd.OutOrStdout(), cmd.Flags())
		}),
	}

	cmd.Flags().String("package-manager", "", "Package manager ("+strings.Join(prefs.Managers(), ", ")+")")
	cmd.Flags().String("install-command", "", "Install command template; the package name is appended")
	cmd.Flags().String("package-name", "", "Package providing the device tool")
	cmd.Flags().Bool("systemd", false, "Start and enable ratbagd after install")
	cmd.Flags().Bool("skip-check", false, "Skip the dependency check on startup")
	cmd.Flags().Bool("reset", false, "Reset the install settings to detected defaults")
	return cmd
}

// settingsStore is the part of prefs.Store the settings command edits.
type settingsStore interface {
	Get() prefs.Record
	UpdateSettings(settings prefs.Settings) (prefs.Record, error)
	Reset() (prefs.Record, error)
}

// editSettings applies the flags that were set and prints the resulting
// record. A failed write is reported as a warning; the command still
// succeeds with the in-memory record.
func editSettings(store settingsStore, out io.Writer, flags *pflag.FlagSet) error {
	rec := store.Get()

	var saveErr error
	switch {
	case flagBool(flags, "reset"):
		rec, saveErr = store.Reset()
	case anyChanged(flags, "package-manager", "install-command", "package-name", "systemd", "skip-check"):
		settings, err := settingsFromFlags(rec.Settings(), flags)
		if err != nil {
			return err
		}
		rec, saveErr = store.UpdateSettings(settings)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))

	if saveErr != nil {
		fmt.Fprintf(out, "Warning: could not save settings: %v\n", saveErr)
	}
	return nil
}

// settingsFromFlags overlays the changed flags on current.
func settingsFromFlags(current prefs.Settings, flags *pflag.FlagSet) (prefs.Settings, error) {
	s := current
	if flags.Changed("package-manager") {
		manager, _ := flags.GetString("package-manager")
		if !slices.Contains(prefs.Managers(), manager) {
			return s, fmt.Errorf("unknown package manager %q (want %s)", manager, strings.Join(prefs.Managers(), ", "))
		}
		s.PackageManager = manager
	}
	if flags.Changed("install-command") {
		s.InstallCommand, _ = flags.GetString("install-command")
	}
	if flags.Changed("package-name") {
		s.PackageName, _ = flags.GetString("package-name")
	}
	if flags.Changed("systemd") {
		s.HasSystemd = flagBool(flags, "systemd")
	}
	if flags.Changed("skip-check") {
		s.SkipDependencyCheck = flagBool(flags, "skip-check")
	}
	return s, nil
}

func anyChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

func flagBool(flags *pflag.FlagSet, name string) bool {
	v, _ := flags.GetBool(name)
	return v
}
