package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/updater"
	"github.com/spf13/cobra"
)

// releaseUpdater is the part of updater.Updater the update commands use.
type releaseUpdater interface {
	Check(ctx context.Context) (updater.Info, error)
	Apply(ctx context.Context) (updater.Info, error)
	Rollback() (string, error)
}

// CreateUpdateCmd creates the update command and its subcommands.
func CreateUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update keycolor from GitHub releases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check for a newer release",
		Args:  cobra.NoArgs,
		Run: withUpdater(func(cmd *cobra.Command, u releaseUpdater) error {
			return checkUpdate(cmd.Context(), u, cmd.OutOrStdout())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Replace this binary with the latest release",
		Long:  `Downloads the latest release and replaces the running binary, keeping a backup of the current one for rollback.`,
		Args:  cobra.NoArgs,
		Run: withUpdater(func(cmd *cobra.Command, u releaseUpdater) error {
			return applyUpdate(cmd.Context(), u, cmd.OutOrStdout())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Restore the binary saved by the last update",
		Args:  cobra.NoArgs,
		Run: withUpdater(func(cmd *cobra.Command, u releaseUpdater) error {
			return rollbackUpdate(u, cmd.OutOrStdout())
		}),
	})
	return cmd
}

func withUpdater(body func(cmd *cobra.Command, u releaseUpdater) error) func(*cobra.Command, []string) {
	return withOptions(func(cmd *cobra.Command, _ []string, opts *Options) error {
		u, err := updater.New(updater.Options{
			Repository: opts.UpdateRepository,
			Prerelease: opts.UpdatePrerelease,
		}, logging.GetLogger("updater"))
		if err != nil {
			return err
		}
		return body(cmd, u)
	})
}

func checkUpdate(ctx context.Context, u releaseUpdater, out io.Writer) error {
	info, err := u.Check(ctx)
	if err != nil {
		return err
	}
	if !info.UpdateAvailable {
		fmt.Fprintf(out, "keycolor %s is up to date.\n", info.CurrentVersion)
		return nil
	}
	fmt.Fprintf(out, "Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
	if info.ReleaseURL != "" {
		fmt.Fprintln(out, info.ReleaseURL)
	}
	if info.ReleaseNotes != "" {
		fmt.Fprintf(out, "\n%s\n", info.ReleaseNotes)
	}
	return nil
}

func applyUpdate(ctx context.Context, u releaseUpdater, out io.Writer) error {
	info, err := u.Apply(ctx)
	var uerr *updater.Error
	if errors.As(err, &uerr) && uerr.Code == updater.ErrCodeNoUpdate {
		fmt.Fprintf(out, "keycolor %s is up to date.\n", info.CurrentVersion)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated keycolor %s -> %s. Restart to use the new version.\n", info.CurrentVersion, info.LatestVersion)
	return nil
}

func rollbackUpdate(u releaseUpdater, out io.Writer) error {
	restored, err := u.Rollback()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Restored keycolor %s.\n", restored)
	return nil
}
