package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/keycolor/cmd"
	"github.com/smazurov/keycolor/internal/config"
)

func main() {
	var cli humacli.CLI

	// Runs for every command before its own Run
	cli = humacli.New(func(hooks humacli.Hooks, opts *cmd.Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Without a subcommand keycolor shows the interactive form
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			defer close(done)
			if err := cmd.RunTUI(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			cancel()
			<-done
		})
	})

	root := cli.Root()
	root.Use = "keycolor"
	root.Short = "Set keyboard LED colors through ratbagctl"
	root.Long = `keycolor changes the LED colors of libratbag supported keyboards such as the Logitech G915. ` +
		`Run without a subcommand for the interactive form.`

	root.AddCommand(
		cmd.CreateListCmd(),
		cmd.CreateLedsCmd(),
		cmd.CreateApplyCmd(),
		cmd.CreateColorsCmd(),
		cmd.CreateCheckCmd(),
		cmd.CreateInstallCmd(),
		cmd.CreateSettingsCmd(),
		cmd.CreateServeCmd(),
		cmd.CreateUpdateCmd(),
		cmd.CreateVersionCmd(),
	)

	// Run the CLI
	cli.Run()
}
