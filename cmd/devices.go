package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/keycolor/internal/color"
	"github.com/smazurov/keycolor/internal/session"
	"github.com/spf13/cobra"
)

// CreateListCmd creates the list command.
func CreateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices reported by the device tool",
		Long:  `Runs the device tool's list query and prints every device. The default device is marked with '*'.`,
		Args:  cobra.NoArgs,
		Run: withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			return listDevices(cmd.Context(), app, cmd.OutOrStdout())
		}),
	}
}

// CreateLedsCmd creates the leds command.
func CreateLedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leds [device]",
		Short: "List the LEDs of a device",
		Long:  `Lists the LED ids of the given device, or of the default device when none is given. The default LED is marked with '*'.`,
		Args:  cobra.MaximumNArgs(1),
		Run: withApp(func(cmd *cobra.Command, args []string, app *App) error {
			device := ""
			if len(args) == 1 {
				device = args[0]
			}
			return listLeds(cmd.Context(), app, cmd.OutOrStdout(), device)
		}),
	}
}

// CreateApplyCmd creates the apply command.
func CreateApplyCmd() *cobra.Command {
	var device string
	var led string

	cmd := &cobra.Command{
		Use:   "apply <color>",
		Short: "Set an LED color",
		Long: `Sets an LED to a hex color (rrggbb, with or without '#') or a palette name such as "Cyan". ` +
			`Device and LED default to the remembered selection, then to discovery.`,
		Args: cobra.ExactArgs(1),
		Run: withApp(func(cmd *cobra.Command, args []string, app *App) error {
			return applyColor(cmd.Context(), app, cmd.OutOrStdout(), session.Selection{
				Device: device,
				Led:    led,
				Color:  args[0],
			})
		}),
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "Target device (default: remembered or discovered)")
	cmd.Flags().StringVarP(&led, "led", "l", "", "Target LED id (default: remembered or first)")
	return cmd
}

// CreateColorsCmd creates the colors command.
func CreateColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List the named color palette",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printPalette(cmd.OutOrStdout())
		},
	}
}

func listDevices(ctx context.Context, app *App, out io.Writer) error {
	list, err := app.Controller.DiscoverDevices(ctx, 0, app.Prefs.Get().LastDevice)
	if err != nil {
		return err
	}
	if len(list.Devices) == 0 {
		fmt.Fprintln(out, session.DevicesStatus(list))
		return nil
	}
	for _, d := range list.Devices {
		fmt.Fprintln(out, marked(d, list.Selected))
	}
	return nil
}

func listLeds(ctx context.Context, app *App, out io.Writer, device string) error {
	if device == "" {
		var err error
		if device, err = defaultDevice(ctx, app); err != nil {
			return err
		}
	}

	list, err := app.Controller.DiscoverLeds(ctx, device, rememberedLed(app, device))
	if err != nil {
		return err
	}
	if len(list.Leds) == 0 {
		fmt.Fprintln(out, session.LedsStatus(list))
		return nil
	}
	for _, id := range list.Leds {
		fmt.Fprintln(out, marked(id, list.Selected))
	}
	return nil
}

// applyColor resolves palette names, fills an empty device or LED from
// discovery and applies once. A bad color fails before any discovery.
func applyColor(ctx context.Context, app *App, out io.Writer, sel session.Selection) error {
	hex, err := color.Resolve(sel.Color)
	if err != nil {
		return fmt.Errorf("invalid color %q: expected six hex digits or a palette name", sel.Color)
	}
	sel.Color = hex

	if sel.Device == "" {
		if sel.Device, err = defaultDevice(ctx, app); err != nil {
			return err
		}
	}
	if sel.Led == "" {
		list, err := app.Controller.DiscoverLeds(ctx, sel.Device, rememberedLed(app, sel.Device))
		if err != nil {
			return err
		}
		sel.Led = list.Selected
	}

	res, err := app.Controller.ApplyColor(ctx, sel)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, session.AppliedStatus(res))
	return nil
}

// defaultDevice discovers devices and returns the default selection.
func defaultDevice(ctx context.Context, app *App) (string, error) {
	list, err := app.Controller.DiscoverDevices(ctx, 0, app.Prefs.Get().LastDevice)
	if err != nil {
		return "", err
	}
	if list.Selected == "" {
		return "", errors.New("no compatible devices found")
	}
	return list.Selected, nil
}

// rememberedLed returns the saved LED when it belongs to device.
func rememberedLed(app *App, device string) string {
	rec := app.Prefs.Get()
	if rec.LastDevice != device {
		return ""
	}
	return rec.LastLed
}

func printPalette(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range color.Palette() {
		fmt.Fprintf(w, "%s\t#%s\n", c.Name, c.Hex)
	}
	w.Flush()
}

func marked(item, selected string) string {
	if item == selected {
		return "* " + item
	}
	return "  " + item
}
