package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/config"
	"github.com/turnupspot/turnupspot-client/internal/bootstrap"
	"github.com/turnupspot/turnupspot-client/internal/geo"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
	"github.com/turnupspot/turnupspot-client/internal/screens"
)

var (
	// flags
	configFile string
	assumeYes  bool
	latitude   float64
	longitude  float64

	app    *bootstrap.App
	routes = &terminalNavigator{}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML configuration file")
	RootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
}

var RootCmd = &cobra.Command{
	Use:          "turnup",
	Short:        "TurnUp Spot from the command line",
	Long:         "Browse and manage sports groups, game days and chats on TurnUp Spot.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		routes.out = cmd.ErrOrStderr()
		app, err = bootstrap.Build(cmd.Context(), cfg, bootstrap.AppDeps{
			Navigator: routes,
			Confirmer: terminalConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr()),
			Locator:   locatorFor(cmd),
			Clipboard: systemClipboard(),
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp(cmd.ErrOrStderr())
	},
}

func deps() *screens.Deps { return app.Screens }

// locatorFor answers the --lat/--lng position of commands that take one.
// Without it the device has no geolocation.
func locatorFor(cmd *cobra.Command) geo.Locator {
	f := cmd.Flags()
	if !f.Changed("lat") || !f.Changed("lng") {
		return geo.Unsupported
	}
	return geo.Static{Position: geo.Position{Latitude: latitude, Longitude: longitude}}
}

// closeApp prints pending notices and releases the app
func closeApp(w io.Writer) error {
	if app == nil {
		return nil
	}
	printNotices(w, app.Notices.Drain())
	err := app.Close()
	app = nil
	return err
}

func printNotices(w io.Writer, notices []notify.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}

// terminalNavigator reports where a browser would go next
type terminalNavigator struct {
	mu  sync.Mutex
	out io.Writer
}

func (t *terminalNavigator) Navigate(to nav.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.out != nil {
		fmt.Fprintf(t.out, "-> %s\n", to)
	}
}

// terminalConfirmer asks on the terminal unless --yes was given
func terminalConfirmer(in io.Reader, out io.Writer) notify.Confirmer {
	reader := bufio.NewReader(in)
	return notify.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}
