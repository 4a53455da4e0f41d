package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"

	"github.com/darkhz/hotspotctl/api/config"
	uiconfig "github.com/darkhz/hotspotctl/ui/config"
)

// These values are set at compile-time.
var (
	Version  = ""
	Revision = ""
)

// Run runs the commandline application.
func Run() error {
	return newApp().Run(os.Args)
}

// newApp returns a new commandline application.
func newApp() *cli.App {
	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Fprintf(cCtx.App.Writer, "%s (%s)\n", Version, Revision)
	}

	state := &cliState{
		k:   koanf.New("."),
		cfg: uiconfig.NewConfig(),
	}

	return &cli.App{
		Name:                   "hotspotctl",
		Usage:                  "Wi-Fi hotspot manager.",
		Version:                Version + " (" + Revision + ")",
		Description:            "Control and monitor a Wi-Fi access point (hotspot) through NetworkManager.",
		Compiled:               time.Now(),
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Suggest:                true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "interface",
				Aliases: []string{"i"},
				EnvVars: []string{"HOTSPOTCTL_INTERFACE"},
				Usage:   "Specify a wireless interface to use. (For example, wlan0)",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				EnvVars: []string{"HOTSPOTCTL_BACKEND"},
				Usage:   "Specify the backend to use. (auto, legacy or reservation)",
			},
			&cli.StringFlag{
				Name:    "connection-id",
				Aliases: []string{"c"},
				EnvVars: []string{"HOTSPOTCTL_CONNECTION_ID"},
				Usage:   "Specify the name of the stored access point profile. (Default is '" + config.DefaultConnectionID + "')",
			},
			&cli.StringFlag{
				Name:    "grant-timeout",
				Aliases: []string{"t"},
				EnvVars: []string{"HOTSPOTCTL_GRANT_TIMEOUT"},
				Usage:   "Specify how long to wait for a permission request. (For example, '30s')",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Aliases: []string{"l"},
				EnvVars: []string{"HOTSPOTCTL_LOG_FILE"},
				Usage:   "Specify a file to record state changes and errors to.",
			},
			&cli.BoolFlag{
				Name:    "no-warning",
				Aliases: []string{"w"},
				EnvVars: []string{"HOTSPOTCTL_NO_WARNING"},
				Usage:   "Do not display warnings when the application has initialized.",
			},
			&cli.BoolFlag{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "Generate configuration.",
				Action: func(*cli.Context, bool) error {
					return state.cfg.GenerateAndSave(state.k)
				},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the access point state.",
				Action: state.status,
			},
			{
				Name:  "enable",
				Usage: "Enable the access point.",
				Description: "With the reservation backend, the access point only lives as long as this process.\n" +
					"The command waits for the access point to start, keeps it up until interrupted,\n" +
					"and then disables it.",
				Flags: []cli.Flag{
					waitFlag(),
					waitTimeoutFlag(),
				},
				Action: state.enable,
			},
			{
				Name:  "disable",
				Usage: "Disable the access point.",
				Flags: []cli.Flag{
					waitFlag(),
					waitTimeoutFlag(),
				},
				Action: state.disable,
			},
			{
				Name:  "config",
				Usage: "Show or change the access point configuration.",
				Subcommands: []*cli.Command{
					{
						Name:  "show",
						Usage: "Show the access point configuration.",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:    "show-passphrase",
								Aliases: []string{"p"},
								Usage:   "Display the passphrase.",
							},
						},
						Action: state.configShow,
					},
					{
						Name:  "set",
						Usage: "Change the access point configuration.",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "ssid",
								Aliases:  []string{"s"},
								Usage:    "Specify the network name.",
								Required: true,
							},
							&cli.StringFlag{
								Name:    "passphrase",
								Aliases: []string{"p"},
								Usage:   "Specify the network passphrase. (8 to 63 characters)",
							},
							&cli.BoolFlag{
								Name:    "open",
								Aliases: []string{"o"},
								Usage:   "Share an open network without a passphrase.",
							},
							&cli.StringFlag{
								Name:    "band",
								Aliases: []string{"n"},
								Usage:   "Specify the frequency band. (a or bg, or empty for automatic selection)",
							},
						},
						Action: state.configSet,
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Display access point state changes until interrupted.",
				Action: state.watch,
			},
			{
				Name:   "grant",
				Usage:  "Request the permission that is required to control the access point.",
				Action: state.grant,
			},
			{
				Name:   "ui",
				Usage:  "Start the interactive interface.",
				Action: state.ui,
			},
		},
		Before: func(cliCtx *cli.Context) error {
			// required for koanf to merge all global flags under the root namespace.
			cliCtx.Command.Name = "global"

			return state.load(cliCtx)
		},
		Action: func(cliCtx *cli.Context) error {
			if cliCtx.Bool("generate") {
				return nil
			}

			return state.ui(cliCtx)
		},
		After: func(*cli.Context) error {
			return state.close()
		},
		ExitErrHandler: func(_ *cli.Context, err error) {
			if err == nil {
				return
			}

			state.logError(err)
			printError(err)
		},
	}
}

// waitFlag returns a flag which waits for the state change to complete.
func waitFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "wait",
		Aliases: []string{"W"},
		Usage:   "Wait until the access point has changed its state.",
	}
}

// waitTimeoutFlag returns a flag which limits how long to wait for the state change.
func waitTimeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Specify how long to wait for the state change.",
		Value: defaultWaitTimeout,
	}
}
