package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type apiFlags struct {
	host string
	port int
}

type eventsFlags struct {
	eventsHost   string
	eventsPort   int
	messagesHost string
	messagesPort int
	apiURL       string
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tuicubserv",
		Short:         "The authoritative server for tuicub, a multiplayer tile game.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(newAPICmd(), newEventsCmd())
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("tuicubserv v{{.Version}}\n")
	return cmd
}

func newAPICmd() *cobra.Command {
	flags := &apiFlags{}
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Start the API server.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validHost(flags.host) {
				return errors.New("host has an invalid format")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runAPI(cmd.Context(), cfg, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.host, "host", "H", "0.0.0.0", "host to bind to (env: TUICUBSERV_HOST)")
	fs.IntVarP(&flags.port, "port", "p", 5000, "port to listen on (env: TUICUBSERV_PORT)")
	bindEnv(fs)

	return cmd
}

func newEventsCmd() *cobra.Command {
	flags := &eventsFlags{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Start the events and messages servers.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validHost(flags.eventsHost) || !validHost(flags.messagesHost) {
				return errors.New("host has an invalid format")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runEvents(cmd.Context(), cfg, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.eventsHost, "events-host", "0.0.0.0", "host to bind the events server to (env: TUICUBSERV_EVENTS_HOST)")
	fs.IntVar(&flags.eventsPort, "events-port", 23432, "port to bind the events server to (env: TUICUBSERV_EVENTS_PORT)")
	fs.StringVar(&flags.messagesHost, "messages-host", "0.0.0.0", "host to bind the messages server to (env: TUICUBSERV_MESSAGES_HOST)")
	fs.IntVar(&flags.messagesPort, "messages-port", 23433, "port to bind the messages server to (env: TUICUBSERV_MESSAGES_PORT)")
	fs.StringVar(&flags.apiURL, "api-url", "https://api.tuicub.com", "base URL of the API for disconnect callbacks (env: TUICUBSERV_API_URL)")
	bindEnv(fs)

	return cmd
}

// bindEnv lets every flag default from its TUICUBSERV_* variable while
// explicit flags keep precedence.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("TUICUBSERV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
