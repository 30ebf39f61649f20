// Package cli implements the command-line interface for revery.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/revery-project/revery/internal/logging"
	"github.com/revery-project/revery/internal/transport"
)

var (
	cfgFile       string
	verbose       bool
	logLevel      string
	logFormat     string
	transportKind string
	torPath       string
	onionPort     int
	tcpListen     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "revery",
	Short: "Deniable peer-to-peer messaging over Tor",
	Long: `Revery is an ephemeral, deniable peer-to-peer messenger. Two
parties who share a passphrase establish a mutually authenticated,
encrypted channel over a Tor hidden service, exchange text and images,
and tear everything down: no identity, no key material, no transcript.

The protocol is deliberately malleable. Anyone holding the session
secret can fabricate plausible alternative transcripts, so a captured
log proves nothing about who wrote what.

Examples:
  # Host a session and print the address to share
  revery host

  # Join a hosted session
  revery join exampleonionaddress.onion:7358

  # Run the engine for a UI shell (NDJSON over stdio)
  revery bridge`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.revery.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console or json)")
	rootCmd.PersistentFlags().StringVar(&transportKind, "transport", "tor", "transport provider (tor or tcp)")
	rootCmd.PersistentFlags().StringVar(&torPath, "tor-path", "", "path to the tor executable (default: tor on PATH)")
	rootCmd.PersistentFlags().IntVar(&onionPort, "onion-port", transport.DefaultOnionPort, "virtual port for the onion service")
	rootCmd.PersistentFlags().StringVar(&tcpListen, "tcp-listen", "127.0.0.1:0", "listen address for --transport tcp")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("transport", rootCmd.PersistentFlags().Lookup("transport"))
	viper.BindPFlag("tor_path", rootCmd.PersistentFlags().Lookup("tor-path"))
	viper.BindPFlag("onion_port", rootCmd.PersistentFlags().Lookup("onion-port"))
	viper.BindPFlag("tcp_listen", rootCmd.PersistentFlags().Lookup("tcp-listen"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".revery")
	}

	viper.SetEnvPrefix("REVERY")
	viper.AutomaticEnv()

	viper.SetDefault("transport", "tor")
	viper.SetDefault("onion_port", transport.DefaultOnionPort)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "console")

	viper.ReadInConfig()
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

// newLogger builds the process logger from flags and config.
func newLogger() zerolog.Logger {
	level := viper.GetString("log_level")
	if verbose || viper.GetBool("verbose") {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:  level,
		Format: viper.GetString("log_format"),
	})
}

// newProvider builds the configured transport provider. The tor provider
// launches a managed tor process; close the provider to stop it.
func newProvider(ctx context.Context, log zerolog.Logger) (transport.Provider, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return transport.NewTCPProvider(viper.GetString("tcp_listen")), nil
	case "tor":
		return transport.StartTor(ctx, transport.TorConfig{
			TorPath:   viper.GetString("tor_path"),
			OnionPort: viper.GetInt("onion_port"),
		}, log)
	default:
		return nil, fmt.Errorf("unknown transport %q", viper.GetString("transport"))
	}
}
