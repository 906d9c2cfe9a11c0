package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

var cmdMain = &cobra.Command{
	Use:           "apostille",
	Short:         "Notarize files on a ledger through apostille accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var flagMain struct {
	ConfigFile string
	Network    string
	Endpoint   string
	LogLevel   string
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.ConfigFile, "config", "c", "", "YAML configuration file; APOSTILLE_* variables are used when empty")
	cmdMain.PersistentFlags().StringVarP(&flagMain.Network, "network", "n", "", "Network: mainnet, testnet, private or private-test")
	cmdMain.PersistentFlags().StringVar(&flagMain.Endpoint, "endpoint", "", "Node REST endpoint")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", "", "Log level")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file or the environment, then applies
// the persistent flags.
func loadConfig() (shared.Config, error) {
	var (
		config shared.Config
		err    error
	)
	if strings.TrimSpace(flagMain.ConfigFile) != "" {
		config, err = shared.LoadConfigFile(flagMain.ConfigFile)
	} else {
		config, err = shared.ConfigFromEnv()
	}
	if err != nil {
		return shared.Config{}, err
	}

	if flagMain.Network != "" {
		network, err := shared.NormalizeNetwork(flagMain.Network)
		if err != nil {
			return shared.Config{}, err
		}
		config.Network = network
	}
	if flagMain.Endpoint != "" {
		config.Endpoint = strings.TrimSpace(flagMain.Endpoint)
	}
	if flagMain.LogLevel != "" {
		config.LogLevel = flagMain.LogLevel
	}
	return config, nil
}

func newLogger(config shared.Config) (zerolog.Logger, error) {
	logger, err := shared.NewLogger(config.LogLevel, nil)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	return logger.With().Str("network", config.Network).Logger(), nil
}
