package main

import (
	"os"

	"contract_deployer/internal/infrastructure/configloader"
	"contract_deployer/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	devLog     bool
}

// newRootCmd builds the deployer command tree. cleanup releases what the
// command opened and is safe to call whether or not it ran.
func newRootCmd() (rootCmd *cobra.Command, cleanup func()) {
	opts := &rootOptions{}
	var (
		app       *application
		zapLogger *zap.Logger
	)

	rootCmd = &cobra.Command{
		Use:   "deployer",
		Short: "Deploy a smart contract to a configured EVM network",
		Long: `deployer deploys a compiled contract to a network selected by name.

Networks come from the built-in definitions (hardhat, sepolia, amoy) overlaid
with the networks section of the config file. RPC URLs and private keys are
usually read from environment variables named in the config.

  deployer networks
  deployer balance --network amoy
  deployer deploy --network hardhat
  deployer deploy --network sepolia --contract RiskRegistry --arg 100
  deployer serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configloader.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = opts.logLevel
			}
			if opts.devLog {
				cfg.Logging.Development = true
			}

			zapLogger, err = logger.Init(cfg.Logging.Level, cfg.Logging.Development)
			if err != nil {
				return err
			}

			app, err = newApplication(cfg, logger.NewSlogAdapter(nil))
			return err
		},
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = configloader.DefaultPath
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "config file (env CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.devLog, "dev-log", false, "human-readable development logging")

	appFn := func() *application { return app }
	rootCmd.AddCommand(newDeployCmd(appFn))
	rootCmd.AddCommand(newNetworksCmd(appFn))
	rootCmd.AddCommand(newBalanceCmd(appFn))
	rootCmd.AddCommand(newServeCmd(appFn))

	cleanup = func() {
		if app != nil {
			app.Close()
		}
		if zapLogger != nil {
			_ = zapLogger.Sync()
		}
	}
	return rootCmd, cleanup
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err: err}
	}
	return nil
}
