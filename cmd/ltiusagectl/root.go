package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// settings holds the resolved flags, env (LTIUSAGECTL_*) and config file
// values for the current run.
var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:           "ltiusagectl",
	Short:         "Browse the LTI usage report from a terminal",
	Long:          "ltiusagectl pages through the LTI usage report served by ltiusage and mints launch tokens.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.ltiusagectl.yaml)")
	pf.String("server", "http://localhost:3000", "report server base URL")
	pf.String("token", "", "bearer token for the report API")
	pf.Bool("verbose", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(cmd *cobra.Command) error {
	settings.SetEnvPrefix("LTIUSAGECTL")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	if err := settings.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := settings.GetString("config"); path != "" {
		settings.SetConfigFile(path)
	} else if home, err := os.UserHomeDir(); err == nil {
		settings.SetConfigFile(filepath.Join(home, ".ltiusagectl.yaml"))
	}
	settings.SetConfigType("yaml")

	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		// An explicit --config must exist.
		if settings.GetString("config") != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// newLogger logs to stderr: debug and up with --verbose, errors otherwise.
func newLogger() (*zap.Logger, error) {
	if settings.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
