// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citekit CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE from the --verbose setting.
var logger = zap.NewNop()

// rootCmd is the base command for the citekit CLI.
var rootCmd = &cobra.Command{
	Use:   "citekit",
	Short: "Format citations and bibliographies from declarative styles",
	Long: `citekit renders citations and bibliographies from YAML styles, migrates
legacy CSL styles into that form, keeps a searchable SQLite reference
library, and processes Markdown manuscripts that cite it.

References come from --bibliography (YAML, CSL-JSON, or CSL-YAML) or,
when none is given, from the library at --library.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./citekit.yaml or ~/.config/citekit/citekit.yaml)")
	flags.String("style", "", "built-in style name or style YAML file (default: author-date)")
	flags.String("locale", "", "built-in locale id or locale YAML file (default: en-US)")
	flags.String("format", "plain", "output format: plain or html")
	flags.String("bibliography", "", "references file (YAML, CSL-JSON, or CSL-YAML)")
	flags.String("library", defaultLibrary(), "path of the SQLite reference library")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for _, key := range []string{"style", "locale", "format", "bibliography", "library", "verbose"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

func defaultLibrary() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "citekit.db"
	}
	return filepath.Join(home, ".local", "share", "citekit", "library.db")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citekit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citekit"))
		}
	}

	viper.SetEnvPrefix("CITEKIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
