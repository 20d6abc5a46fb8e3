package main

import (
	"github.com/spf13/cobra"

	"docbridge/internal/version"
)

var (
	// configDir is the CLI --config flag value
	configDir string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "docbridge - Out-of-process documentation reference bridge",
	Long: `docbridge resolves external topic, symbol, and asset references through
out-of-process reference resolvers: long-running resolver executables the
bridge launches and owns, or already-running documentation services reached
over a request/response channel.

Resolvers are registered per bundle identifier in docbridge.json.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("docbridge version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".",
		"Directory containing docbridge.json")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human, json (default: from config)")
}
