package main

import (
	"encoding/json"
	"fmt"
	"os"

	"docbridge/internal/config"
	"docbridge/internal/logging"
	"docbridge/internal/resolver"
	"docbridge/internal/service"
)

// mustLoadConfig loads docbridge.json from the --config directory
func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the logger from config with CLI flag overrides
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}

	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
	})
}

// mustOpenResolver connects the resolver registered for a bundle identifier.
// The caller owns the returned resolver and must Close it.
func mustOpenResolver(cfg *config.Config, logger *logging.Logger, bundleIdentifier string) *resolver.Resolver {
	entry, ok := cfg.ResolverFor(bundleIdentifier)
	if !ok {
		fmt.Fprintf(os.Stderr, "No external resolver registered for bundle '%s'\n", bundleIdentifier)
		os.Exit(1)
	}

	if entry.IsService() {
		client, err := service.DialWebSocket(entry.ServiceURL, entry.ServiceToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to documentation service: %v\n", err)
			os.Exit(1)
		}
		return resolver.NewFromService(client, bundleIdentifier, resolver.WithLogger(logger))
	}

	r, err := resolver.NewFromExecutable(entry.Executable, entry.Args,
		stderrHandler(logger), resolver.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting external resolver: %v\n", err)
		os.Exit(1)
	}
	return r
}

// stderrHandler forwards resolver stderr chunks to the log
func stderrHandler(logger *logging.Logger) func(string) {
	return func(chunk string) {
		logger.Warn("External resolver stderr", map[string]interface{}{
			"chunk": chunk,
		})
	}
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
