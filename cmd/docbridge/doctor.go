package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docbridge/internal/config"
	"docbridge/internal/logging"
	"docbridge/internal/resolver"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configured external resolvers",
	Long: `Check every resolver registered in docbridge.json: executable entries are
verified for presence and the exec bit, then spawned for a handshake whose
announced bundle identifier must match the registry key. Service entries
are reported with their endpoint.`,
	Run: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorCheckCLI is one resolver's diagnostic result
type DoctorCheckCLI struct {
	BundleIdentifier string `json:"bundleIdentifier"`
	Transport        string `json:"transport"`
	Target           string `json:"target"`
	Status           string `json:"status"`
	Detail           string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	checks := make([]DoctorCheckCLI, 0, len(cfg.Resolvers))
	failed := false
	for bundleID, entry := range cfg.Resolvers {
		check := diagnoseResolver(bundleID, entry, logger)
		if check.Status != "ok" {
			failed = true
		}
		checks = append(checks, check)
	}

	if doctorFormat == "json" {
		printJSON(checks)
	} else {
		for _, check := range checks {
			fmt.Printf("%-8s %s (%s: %s)", check.Status, check.BundleIdentifier, check.Transport, check.Target)
			if check.Detail != "" {
				fmt.Printf(" - %s", check.Detail)
			}
			fmt.Println()
		}
		if len(checks) == 0 {
			fmt.Println("No external resolvers configured.")
		}
	}

	if failed {
		os.Exit(1)
	}
}

// diagnoseResolver checks one registry entry
func diagnoseResolver(bundleID string, entry config.ResolverConfig, logger *logging.Logger) DoctorCheckCLI {
	if entry.IsService() {
		// A service resolver has no handshake to verify; report the endpoint
		return DoctorCheckCLI{
			BundleIdentifier: bundleID,
			Transport:        "service",
			Target:           entry.ServiceURL,
			Status:           "ok",
			Detail:           "service entries are verified at connect time",
		}
	}

	check := DoctorCheckCLI{
		BundleIdentifier: bundleID,
		Transport:        "executable",
		Target:           entry.Executable,
	}

	r, err := resolver.NewFromExecutable(entry.Executable, entry.Args,
		stderrHandler(logger), resolver.WithLogger(logger))
	if err != nil {
		check.Status = "error"
		check.Detail = err.Error()
		return check
	}
	defer r.Close()

	if announced := r.BundleIdentifier(); announced != bundleID {
		check.Status = "error"
		check.Detail = fmt.Sprintf("resolver announced bundle '%s', registry expects '%s'", announced, bundleID)
		return check
	}

	check.Status = "ok"
	return check
}
