package main

import (
	"os"

	"github.com/spf13/cobra"
)

var assetBundle string

var assetCmd = &cobra.Command{
	Use:   "asset <asset-name>",
	Short: "Resolve an external asset by name",
	Long: `Resolve a named asset through the external resolver registered for a
bundle. Assets are best-effort: an asset the resolver cannot provide is
reported as not found rather than as an error.

Example:
  docbridge asset hero-image --bundle com.example.Docs`,
	Args: cobra.ExactArgs(1),
	Run:  runAsset,
}

func init() {
	assetCmd.Flags().StringVar(&assetBundle, "bundle", "", "Bundle identifier whose resolver answers the request (required)")
	_ = assetCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(assetCmd)
}

// AssetResponseCLI is the asset command's output
type AssetResponseCLI struct {
	AssetName string            `json:"assetName"`
	Found     bool              `json:"found"`
	Variants  map[string]string `json:"variants,omitempty"`
}

func runAsset(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	assetName := args[0]

	r := mustOpenResolver(cfg, logger, assetBundle)
	defer r.Close()

	asset := r.ResolveAsset(assetName, assetBundle)
	if asset == nil {
		printJSON(AssetResponseCLI{AssetName: assetName, Found: false})
		os.Exit(1)
	}

	printJSON(AssetResponseCLI{
		AssetName: assetName,
		Found:     true,
		Variants:  asset.Variants,
	})
}
