package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var symbolBundle string

var symbolCmd = &cobra.Command{
	Use:   "symbol <precise-identifier>",
	Short: "Resolve an external symbol by its precise identifier",
	Long: `Resolve a symbol by its precise identifier (USR) through the external
resolver registered for a bundle, and print the minted reference together
with the symbol's kind, title, and availability.

Example:
  docbridge symbol s:3Foo3BarC --bundle com.example.Docs`,
	Args: cobra.ExactArgs(1),
	Run:  runSymbol,
}

func init() {
	symbolCmd.Flags().StringVar(&symbolBundle, "bundle", "", "Bundle identifier whose resolver answers the request (required)")
	_ = symbolCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(symbolCmd)
}

// SymbolResponseCLI is the symbol command's output
type SymbolResponseCLI struct {
	Reference    ResolvedReferenceCLI `json:"reference"`
	Kind         string               `json:"kind"`
	Title        string               `json:"title"`
	Abstract     string               `json:"abstract,omitempty"`
	URL          string               `json:"url,omitempty"`
	Availability []AvailabilityCLI    `json:"availability,omitempty"`
}

// AvailabilityCLI is one availability row for CLI output
type AvailabilityCLI struct {
	Domain     string `json:"domain"`
	Introduced string `json:"introduced,omitempty"`
	Deprecated string `json:"deprecated,omitempty"`
	Obsoleted  string `json:"obsoleted,omitempty"`
}

func runSymbol(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	preciseIdentifier := args[0]

	r := mustOpenResolver(cfg, logger, symbolBundle)
	defer r.Close()

	node, err := r.SymbolEntity(preciseIdentifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving symbol: %v\n", err)
		os.Exit(1)
	}

	response := SymbolResponseCLI{
		Reference: ResolvedReferenceCLI{
			BundleIdentifier: node.Reference.BundleIdentifier,
			Path:             node.Reference.Path,
			SourceLanguage:   node.Reference.SourceLanguage.ID,
		},
		Kind:  node.Kind.Name,
		Title: node.Name,
	}
	if node.Abstract != nil {
		response.Abstract = node.Abstract.PlainText()
	}
	if u := r.URLForResolvedSymbol(node.Reference); u != nil {
		response.URL = u.String()
	}
	if node.Semantic != nil {
		for _, item := range node.Semantic.Availability {
			row := AvailabilityCLI{Domain: item.Domain}
			if item.Introduced != nil {
				row.Introduced = item.Introduced.String()
			}
			if item.Deprecated != nil {
				row.Deprecated = item.Deprecated.String()
			}
			if item.Obsoleted != nil {
				row.Obsoleted = item.Obsoleted.String()
			}
			response.Availability = append(response.Availability, row)
		}
	}

	printJSON(response)
}
