package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"docbridge/internal/docmodel"
)

var resolveLanguage string

var resolveCmd = &cobra.Command{
	Use:   "resolve <topic-url>",
	Short: "Resolve an external topic reference",
	Long: `Resolve a doc:// topic URL through the external resolver registered for
the URL's bundle identifier, and print the resolved reference together with
the canonical external URL.

Example:
  docbridge resolve doc://com.example.Docs/documentation/Example/Widget`,
	Args: cobra.ExactArgs(1),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveLanguage, "language", "swift", "Source language id for the reference")
	rootCmd.AddCommand(resolveCmd)
}

// ResolveResponseCLI is the resolve command's output
type ResolveResponseCLI struct {
	Resolved     *ResolvedReferenceCLI `json:"resolved,omitempty"`
	URL          string                `json:"url,omitempty"`
	ErrorMessage string                `json:"errorMessage,omitempty"`
}

// ResolvedReferenceCLI mirrors a resolved reference for CLI output
type ResolvedReferenceCLI struct {
	BundleIdentifier string `json:"bundleIdentifier"`
	Path             string `json:"path"`
	Fragment         string `json:"fragment,omitempty"`
	SourceLanguage   string `json:"sourceLanguage"`
}

func runResolve(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	topicURL, err := url.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid topic URL '%s': %v\n", args[0], err)
		os.Exit(1)
	}
	if topicURL.Host == "" {
		fmt.Fprintf(os.Stderr, "Topic URL '%s' carries no bundle identifier\n", args[0])
		os.Exit(1)
	}

	r := mustOpenResolver(cfg, logger, topicURL.Host)
	defer r.Close()

	ref := docmodel.TopicReference{Unresolved: &docmodel.UnresolvedReference{TopicURL: topicURL}}
	result := r.Resolve(ref, docmodel.LanguageWithID(resolveLanguage))

	if !result.Succeeded() {
		printJSON(ResolveResponseCLI{ErrorMessage: result.ErrorMessage})
		os.Exit(1)
	}

	resolved := *result.Resolved
	printJSON(ResolveResponseCLI{
		Resolved: &ResolvedReferenceCLI{
			BundleIdentifier: resolved.BundleIdentifier,
			Path:             resolved.Path,
			Fragment:         resolved.Fragment,
			SourceLanguage:   resolved.SourceLanguage.ID,
		},
		URL: r.URLForResolvedReference(resolved).String(),
	})
}
