package resolver

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"docbridge/internal/docmodel"
	"docbridge/internal/errors"
)

func writeResolverScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script resolvers are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "resolver")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestNewFromExecutableHandshakeOnly(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
cat >/dev/null
`)

	r, err := NewFromExecutable(script, nil, nil)
	if err != nil {
		t.Fatalf("NewFromExecutable failed: %v", err)
	}
	defer r.Close()

	if r.BundleIdentifier() != "com.example.Docs" {
		t.Errorf("BundleIdentifier() = %q, want com.example.Docs", r.BundleIdentifier())
	}
}

func TestNewFromExecutableRejectsBadHandshake(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"errorMessage":"not a handshake"}\n'
cat >/dev/null
`)

	_, err := NewFromExecutable(script, nil, nil)
	if errors.CodeOf(err) != errors.InvalidBundleIdentifierOutput {
		t.Errorf("error = %v, want code %v", err, errors.InvalidBundleIdentifierOutput)
	}
}

func TestExecutableTopicResolveEndToEnd(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
read line
printf '{"resolvedInformation":{"kind":{"name":"Class","id":"class","isSymbol":true},"url":"https://x/Foo/Bar","title":"Bar","abstract":"A class.","language":{"name":"Swift","id":"swift"},"availableLanguages":[{"name":"Swift","id":"swift"}],"platforms":null,"declarationFragments":null}}\n'
cat >/dev/null
`)

	r, err := NewFromExecutable(script, nil, nil)
	if err != nil {
		t.Fatalf("NewFromExecutable failed: %v", err)
	}
	defer r.Close()

	u, _ := url.Parse("doc://com.example.Docs/Foo/Bar")
	result := r.Resolve(docmodel.TopicReference{Unresolved: &docmodel.UnresolvedReference{TopicURL: u}}, docmodel.LanguageSwift)
	if !result.Succeeded() {
		t.Fatalf("Resolve failed: %s", result.ErrorMessage)
	}
	if result.Resolved.Path != "/Foo/Bar" || result.Resolved.BundleIdentifier != "com.example.Docs" {
		t.Errorf("Resolved = %+v", result.Resolved)
	}

	// Served from cache: the child only ever answers one request
	again := r.Resolve(docmodel.TopicReference{Unresolved: &docmodel.UnresolvedReference{TopicURL: u}}, docmodel.LanguageSwift)
	if !again.Succeeded() {
		t.Fatalf("cached Resolve failed: %s", again.ErrorMessage)
	}

	node := r.Entity(*result.Resolved)
	if node.Name != "Bar" {
		t.Errorf("Entity Name = %q, want Bar", node.Name)
	}
}

func TestExecutableExitFailsSubsequentResolves(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
exit 0
`)

	r, err := NewFromExecutable(script, nil, nil)
	if err != nil {
		t.Fatalf("NewFromExecutable failed: %v", err)
	}
	defer r.Close()

	u, _ := url.Parse("doc://com.example.Docs/Foo")
	ref := docmodel.TopicReference{Unresolved: &docmodel.UnresolvedReference{TopicURL: u}}

	result := r.Resolve(ref, docmodel.LanguageSwift)
	if result.Succeeded() {
		t.Fatal("Resolve succeeded against an exited child")
	}

	// The resolver is terminal once the child is gone
	again := r.Resolve(ref, docmodel.LanguageSwift)
	if again.Succeeded() {
		t.Fatal("Resolve succeeded after the transport terminated")
	}
}
