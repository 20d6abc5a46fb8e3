package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"docbridge/internal/config"
	"docbridge/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: os.Stderr,
	})
}

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

func TestDiagnoseResolverOK(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
cat >/dev/null
`)

	check := diagnoseResolver("com.example.Docs", config.ResolverConfig{Executable: script}, testLogger())
	if check.Status != "ok" {
		t.Errorf("Status = %q (%s), want ok", check.Status, check.Detail)
	}
	if check.Transport != "executable" {
		t.Errorf("Transport = %q, want executable", check.Transport)
	}
}

func TestDiagnoseResolverBundleMismatch(t *testing.T) {
	script := writeResolverScript(t, `
printf '{"bundleIdentifier":"com.example.Other"}\n'
cat >/dev/null
`)

	check := diagnoseResolver("com.example.Docs", config.ResolverConfig{Executable: script}, testLogger())
	if check.Status != "error" {
		t.Fatalf("Status = %q, want error", check.Status)
	}
	if !strings.Contains(check.Detail, "com.example.Other") {
		t.Errorf("Detail = %q, want the announced bundle", check.Detail)
	}
}

func TestDiagnoseResolverMissingExecutable(t *testing.T) {
	check := diagnoseResolver("com.example.Docs",
		config.ResolverConfig{Executable: filepath.Join(t.TempDir(), "missing")}, testLogger())
	if check.Status != "error" {
		t.Errorf("Status = %q, want error", check.Status)
	}
	if !strings.Contains(check.Detail, "MISSING_RESOLVER") {
		t.Errorf("Detail = %q, want the missing-resolver code", check.Detail)
	}
}

func TestDiagnoseResolverServiceEntry(t *testing.T) {
	check := diagnoseResolver("com.example.Remote",
		config.ResolverConfig{ServiceURL: "wss://docs.example.com/resolve"}, testLogger())
	if check.Status != "ok" || check.Transport != "service" {
		t.Errorf("check = %+v, want ok service entry", check)
	}
}
