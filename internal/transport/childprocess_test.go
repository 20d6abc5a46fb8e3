package transport

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"docbridge/internal/errors"
	"docbridge/internal/wire"
)

// writeScript writes an executable shell script into dir and returns its path
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script resolvers are not available on windows")
	}
}

func TestNewChildProcessTransportMissingResolver(t *testing.T) {
	_, err := NewChildProcessTransport(filepath.Join(t.TempDir(), "no-such-resolver"), nil, nil, nil)
	if errors.CodeOf(err) != errors.MissingResolver {
		t.Errorf("error = %v, want code %v", err, errors.MissingResolver)
	}
}

func TestNewChildProcessTransportNotExecutable(t *testing.T) {
	skipOnWindows(t)

	path := filepath.Join(t.TempDir(), "resolver")
	if err := os.WriteFile(path, []byte("not a program"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewChildProcessTransport(path, nil, nil, nil)
	if errors.CodeOf(err) != errors.ResolverNotExecutable {
		t.Errorf("error = %v, want code %v", err, errors.ResolverNotExecutable)
	}
}

func TestChildProcessTransportHandshakeAndResponses(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
while read line; do
  printf '{"errorMessage":"unknown topic"}\n'
done
`)

	transport, err := NewChildProcessTransport(script, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}
	defer transport.Close()

	handshake, err := transport.SendAndWait(nil)
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if handshake.BundleIdentifier == nil || *handshake.BundleIdentifier != "com.example.Docs" {
		t.Fatalf("handshake = %+v, want bundleIdentifier com.example.Docs", handshake)
	}

	req := wire.NewTopicRequest("doc://com.example.Docs/Foo")
	resp, err := transport.SendAndWait(&req)
	if err != nil {
		t.Fatalf("SendAndWait failed: %v", err)
	}
	if resp.ErrorMessage == nil || *resp.ErrorMessage != "unknown topic" {
		t.Errorf("response = %+v, want errorMessage", resp)
	}
}

func TestChildProcessTransportProcessExit(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
exit 3
`)

	transport, err := NewChildProcessTransport(script, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}
	defer transport.Close()

	if _, err := transport.SendAndWait(nil); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	req := wire.NewTopicRequest("doc://com.example.Docs/Foo")
	_, err = transport.SendAndWait(&req)
	if errors.CodeOf(err) != errors.ProcessDidExit {
		t.Fatalf("error = %v, want code %v", err, errors.ProcessDidExit)
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("error = %v, want the child's exit code", err)
	}

	// The transport is terminal after an observed exit
	if _, err := transport.SendAndWait(&req); errors.CodeOf(err) != errors.TransportClosed {
		t.Errorf("error after exit = %v, want code %v", err, errors.TransportClosed)
	}
	if transport.State() != StateTerminated {
		t.Errorf("State() = %v, want %v", transport.State(), StateTerminated)
	}
}

func TestChildProcessTransportDecodeFailure(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
read line
printf 'this is not json\n'
cat >/dev/null
`)

	transport, err := NewChildProcessTransport(script, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}
	defer transport.Close()

	if _, err := transport.SendAndWait(nil); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	req := wire.NewTopicRequest("doc://com.example.Docs/Foo")
	_, err = transport.SendAndWait(&req)
	if errors.CodeOf(err) != errors.ResponseDecodeFailed {
		t.Fatalf("error = %v, want code %v", err, errors.ResponseDecodeFailed)
	}

	be := err.(*errors.BridgeError)
	if details, _ := be.Details.(string); !strings.Contains(details, "not json") {
		t.Errorf("Details = %v, want the raw reply bytes", be.Details)
	}
}

func TestChildProcessTransportDrainsStderr(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
i=0
while [ $i -lt 10000 ]; do
  echo "noise $i" 1>&2
  i=$((i+1))
done
printf '{"bundleIdentifier":"com.example.Docs"}\n'
cat >/dev/null
`)

	var mu sync.Mutex
	var collected strings.Builder
	handler := func(chunk string) {
		mu.Lock()
		defer mu.Unlock()
		collected.WriteString(chunk)
	}

	transport, err := NewChildProcessTransport(script, nil, handler, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}
	defer transport.Close()

	// The stderr flood exceeds the pipe buffer; the handshake still arrives
	// because the drainer runs independently of the response stream
	if _, err := transport.SendAndWait(nil); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := strings.Contains(collected.String(), "noise 9999")
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("stderr drainer never delivered the child's final chunk")
}

func TestChildProcessTransportCloseIsIdempotent(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
cat >/dev/null
`)

	transport, err := NewChildProcessTransport(script, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}

	if err := transport.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	req := wire.NewTopicRequest("doc://com.example.Docs/Foo")
	if _, err := transport.SendAndWait(&req); errors.CodeOf(err) != errors.TransportClosed {
		t.Errorf("SendAndWait after Close = %v, want code %v", err, errors.TransportClosed)
	}
}

func TestChildProcessTransportUnknownResponseKind(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "resolver", `
printf '{"bundleIdentifier":"com.example.Docs"}\n'
read line
printf '{"surprise":true}\n'
cat >/dev/null
`)

	transport, err := NewChildProcessTransport(script, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChildProcessTransport failed: %v", err)
	}
	defer transport.Close()

	if _, err := transport.SendAndWait(nil); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	req := wire.NewTopicRequest("doc://com.example.Docs/Foo")
	_, err = transport.SendAndWait(&req)
	if errors.CodeOf(err) != errors.InvalidResponseKind {
		t.Errorf("error = %v, want code %v", err, errors.InvalidResponseKind)
	}
}
