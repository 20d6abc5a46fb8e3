package transport

import (
	"io"
	"os"
	"os/exec"
	"sync"

	"docbridge/internal/errors"
	"docbridge/internal/logging"
	"docbridge/internal/wire"
)

// stderrChunkSize is the read size for the stderr drainer
const stderrChunkSize = 4096

// ChildProcessTransport talks to a resolver executable it spawns and owns.
// It holds the write end of the child's stdin and the read ends of stdout
// and stderr; stdout carries responses, stderr is drained concurrently so a
// chatty child can never deadlock the response stream.
type ChildProcessTransport struct {
	path string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	reader *wire.LineReader

	errorHandler ErrorHandler
	logger       *logging.Logger

	// mu serializes SendAndWait and protects state
	mu    sync.Mutex
	state State

	// stderrDone is closed when the stderr drainer exits
	stderrDone chan struct{}

	// waitOnce guards reaping the child; exitCode is valid afterwards
	waitOnce sync.Once
	exitCode int
}

// NewChildProcessTransport verifies the resolver executable, spawns it with
// three fresh pipes, and starts the stderr drainer. Construction is scoped:
// a failure at any step releases everything acquired before it.
func NewChildProcessTransport(path string, args []string, errorHandler ErrorHandler, logger *logging.Logger) (*ChildProcessTransport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewMissingResolver(path)
	}
	if info.IsDir() || info.Mode()&0111 == 0 {
		return nil, errors.NewResolverNotExecutable(path)
	}

	cmd := exec.Command(path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewSpawnFailed("unable to open stdin pipe to resolver", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, errors.NewSpawnFailed("unable to open stdout pipe to resolver", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, errors.NewSpawnFailed("unable to open stderr pipe to resolver", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, errors.NewSpawnFailed("unable to start resolver process", err)
	}

	t := &ChildProcessTransport{
		path:         path,
		cmd:          cmd,
		stdin:        stdin,
		stdout:       stdout,
		stderr:       stderr,
		reader:       wire.NewLineReader(stdout),
		errorHandler: errorHandler,
		logger:       logger,
		state:        StateRunning,
		stderrDone:   make(chan struct{}),
	}

	go t.drainStderr()

	if logger != nil {
		logger.Debug("Started external reference resolver", map[string]interface{}{
			"path": path,
			"pid":  cmd.Process.Pid,
		})
	}

	return t, nil
}

// drainStderr continuously reads the child's stderr and hands each chunk to
// the error handler. It runs independently of request traffic so stderr
// backpressure cannot stall stdout reads.
func (t *ChildProcessTransport) drainStderr() {
	defer close(t.stderrDone)

	buf := make([]byte, stderrChunkSize)
	for {
		n, err := t.stderr.Read(buf)
		if n > 0 && t.errorHandler != nil {
			t.errorHandler(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// SendAndWait encodes and writes one request line, then reads and decodes
// one response line. A nil request skips the write and reads the handshake.
func (t *ChildProcessTransport) SendAndWait(req *wire.Request) (wire.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return wire.Response{}, errors.NewTransportClosed()
	}

	if req != nil {
		line, err := wire.EncodeRequest(*req)
		if err != nil {
			return wire.Response{}, errors.NewRequestEncodeFailed(req.Description(), err)
		}
		if _, err := t.stdin.Write(line); err != nil {
			// A failed write means the child is gone; report its exit code.
			code := t.terminateLocked()
			return wire.Response{}, errors.NewProcessDidExit(code)
		}
	}

	line, err := t.reader.ReadLine()
	if err != nil {
		if err == io.EOF {
			code := t.terminateLocked()
			return wire.Response{}, errors.NewProcessDidExit(code)
		}
		return wire.Response{}, errors.NewResponseDecodeFailed(nil, err)
	}

	resp, err := wire.DecodeResponse(line)
	if err != nil {
		if wire.IsUnknownKind(err) {
			return wire.Response{}, errors.NewInvalidResponseKind()
		}
		return wire.Response{}, errors.NewResponseDecodeFailed(line, err)
	}
	return resp, nil
}

// State returns the transport's lifecycle state
func (t *ChildProcessTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Close terminates the child, cancels the stderr drain, and closes all pipe
// ends, in that order. Termination is best-effort and idempotent; Running to
// Terminated is irreversible.
func (t *ChildProcessTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateTerminated {
		return nil
	}
	t.terminateLocked()
	return nil
}

// terminateLocked kills and reaps the child, releases the pipes, and marks
// the transport terminated. Returns the child's exit code. Callers hold mu.
func (t *ChildProcessTransport) terminateLocked() int {
	t.state = StateTerminated

	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}

	t.waitOnce.Do(func() {
		// Wait reaps the child and closes the pipes it created; the stderr
		// drainer exits on the resulting read error.
		err := t.cmd.Wait()
		if t.cmd.ProcessState != nil {
			t.exitCode = t.cmd.ProcessState.ExitCode()
		} else if err != nil {
			t.exitCode = -1
		}
	})

	<-t.stderrDone

	t.stdin.Close()
	t.stdout.Close()
	t.stderr.Close()

	if t.logger != nil {
		t.logger.Debug("Terminated external reference resolver", map[string]interface{}{
			"path":     t.path,
			"exitCode": t.exitCode,
		})
	}

	return t.exitCode
}
