package util

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// CmdSpec describes a tool invocation.
type CmdSpec struct {
	Path string
	Args []string

	// Log receives the command line and, when Verbose, every output line at
	// debug level. Nil discards.
	Log     *slog.Logger
	Verbose bool

	StdoutLine func(string) // per stdout line, optional
	StderrLine func(string) // per stderr line, optional

	// CaptureStdout buffers stdout into CmdResult even when StdoutLine is set.
	CaptureStdout bool
}

// CmdResult contains captured output and exit status.
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int
	Err    error
}

// CmdRunner runs subprocesses. Tests substitute a fake.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

type defaultRunner struct{}

// NewDefaultRunner returns a CmdRunner backed by os/exec.
func NewDefaultRunner() CmdRunner {
	return defaultRunner{}
}

func (defaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// Run starts the tool and feeds its output to the line callbacks as
// it arrives. Stderr is always kept; on a non-zero exit its last line is
// folded into the returned error.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	log := spec.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	log.Debug("exec", "cmd", shellQuote(spec.Path, spec.Args))
	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	var outBuf, errBuf bytes.Buffer
	keepOut := spec.CaptureStdout || spec.StdoutLine == nil
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stream(stdout, "stdout", spec.StdoutLine, spec.Verbose, keepOut, &outBuf, log)
	}()
	go func() {
		defer wg.Done()
		stream(stderr, "stderr", spec.StderrLine, spec.Verbose, true, &errBuf, log)
	}()
	// Both pipes must be drained before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	res := CmdResult{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes(), Err: waitErr}
	if waitErr == nil {
		return res, nil
	}
	res.Code = -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		res.Code = exitErr.ExitCode()
	}
	if last := lastLine(res.Stderr); last != "" {
		return res, fmt.Errorf("command failed (exit %d): %s: %w", res.Code, last, waitErr)
	}
	return res, fmt.Errorf("command failed (exit %d): %w", res.Code, waitErr)
}

func stream(r io.Reader, name string, fn func(string), verbose, keep bool, buf *bytes.Buffer, log *slog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if fn != nil {
			fn(line)
		}
		if verbose {
			log.Debug(line, "stream", name)
		}
		if keep {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("scan error", "stream", name, "err", err)
	}
}

func lastLine(b []byte) string {
	s := strings.TrimRight(string(b), "\r\n \t")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// shellQuote returns a printable shell-like command string for logging.
func shellQuote(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}
