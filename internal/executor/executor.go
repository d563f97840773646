// Package executor runs daemon CLI commands and reports their outcome as a
// plain value. A non-zero exit from the invoked program is a normal outcome,
// not an error: callers branch on Outcome.Success only.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds ordinary daemon commands. Login flows use a much
// longer caller-supplied timeout.
const DefaultTimeout = 30 * time.Second

// Outcome is the immutable result of one subprocess invocation. Executor
// failures (spawn errors, timeouts) are folded into the same shape with
// Success=false and a descriptive Stderr.
type Outcome struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts subprocess execution of the tunneling daemon CLI so
// tests can substitute a fake.
type Runner interface {
	// Run executes the daemon binary with args and waits for completion
	// or timeout, whichever comes first.
	Run(ctx context.Context, timeout time.Duration, args ...string) Outcome

	// Stream is Run with stdout delivered line-by-line via onLine while
	// the process executes. Used by the login flow to pick up the
	// provider-issued authorization URL before the command finishes.
	Stream(ctx context.Context, timeout time.Duration, onLine func(string), args ...string) Outcome
}

// CLI runs a real daemon binary. The zero value is not usable; construct
// with New.
type CLI struct {
	Bin string
}

func New(bin string) *CLI {
	return &CLI{Bin: bin}
}

func (c *CLI) Run(ctx context.Context, timeout time.Duration, args ...string) Outcome {
	return c.run(ctx, timeout, nil, args)
}

func (c *CLI) Stream(ctx context.Context, timeout time.Duration, onLine func(string), args ...string) Outcome {
	if onLine == nil {
		onLine = func(string) {}
	}
	return c.run(ctx, timeout, onLine, args)
}

func (c *CLI) run(ctx context.Context, timeout time.Duration, onLine func(string), args []string) Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stderr = &stderr

	if onLine == nil {
		cmd.Stdout = &stdout
		err := cmd.Run()
		return c.outcome(runCtx, timeout, args, stdout.String(), stderr.String(), err)
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailure(c.Bin, args, fmt.Errorf("create stdout pipe: %w", err))
	}
	if err := cmd.Start(); err != nil {
		return spawnFailure(c.Bin, args, err)
	}

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		stdout.WriteString(line)
		stdout.WriteByte('\n')
		onLine(line)
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the process does not block on a full pipe
		// and get mislabeled as a timeout.
		io.Copy(io.Discard, pipe)
	}

	err = cmd.Wait()
	out := c.outcome(runCtx, timeout, args, stdout.String(), stderr.String(), err)
	if scanErr != nil {
		out.Success = false
		if out.Stderr != "" {
			out.Stderr += "\n"
		}
		out.Stderr += fmt.Sprintf("read stdout: %v", scanErr)
		if out.ExitCode == 0 {
			out.ExitCode = -1
		}
	}
	return out
}

func (c *CLI) outcome(runCtx context.Context, timeout time.Duration, args []string, stdout, stderr string, err error) Outcome {
	if runCtx.Err() == context.DeadlineExceeded {
		return Outcome{
			Success:  false,
			Stdout:   stdout,
			Stderr:   fmt.Sprintf("command %q timed out after %s", commandLine(c.Bin, args), timeout),
			ExitCode: -1,
		}
	}

	if err == nil {
		return Outcome{Success: true, Stdout: stdout, Stderr: stderr, ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Outcome{
			Success:  false,
			Stdout:   stdout,
			Stderr:   stderr,
			ExitCode: exitErr.ExitCode(),
		}
	}

	return spawnFailure(c.Bin, args, err)
}

func spawnFailure(bin string, args []string, err error) Outcome {
	return Outcome{
		Success:  false,
		Stderr:   fmt.Sprintf("failed to run %q: %v", commandLine(bin, args), err),
		ExitCode: -1,
	}
}

func commandLine(bin string, args []string) string {
	return strings.TrimSpace(bin + " " + strings.Join(args, " "))
}
