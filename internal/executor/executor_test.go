package executor

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	c := New("sh")
	out := c.Run(context.Background(), 5*time.Second, "-c", "echo hello")

	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if got := strings.TrimSpace(out.Stdout); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
	if out.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", out.ExitCode)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	c := New("sh")
	out := c.Run(context.Background(), 5*time.Second, "-c", "echo oops >&2; exit 3")

	if out.Success {
		t.Fatal("expected failure outcome")
	}
	if out.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", out.ExitCode)
	}
	if got := strings.TrimSpace(out.Stderr); got != "oops" {
		t.Errorf("stderr = %q, want %q", got, "oops")
	}
}

func TestRunTimeout(t *testing.T) {
	c := New("sh")
	start := time.Now()
	out := c.Run(context.Background(), 100*time.Millisecond, "-c", "sleep 5")

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("run blocked for %s past its timeout", elapsed)
	}
	if out.Success {
		t.Fatal("expected failure outcome on timeout")
	}
	if !strings.Contains(out.Stderr, "timed out") {
		t.Errorf("stderr = %q, want a timeout message", out.Stderr)
	}
	if out.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", out.ExitCode)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	c := New("/nonexistent/definitely-not-a-binary")
	out := c.Run(context.Background(), time.Second, "whatever")

	if out.Success {
		t.Fatal("expected failure outcome")
	}
	if !strings.Contains(out.Stderr, "failed to run") {
		t.Errorf("stderr = %q, want a spawn failure message", out.Stderr)
	}
	if out.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", out.ExitCode)
	}
}

func TestStreamDeliversLinesInOrder(t *testing.T) {
	c := New("sh")
	var lines []string
	out := c.Stream(context.Background(), 5*time.Second, func(line string) {
		lines = append(lines, line)
	}, "-c", "printf 'first\\nsecond\\nthird\\n'")

	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	want := []string{"first", "second", "third"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i, l := range want {
		if lines[i] != l {
			t.Errorf("line %d = %q, want %q", i, lines[i], l)
		}
	}
	if !strings.Contains(out.Stdout, "second") {
		t.Errorf("stdout %q should contain streamed output", out.Stdout)
	}
}

func TestStreamOversizedLineSurfacesScanError(t *testing.T) {
	c := New("sh")
	start := time.Now()
	// A single 2MB line overflows the scanner's 1MB max token size.
	out := c.Stream(context.Background(), 10*time.Second, func(string) {},
		"-c", "head -c 2000000 /dev/zero | tr '\\0' a; echo")

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("stream blocked for %s on an oversized line", elapsed)
	}
	if out.Success {
		t.Fatal("expected failure outcome when scanning aborts")
	}
	if !strings.Contains(out.Stderr, "read stdout") {
		t.Errorf("stderr = %q, want a read error message", out.Stderr)
	}
	if strings.Contains(out.Stderr, "timed out") {
		t.Errorf("stderr = %q, scan abort must not be reported as a timeout", out.Stderr)
	}
	if out.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", out.ExitCode)
	}
}

func TestZeroTimeoutUsesDefault(t *testing.T) {
	c := New("sh")
	out := c.Run(context.Background(), 0, "-c", "true")
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
}
