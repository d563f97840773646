package tunnel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tunneldeck/tunneldeck/internal/database"
	"github.com/tunneldeck/tunneldeck/internal/executor"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeCall struct {
	args    []string
	timeout time.Duration
	stream  bool
}

// fakeRunner is a scripted executor.Runner. Outcomes are keyed by the
// joined argument list; unscripted commands fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls []fakeCall

	results map[string]executor.Outcome

	// streamLines are delivered to onLine before Stream returns.
	streamLines []string
	// streamRelease, when non-nil, blocks Stream until closed.
	streamRelease chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string]executor.Outcome)}
}

func (f *fakeRunner) set(out executor.Outcome, args ...string) {
	f.results[strings.Join(args, " ")] = out
}

func (f *fakeRunner) lookup(args []string) executor.Outcome {
	if out, ok := f.results[strings.Join(args, " ")]; ok {
		return out
	}
	return executor.Outcome{Success: false, Stderr: "no scripted outcome for: " + strings.Join(args, " "), ExitCode: 1}
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, args ...string) executor.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{args: args, timeout: timeout})
	out := f.lookup(args)
	f.mu.Unlock()
	return out
}

func (f *fakeRunner) Stream(ctx context.Context, timeout time.Duration, onLine func(string), args ...string) executor.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{args: args, timeout: timeout, stream: true})
	lines := f.streamLines
	release := f.streamRelease
	out := f.lookup(args)
	f.mu.Unlock()

	for _, l := range lines {
		onLine(l)
	}
	if release != nil {
		<-release
	}
	return out
}

func (f *fakeRunner) callArgs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.args
	}
	return out
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) streamCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.stream {
			n++
		}
	}
	return n
}

// writeCert drops a dummy credential artifact in a temp dir and returns
// its path.
func writeCert(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cert.pem")
	if err := os.WriteFile(path, []byte("-----BEGIN CERTIFICATE-----\n"), 0600); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	return path
}

// missingCert returns a path that does not exist.
func missingCert(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cert.pem")
}

func newTestManager(t *testing.T, f executor.Runner, certPath string) *Manager {
	t.Helper()
	return NewManager(f, Config{
		CertPath:       certPath,
		CommandTimeout: 5 * time.Second,
		LoginTimeout:   5 * time.Second,
		ResponseDelay:  10 * time.Millisecond,
	})
}

// authenticate scripts a passing verification probe.
func authenticate(f *fakeRunner) {
	f.set(executor.Outcome{Success: true, Stdout: "[]", ExitCode: 0}, "tunnel", "list", "--output", "json")
}

// setupTestDB points the package-level gorm handle at a fresh in-memory
// database and restores the previous handle on cleanup.
func setupTestDB(t *testing.T) {
	t.Helper()
	prev := database.DB
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&database.Setting{}, &database.ActionLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = prev
	})
}

// waitForIdle polls until no login flow is in progress.
func waitForIdle(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !m.AuthInProgress() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("login flow never finished")
}
