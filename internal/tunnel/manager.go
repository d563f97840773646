// Package tunnel supervises named tunnels exposed through the tunneling
// daemon CLI: it tracks provider authentication state, owns the
// single-flight background login flow, and wraps the daemon's tunnel
// lifecycle commands behind uniform results.
package tunnel

import (
	"context"
	"log"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tunneldeck/tunneldeck/internal/database"
	"github.com/tunneldeck/tunneldeck/internal/executor"
)

// FallbackLoginURL is offered to the operator when the daemon has not
// printed its one-time authorization URL yet (or never does).
const FallbackLoginURL = "https://dash.cloudflare.com/argotunnel"

// Config carries Manager construction parameters. Zero durations fall back
// to sensible defaults.
type Config struct {
	// CertPath is the provider credential artifact. Its presence is a
	// necessary (not sufficient) authentication signal.
	CertPath string

	// CommandTimeout bounds ordinary daemon commands.
	CommandTimeout time.Duration

	// LoginTimeout bounds the interactive login command.
	LoginTimeout time.Duration

	// ResponseDelay is how long StartLogin waits for the background
	// login to print its authorization URL before responding.
	ResponseDelay time.Duration
}

// Manager is the tunnel supervisor. One instance is constructed at startup
// and shared by all requests; it owns the only cross-request mutable state
// in the system (the login single-flight flag and captured login URL).
type Manager struct {
	runner         executor.Runner
	certPath       string
	commandTimeout time.Duration
	loginTimeout   time.Duration
	responseDelay  time.Duration

	mu             sync.Mutex
	authInProgress bool
	loginURL       string // first URL printed by the in-flight login, if any
}

func NewManager(runner executor.Runner, cfg Config) *Manager {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = executor.DefaultTimeout
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 5 * time.Minute
	}
	if cfg.ResponseDelay <= 0 {
		cfg.ResponseDelay = 1500 * time.Millisecond
	}
	return &Manager{
		runner:         runner,
		certPath:       cfg.CertPath,
		commandTimeout: cfg.CommandTimeout,
		loginTimeout:   cfg.LoginTimeout,
		responseDelay:  cfg.ResponseDelay,
	}
}

// IsAuthenticated reports whether the operator currently holds a valid
// provider credential. The filesystem probe short-circuits the (more
// expensive) daemon verification when the artifact is absent. Never
// returns an error: anything that goes wrong reads as unauthenticated.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	if _, err := os.Stat(m.certPath); err != nil {
		return false
	}
	out := m.runner.Run(ctx, m.commandTimeout, "tunnel", "list", "--output", "json")
	return out.Success
}

// AuthInProgress reports whether a background login flow is currently
// executing.
func (m *Manager) AuthInProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authInProgress
}

// LoginStatus is the response to a login request.
type LoginStatus struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
	AuthURL string `json:"auth_url"`
}

// StartLogin launches the provider login flow in the background and
// returns without waiting for it. At most one login flow runs at a time:
// a second call while one is active reports "already in progress" and
// repeats the same authorization URL instead of spawning another process.
func (m *Manager) StartLogin(ctx context.Context) LoginStatus {
	m.mu.Lock()
	if m.authInProgress {
		url := m.loginURL
		m.mu.Unlock()
		if url == "" {
			url = FallbackLoginURL
		}
		return LoginStatus{
			Started: false,
			Message: "a login flow is already in progress; complete it in your browser",
			AuthURL: url,
		}
	}
	m.authInProgress = true
	m.loginURL = ""
	m.mu.Unlock()

	flowID := uuid.NewString()
	go m.runLogin(flowID)

	// Give the daemon a moment to print its one-time authorization URL
	// so the response can carry the real thing instead of the fallback.
	select {
	case <-time.After(m.responseDelay):
	case <-ctx.Done():
	}

	m.mu.Lock()
	url := m.loginURL
	m.mu.Unlock()
	if url == "" {
		url = FallbackLoginURL
	}
	return LoginStatus{
		Started: true,
		Message: "login started; open the authorization URL in your browser",
		AuthURL: url,
	}
}

// runLogin executes the login command to completion. It runs detached from
// the triggering request: the HTTP response returns long before this does,
// and there is no way to cancel it once started.
func (m *Manager) runLogin(flowID string) {
	defer func() {
		m.mu.Lock()
		m.authInProgress = false
		m.mu.Unlock()
	}()

	log.Printf("[auth] login flow %s started", flowID)
	out := m.runner.Stream(context.Background(), m.loginTimeout, m.captureLoginURL, "tunnel", "login")

	if out.Success {
		log.Printf("[auth] login flow %s completed", flowID)
		m.recordAuthCache(true)
	} else {
		log.Printf("[auth] login flow %s failed: %s", flowID, providerMessage(out.Stderr, "login command failed"))
	}
	m.logAction(&database.ActionLog{
		FlowID:  flowID,
		Action:  "login",
		Success: out.Success,
		Message: providerMessage(out.Stderr, ""),
	})
}

var urlPattern = regexp.MustCompile(`https://[^\s"']+`)

// captureLoginURL scans login stdout for the first authorization URL the
// daemon prints and stashes it for StartLogin responses.
func (m *Manager) captureLoginURL(line string) {
	u := urlPattern.FindString(line)
	if u == "" {
		return
	}
	m.mu.Lock()
	if m.loginURL == "" {
		m.loginURL = u
	}
	m.mu.Unlock()
}

// RefreshAuthCache re-verifies authentication and refreshes the advisory
// cache. Run periodically from main; the cache is never authoritative.
func (m *Manager) RefreshAuthCache(ctx context.Context) {
	m.recordAuthCache(m.IsAuthenticated(ctx))
}

func (m *Manager) recordAuthCache(authenticated bool) {
	if database.DB == nil {
		return
	}
	if err := database.RecordAuthState(authenticated); err != nil {
		log.Printf("[auth] failed to refresh advisory auth cache: %v", err)
	}
}

func (m *Manager) logAction(entry *database.ActionLog) {
	if database.DB == nil {
		return
	}
	if entry.FlowID == "" {
		entry.FlowID = uuid.NewString()
	}
	if err := database.RecordAction(entry); err != nil {
		log.Printf("failed to record %s action: %v", entry.Action, err)
	}
}
