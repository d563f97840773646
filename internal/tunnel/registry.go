package tunnel

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/tunneldeck/tunneldeck/internal/database"
	"github.com/tunneldeck/tunneldeck/internal/logutil"
)

// namePattern gates tunnel names after normalization. The provider rejects
// anything fancier anyway; catching it here avoids a pointless subprocess.
var namePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// normalizeName trims, lowercases and replaces spaces with hyphens so
// "Prod App" becomes the provider-acceptable "prod-app".
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

func normalizeHostname(hostname string) string {
	return strings.ToLower(strings.TrimSpace(hostname))
}

// List returns the provider's current tunnel inventory. It fails open to
// an empty slice — unauthenticated state, a failing daemon command and
// unparsable output all degrade to "no tunnels" so the console stays up.
func (m *Manager) List(ctx context.Context) []Tunnel {
	if !m.IsAuthenticated(ctx) {
		return []Tunnel{}
	}

	out := m.runner.Run(ctx, m.commandTimeout, "tunnel", "list", "--output", "json")
	if !out.Success {
		log.Printf("tunnel list failed: %s", logutil.SanitizeForLog(providerMessage(out.Stderr, "unknown error")))
		return []Tunnel{}
	}

	tunnels, err := parseTunnelList(out.Stdout)
	if err != nil {
		log.Printf("tunnel list returned unparsable output: %v", err)
		return []Tunnel{}
	}
	return tunnels
}

// Create registers a new named tunnel with the provider.
func (m *Manager) Create(ctx context.Context, name string) Result {
	normalized := normalizeName(name)
	if normalized == "" {
		return validationResult("tunnel name is required")
	}
	if !namePattern.MatchString(normalized) {
		return validationResult(fmt.Sprintf("invalid tunnel name %q: only letters, digits, hyphens and underscores are allowed", normalized))
	}
	if !m.IsAuthenticated(ctx) {
		return authRequiredResult()
	}

	out := m.runner.Run(ctx, m.commandTimeout, "tunnel", "create", normalized)

	var res Result
	if out.Success {
		res = okResult(fmt.Sprintf("tunnel %q created", normalized))
	} else {
		res = providerResult(providerMessage(out.Stderr, fmt.Sprintf("failed to create tunnel %q", normalized)))
	}
	m.logAction(&database.ActionLog{
		Action:     "create",
		TunnelName: normalized,
		Success:    res.Success,
		Message:    res.Message,
	})
	return res
}

// Delete removes a named tunnel. A best-effort cleanup of stale connector
// state runs first; its failure never blocks the delete itself, and the
// result reflects only the delete step.
func (m *Manager) Delete(ctx context.Context, name string) Result {
	normalized := normalizeName(name)
	if normalized == "" {
		return validationResult("tunnel name is required")
	}
	if !namePattern.MatchString(normalized) {
		return validationResult(fmt.Sprintf("invalid tunnel name %q: only letters, digits, hyphens and underscores are allowed", normalized))
	}
	if !m.IsAuthenticated(ctx) {
		return authRequiredResult()
	}

	if cleanup := m.runner.Run(ctx, m.commandTimeout, "tunnel", "cleanup", normalized); !cleanup.Success {
		log.Printf("cleanup before delete of %q failed (continuing): %s",
			logutil.SanitizeForLog(normalized), logutil.SanitizeForLog(providerMessage(cleanup.Stderr, "unknown error")))
	}

	out := m.runner.Run(ctx, m.commandTimeout, "tunnel", "delete", normalized, "--force")

	var res Result
	if out.Success {
		res = okResult(fmt.Sprintf("tunnel %q deleted", normalized))
	} else {
		res = providerResult(providerMessage(out.Stderr, fmt.Sprintf("failed to delete tunnel %q", normalized)))
	}
	m.logAction(&database.ActionLog{
		Action:     "delete",
		TunnelName: normalized,
		Success:    res.Success,
		Message:    res.Message,
	})
	return res
}

// RouteDNS binds a hostname to a tunnel via the provider's DNS routing.
func (m *Manager) RouteDNS(ctx context.Context, tunnelName, hostname string) Result {
	normalized := normalizeName(tunnelName)
	host := normalizeHostname(hostname)
	if normalized == "" {
		return validationResult("tunnel name is required")
	}
	if host == "" {
		return validationResult("hostname is required")
	}
	if !namePattern.MatchString(normalized) {
		return validationResult(fmt.Sprintf("invalid tunnel name %q: only letters, digits, hyphens and underscores are allowed", normalized))
	}
	if !m.IsAuthenticated(ctx) {
		return authRequiredResult()
	}

	out := m.runner.Run(ctx, m.commandTimeout, "tunnel", "route", "dns", normalized, host)

	var res Result
	if out.Success {
		res = okResult(fmt.Sprintf("hostname %q routed to tunnel %q", host, normalized))
	} else {
		res = providerResult(providerMessage(out.Stderr, fmt.Sprintf("failed to route %q to tunnel %q", host, normalized)))
	}
	m.logAction(&database.ActionLog{
		Action:     "route",
		TunnelName: normalized,
		Hostname:   host,
		Success:    res.Success,
		Message:    res.Message,
	})
	return res
}
