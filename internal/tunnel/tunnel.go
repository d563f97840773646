package tunnel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tunnel is one entry from the provider's tunnel inventory. It is never
// cached here: every listing is a fresh query against the daemon.
type Tunnel struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Connections int        `json:"connections"`
}

// providerTunnel mirrors the daemon's `tunnel list --output json` entries.
// Deleted tunnels still appear in the output with deleted_at set.
type providerTunnel struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	CreatedAt   *time.Time        `json:"created_at"`
	DeletedAt   *time.Time        `json:"deleted_at"`
	Connections []json.RawMessage `json:"connections"`
}

func parseTunnelList(raw string) ([]Tunnel, error) {
	var entries []providerTunnel
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse tunnel list: %w", err)
	}

	tunnels := make([]Tunnel, 0, len(entries))
	for _, e := range entries {
		if e.DeletedAt != nil && !e.DeletedAt.IsZero() {
			continue
		}
		tunnels = append(tunnels, Tunnel{
			ID:          e.ID,
			Name:        e.Name,
			CreatedAt:   e.CreatedAt,
			Connections: len(e.Connections),
		})
	}
	return tunnels, nil
}

// providerMessage extracts a human-readable diagnostic from a failed
// command, preferring the daemon's own stderr.
func providerMessage(stderr, fallback string) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return fallback
}
