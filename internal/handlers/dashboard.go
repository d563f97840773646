package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/tunneldeck/tunneldeck/internal/config"
	"github.com/tunneldeck/tunneldeck/internal/daemoncfg"
	"github.com/tunneldeck/tunneldeck/internal/database"
	"github.com/tunneldeck/tunneldeck/internal/metrics"
	"github.com/tunneldeck/tunneldeck/internal/tunnel"
)

//go:embed templates/index.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type dashboardData struct {
	Authenticated bool
	InProgress    bool
	Metrics       metrics.Snapshot
	Tunnels       []tunnel.Tunnel
	Ingress       *daemoncfg.Config
	Actions       []database.ActionLog
}

// Dashboard renders the console page with the current auth state, host
// metrics and tunnel inventory.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := dashboardData{
		Authenticated: Manager.IsAuthenticated(ctx),
		InProgress:    Manager.AuthInProgress(),
		Metrics:       Metrics.Collect(ctx),
		Tunnels:       Manager.List(ctx),
	}

	if ingress, err := daemoncfg.Load(config.Cfg.DaemonConfigPath); err == nil {
		data.Ingress = ingress
	}
	if database.DB != nil {
		if actions, err := database.RecentActions(20); err == nil {
			data.Actions = actions
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		log.Printf("render dashboard: %v", err)
	}
}
