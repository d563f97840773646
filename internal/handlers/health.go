package handlers

import (
	"net/http"

	"github.com/tunneldeck/tunneldeck/internal/database"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if database.DB != nil {
		sqlDB, err := database.DB.DB()
		if err == nil {
			if err := sqlDB.Ping(); err == nil {
				dbStatus = "connected"
			}
		}
	}

	daemonStatus := "stopped"
	if Metrics != nil && Metrics.Collect(r.Context()).DaemonRunning {
		daemonStatus = "running"
	}

	status := "healthy"
	if dbStatus != "connected" {
		status = "unhealthy"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"database": dbStatus,
		"daemon":   daemonStatus,
	})
}
