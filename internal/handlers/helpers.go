package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tunneldeck/tunneldeck/internal/metrics"
	"github.com/tunneldeck/tunneldeck/internal/tunnel"
)

// Package-level collaborators, wired from main at startup.
var (
	Manager *tunnel.Manager
	Metrics *metrics.Collector
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

func writeResult(w http.ResponseWriter, res tunnel.Result) {
	writeJSON(w, http.StatusOK, res)
}
