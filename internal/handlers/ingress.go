package handlers

import (
	"net/http"

	"github.com/tunneldeck/tunneldeck/internal/config"
	"github.com/tunneldeck/tunneldeck/internal/daemoncfg"
)

// GetIngress returns the daemon's configured tunnel and ingress rules. A
// host without a daemon config yields an empty config, not an error.
func GetIngress(w http.ResponseWriter, r *http.Request) {
	cfg, err := daemoncfg.Load(config.Cfg.DaemonConfigPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
