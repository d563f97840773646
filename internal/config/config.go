package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":8844"`
	DataPath     string `envconfig:"DATA_PATH" default:"/var/lib/tunneldeck"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:""`
	LogPath      string `envconfig:"LOG_PATH" default:""`

	// Tunneling daemon settings
	DaemonBin        string `envconfig:"DAEMON_BIN" default:"cloudflared"`
	CertPath         string `envconfig:"CERT_PATH" default:""`
	DaemonConfigPath string `envconfig:"DAEMON_CONFIG_PATH" default:""`

	// Subprocess timeouts, parsed with time.ParseDuration at point of use
	CommandTimeout string `envconfig:"COMMAND_TIMEOUT" default:"30s"`
	LoginTimeout   string `envconfig:"LOGIN_TIMEOUT" default:"5m"`

	// How often the background job re-verifies authentication and
	// refreshes the advisory cache
	AuthRefreshInterval string `envconfig:"AUTH_REFRESH_INTERVAL" default:"10m"`

	// Optional console access gate: bcrypt hash of the shared operator
	// password. Empty disables the gate.
	PasswordHash string `envconfig:"PASSWORD_HASH" default:""`
}

var Cfg Settings

func Load() {
	if err := envconfig.Process("TUNNELDECK", &Cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if Cfg.DatabasePath == "" {
		Cfg.DatabasePath = filepath.Join(Cfg.DataPath, "tunneldeck.db")
	}
	if Cfg.LogPath == "" {
		Cfg.LogPath = filepath.Join(Cfg.DataPath, "tunneldeck.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	if Cfg.CertPath == "" {
		Cfg.CertPath = filepath.Join(home, ".cloudflared", "cert.pem")
	}
	if Cfg.DaemonConfigPath == "" {
		Cfg.DaemonConfigPath = filepath.Join(home, ".cloudflared", "config.yml")
	}
}
