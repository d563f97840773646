// Package daemoncfg reads the tunneling daemon's own YAML configuration so
// the dashboard can display which tunnel the host runs and where its
// ingress rules point. The file is owned by the daemon; this package only
// ever reads it.
package daemoncfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IngressRule maps one hostname (or the catch-all) to a local service.
type IngressRule struct {
	Hostname string `yaml:"hostname" json:"hostname,omitempty"`
	Path     string `yaml:"path" json:"path,omitempty"`
	Service  string `yaml:"service" json:"service"`
}

// Config is the subset of the daemon's config file the console cares
// about. Unknown keys are ignored.
type Config struct {
	Tunnel          string        `yaml:"tunnel" json:"tunnel"`
	CredentialsFile string        `yaml:"credentials-file" json:"credentials_file,omitempty"`
	Ingress         []IngressRule `yaml:"ingress" json:"ingress"`
}

// Load parses the daemon config at path. A missing file is not an error:
// it returns an empty Config, since running the console on a host without
// a configured daemon is a normal state.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read daemon config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse daemon config: %w", err)
	}
	return &cfg, nil
}
