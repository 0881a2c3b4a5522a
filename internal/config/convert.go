package config

import (
	"time"

	"github.com/rotorlabs/rotorctl/internal/rotate"
)

// ToolRunner builds the runner the tool config asks for. Validate has
// already rejected unknown runner names and incomplete ssh settings.
func ToolRunner(cfg ToolConfig) rotate.Runner {
	if cfg.Runner == "ssh" {
		return rotate.SSHRunner{
			Host:                        cfg.SSH.Host,
			Port:                        cfg.SSH.Port,
			User:                        cfg.SSH.User,
			KeyPath:                     cfg.SSH.KeyPath,
			KnownHostsPath:              cfg.SSH.KnownHostsPath,
			InsecureSkipHostKeyChecking: cfg.SSH.InsecureSkipHostKeyChecking,
			Timeout:                     time.Duration(cfg.SSH.TimeoutSeconds) * time.Second,
		}
	}
	return rotate.LocalRunner{}
}
