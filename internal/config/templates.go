package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "config":
		return configTemplate, nil
	case "declarations":
		return declarationsTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const configTemplate = `declarations_dir = "/etc/rotorctl/rotor.d"
output_path = "/etc/rotorctl/rotor.conf"
journal_path = "/var/lib/rotorctl/journal.db"

[tool]
path = "/usr/sbin/logrotate"
flags = ["--state", "/var/lib/rotorctl/state"]
runner = "local"
guard_foreign_process = false

[schedule]
interval = "1h"
watch = true
debounce_ms = 500

[admin]
addr = ""
auth_token = ""
cors_origins = ["http://localhost:3000"]
`

const declarationsTemplate = `global_extra = """
dateext
"""

[paths.example]
path = "/var/log/example/*.log"
frequency = "daily"
keep = 20
priority = 1000
extra_config = """
compress
delaycompress
"""
`
