package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the rotorctl daemon configuration.
type Config struct {
	DeclarationsDir string `toml:"declarations_dir"`
	OutputPath      string `toml:"output_path"`
	JournalPath     string `toml:"journal_path"`

	Tool     ToolConfig     `toml:"tool"`
	Schedule ScheduleConfig `toml:"schedule"`
	Admin    AdminConfig    `toml:"admin"`
}

// ToolConfig describes the external rotation tool and where it runs.
type ToolConfig struct {
	Path                string    `toml:"path"`
	Flags               []string  `toml:"flags"`
	Runner              string    `toml:"runner"`
	GuardForeignProcess bool      `toml:"guard_foreign_process"`
	SSH                 SSHConfig `toml:"ssh"`
}

type SSHConfig struct {
	Host                        string `toml:"host"`
	Port                        string `toml:"port"`
	User                        string `toml:"user"`
	KeyPath                     string `toml:"key_path"`
	KnownHostsPath              string `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool   `toml:"insecure_skip_host_key_checking"`
	TimeoutSeconds              int    `toml:"timeout_seconds"`
}

type ScheduleConfig struct {
	Interval   string `toml:"interval"`
	Watch      bool   `toml:"watch"`
	DebounceMS int    `toml:"debounce_ms"`
}

type AdminConfig struct {
	Addr        string   `toml:"addr"`
	AuthToken   string   `toml:"auth_token"`
	CorsOrigins []string `toml:"cors_origins"`
}

func DefaultConfig() Config {
	return Config{
		DeclarationsDir: "/etc/rotorctl/rotor.d",
		OutputPath:      "/etc/rotorctl/rotor.conf",
		Tool: ToolConfig{
			Path:   "/usr/sbin/logrotate",
			Runner: "local",
		},
		Schedule: ScheduleConfig{
			Interval:   "1h",
			DebounceMS: 500,
		},
	}
}

func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg = cfg.WithDefaults()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefaults backfills anything the file left empty.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if strings.TrimSpace(c.DeclarationsDir) == "" {
		c.DeclarationsDir = d.DeclarationsDir
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		c.OutputPath = d.OutputPath
	}
	if strings.TrimSpace(c.Tool.Path) == "" {
		c.Tool.Path = d.Tool.Path
	}
	if strings.TrimSpace(c.Tool.Runner) == "" {
		c.Tool.Runner = d.Tool.Runner
	}
	if strings.TrimSpace(c.Schedule.Interval) == "" {
		c.Schedule.Interval = d.Schedule.Interval
	}
	if c.Schedule.DebounceMS <= 0 {
		c.Schedule.DebounceMS = d.Schedule.DebounceMS
	}
	return c
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.DeclarationsDir) == "" {
		return fmt.Errorf("config missing declarations_dir")
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return fmt.Errorf("config missing output_path")
	}
	if strings.TrimSpace(cfg.Tool.Path) == "" {
		return fmt.Errorf("config missing tool.path")
	}
	switch strings.TrimSpace(cfg.Tool.Runner) {
	case "local":
	case "ssh":
		if strings.TrimSpace(cfg.Tool.SSH.Host) == "" {
			return fmt.Errorf("tool.ssh.host required when tool.runner is ssh")
		}
		if strings.TrimSpace(cfg.Tool.SSH.User) == "" {
			return fmt.Errorf("tool.ssh.user required when tool.runner is ssh")
		}
		if strings.TrimSpace(cfg.Tool.SSH.KeyPath) == "" {
			return fmt.Errorf("tool.ssh.key_path required when tool.runner is ssh")
		}
	default:
		return fmt.Errorf("unknown tool runner: %s", cfg.Tool.Runner)
	}
	if d, err := time.ParseDuration(cfg.Schedule.Interval); err != nil || d <= 0 {
		return fmt.Errorf("invalid schedule interval: %q", cfg.Schedule.Interval)
	}
	return nil
}

// IntervalDuration falls back to hourly when the configured interval is
// unusable, so a running daemon never ends up without a cadence.
func (c ScheduleConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

func (c ScheduleConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
