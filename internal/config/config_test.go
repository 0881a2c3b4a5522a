package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotorlabs/rotorctl/internal/declare"
	"github.com/rotorlabs/rotorctl/internal/rotate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotorctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `output_path = "/srv/rotor/rotor.conf"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/rotor/rotor.conf", cfg.OutputPath)
	assert.Equal(t, "/etc/rotorctl/rotor.d", cfg.DeclarationsDir)
	assert.Equal(t, "/usr/sbin/logrotate", cfg.Tool.Path)
	assert.Equal(t, "local", cfg.Tool.Runner)
	assert.Equal(t, "1h", cfg.Schedule.Interval)
	assert.Equal(t, 500, cfg.Schedule.DebounceMS)
	assert.Empty(t, cfg.Admin.Addr, "admin server stays off unless addr is set")
}

func TestLoadReadsNestedSections(t *testing.T) {
	path := writeConfig(t, `
declarations_dir = "/etc/rotor.d"
output_path = "/etc/rotor.conf"
journal_path = "/var/lib/rotorctl/journal.db"

[tool]
path = "/usr/local/sbin/logrotate"
flags = ["--verbose"]
guard_foreign_process = true

[schedule]
interval = "30m"
watch = true
debounce_ms = 250

[admin]
addr = "127.0.0.1:9300"
cors_origins = ["http://localhost:3000"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"--verbose"}, cfg.Tool.Flags)
	assert.True(t, cfg.Tool.GuardForeignProcess)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.IntervalDuration())
	assert.Equal(t, 250*time.Millisecond, cfg.Schedule.Debounce())
	assert.True(t, cfg.Schedule.Watch)
	assert.Equal(t, "127.0.0.1:9300", cfg.Admin.Addr)
	assert.Equal(t, "/var/lib/rotorctl/journal.db", cfg.JournalPath)
}

func TestLoadRejectsUnknownRunner(t *testing.T) {
	path := writeConfig(t, `
[tool]
runner = "carrier-pigeon"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool runner")
}

func TestLoadRejectsIncompleteSSH(t *testing.T) {
	path := writeConfig(t, `
[tool]
runner = "ssh"

[tool.ssh]
host = "logs.example.net"
user = "rotor"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_path")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
[schedule]
interval = "whenever"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestLoadMissingFileNamesPath(t *testing.T) {
	_, err := Load("/nonexistent/rotorctl.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/rotorctl.toml")
}

func TestIntervalDurationFallsBackToHourly(t *testing.T) {
	assert.Equal(t, time.Hour, ScheduleConfig{}.IntervalDuration())
	assert.Equal(t, time.Hour, ScheduleConfig{Interval: "garbage"}.IntervalDuration())
	assert.Equal(t, 15*time.Minute, ScheduleConfig{Interval: "15m"}.IntervalDuration())
}

func TestToolRunnerSelection(t *testing.T) {
	local := ToolRunner(ToolConfig{Runner: "local"})
	_, ok := local.(rotate.LocalRunner)
	assert.True(t, ok)

	remote := ToolRunner(ToolConfig{
		Runner: "ssh",
		SSH: SSHConfig{
			Host:           "logs.example.net",
			User:           "rotor",
			KeyPath:        "/etc/rotorctl/id_ed25519",
			TimeoutSeconds: 10,
		},
	})
	sshRunner, ok := remote.(rotate.SSHRunner)
	require.True(t, ok)
	assert.Equal(t, "logs.example.net", sshRunner.Host)
	assert.Equal(t, 10*time.Second, sshRunner.Timeout)
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotorctl.toml")

	require.NoError(t, WriteTemplate(path, "config", false))
	err := WriteTemplate(path, "config", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteTemplate(path, "config", true))
}

func TestConfigTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotorctl.toml")
	require.NoError(t, WriteTemplate(path, "config", false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/rotorctl/rotor.d", cfg.DeclarationsDir)
	assert.True(t, cfg.Schedule.Watch)
}

func TestDeclarationsTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10-example.toml")
	require.NoError(t, WriteTemplate(path, "declarations", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	layer, err := declare.Parse(path, data)
	require.NoError(t, err)
	require.Contains(t, layer.Ops, "example")
	assert.NotEmpty(t, layer.GlobalExtra)
}

func TestTemplateRejectsUnknownKind(t *testing.T) {
	_, err := Template("ghost")
	require.Error(t, err)
}
