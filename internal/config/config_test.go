package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
dbname = "sessions"

[credit_service]
url = "http://credits:8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 60, cfg.Scheduling.BookingStepMinutes)
	assert.Equal(t, 30, cfg.Scheduling.RescheduleStepMinutes)
	assert.Equal(t, float64(3), cfg.Scheduling.RescheduleCutoffHours)
	assert.False(t, cfg.Scheduling.AllowOverrun)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FileOverridesAndEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")

	path := writeConfig(t, `
[server]
http_port = 9090

[database]
dbname = "sessions"
password = "from-file"

[redis]
addr = "localhost:6379"

[credit_service]
url = "http://credits:8080"

[scheduling]
booking_step_minutes = 45
allow_overrun = true
timezone = "Europe/Moscow"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 45, cfg.Scheduling.BookingStepMinutes)
	assert.True(t, cfg.Scheduling.AllowOverrun)
	assert.True(t, cfg.Redis.Enabled())

	loc, err := cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeConfig(t, `
[scheduling]
booking_step_minutes = 0
timezone = "Mars/Olympus"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dbname is required")
	assert.Contains(t, err.Error(), "booking_step_minutes")
	assert.Contains(t, err.Error(), "scheduling.timezone")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "sessions", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=sessions sslmode=disable", d.DSN())
}

func TestSchedulingConfig_RescheduleCutoff(t *testing.T) {
	s := SchedulingConfig{RescheduleCutoffHours: 2.5}
	assert.Equal(t, 150*time.Minute, s.RescheduleCutoff())
}
