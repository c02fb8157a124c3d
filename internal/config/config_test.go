package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Tutor.FreeLimit)
	assert.Equal(t, time.Hour, cfg.Scheduler.ExpirySweep)
	assert.Equal(t, 10, cfg.Log.MaxSize)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
server:
  port: "9000"
tutor:
  free_limit: 3
scheduler:
  expiry_sweep: 15m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "examina.yaml"), []byte(yaml), 0o644))
	t.Setenv("EXAMINA_AUTH_JWT_SECRET", "from-env")
	t.Setenv("EXAMINA_SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port, "env beats file")
	assert.Equal(t, 3, cfg.Tutor.FreeLimit)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.ExpirySweep)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EXAMINA_RAZORPAY_KEY_ID=rzp_test\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EXAMINA_RAZORPAY_KEY_ID") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "rzp_test", cfg.Razorpay.KeyID)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "mysql"}}
	assert.Error(t, cfg.Validate())

	cfg.Database = DatabaseConfig{Driver: "postgres"}
	assert.Error(t, cfg.Validate())

	cfg.Database.DSN = "postgres://localhost/examina"
	assert.NoError(t, cfg.Validate())
}
