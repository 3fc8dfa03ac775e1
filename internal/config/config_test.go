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
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
jwt:
  secret: file-secret
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(dir, "db", "test.db")+`
paths:
  uploads: `+filepath.Join(dir, "uploads")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration())
	assert.Equal(t, time.Hour, cfg.PasswordResetTTL())
	assert.Equal(t, 5, cfg.Security.MaxFailedLogins)
	assert.Equal(t, int64(25<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)

	assert.DirExists(t, filepath.Join(dir, "db"))
	assert.DirExists(t, filepath.Join(dir, "uploads"))
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 8080
jwt:
  secret: file-secret
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(dir, "file.db")+`
paths:
  uploads: `+filepath.Join(dir, "uploads")+`
`)

	t.Setenv("JUBA_JWT_SECRET", "env-secret")
	t.Setenv("JUBA_PORT", "9090")
	t.Setenv("JUBA_DB_PATH", filepath.Join(dir, "env.db"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "env.db"), cfg.Database.SQLite.Path)
}

func TestLoadRequiresSecret(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(dir, "x.db")+`
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateMySQL(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{Secret: "s"}, Database: DatabaseConfig{Type: "mysql"}}
	assert.Error(t, cfg.Validate())

	cfg.Database.MySQL = MySQLConfig{Username: "juba", Database: "juba"}
	assert.NoError(t, cfg.Validate())

	cfg.Database.Type = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestInvalidDurationsFallBack(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{ExpiresIn: "soon"}, Security: SecurityConfig{LockoutDuration: "-1m"}}
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration())
}
