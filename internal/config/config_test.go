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
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")
	t.Setenv("ROUTING_TABLE_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 5*time.Minute, cfg.Notification.UnreadCacheTTL())
	assert.Equal(t, []string{OfficeETC}, cfg.Routing.Routes["technical"])
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")
	_, err := Load()
	assert.Error(t, err)
}

func TestDefaultRoutingConfig(t *testing.T) {
	routes := DefaultRoutingConfig().Routes
	assert.Equal(t, []string{OfficeRegistrar}, routes["academic"])
	assert.Equal(t, []string{OfficePrincipal, OfficeStudentServices}, routes["lostfound"])
	assert.Equal(t, []string{OfficeMediaAlumniPublic}, routes["general"])
}

func TestLoadRoutingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	content := "routes:\n  technical: [\"IT Helpdesk\"]\n  welfare: [\"Guidance Office\", \"Clinic\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadRoutingFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT Helpdesk"}, cfg.Routes["technical"])
	assert.Equal(t, []string{"Guidance Office", "Clinic"}, cfg.Routes["welfare"])

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("routes: {}\n"), 0o600))
	_, err = LoadRoutingFile(empty)
	assert.Error(t, err)

	_, err = LoadRoutingFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
