package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: from-file
database:
  driver: postgres
  dsn: postgres://localhost/saha
`)
	c, err := read(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "0.0.0.0", c.Server.Address)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, "from-file", c.JWT.Secret)
	assert.Equal(t, "from-file", c.Security.VerifySecret, "verify secret falls back to the jwt secret")
	assert.Equal(t, 24, c.JWT.ExpireHours)
	assert.Equal(t, 12, c.Security.BcryptCost)
	assert.True(t, c.App.SeedDefaultBatch)
	assert.Equal(t, 10, c.Uploads.MaxSizeMB)
	assert.Equal(t, "local", c.Uploads.Driver)
	assert.Equal(t, 1600, c.Uploads.MaxImagePx)
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv("SAHA_JWT_SECRET", "from-env")
	t.Setenv("SAHA_SERVER_PORT", "7000")
	t.Setenv("SAHA_APP_PUBLIC_URL", "https://erp.example.org")
	t.Setenv("SAHA_UPLOADS_OSS_BUCKET", "saha-docs")

	c, err := read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, "https://erp.example.org", c.App.PublicURL)
	assert.Equal(t, "saha-docs", c.Uploads.OSS.Bucket)
}

func TestReadRequiresSecret(t *testing.T) {
	_, err := read(writeConfig(t, "server:\n  port: 8080\n"))
	assert.Error(t, err)
}

func TestReadRejectsBrokenYAML(t *testing.T) {
	_, err := read(writeConfig(t, "server: [unclosed\n"))
	assert.Error(t, err)
}
