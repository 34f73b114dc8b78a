package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "intake")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "ward")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "host='db.internal' port=6543 user='intake' password='secret' dbname='ward' sslmode='disable'", cfg.DSN())
}

func TestLoad_FromEnvFile(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "DB_HOST=filehost\nDB_USER=fileuser\nDB_PASSWORD=filepass\nDB_NAME=filedb\nLOG_FORMAT=json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "filehost", cfg.DBHost)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5432, cfg.DBPort)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestRead_DoesNotRequireCredentials(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Read("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Error(t, cfg.Validate())
}

func TestRead_ProductionDefaultsToJSONLogs(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Read("")
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestRead_MissingEnvFileIsFine(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DBHost)
}

func TestRead_UnreadableEnvFileIsReported(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)
	assert.NotContains(t, err.Error(), "missing required database configuration")
}

func TestDSN_QuotesValues(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     5432,
		DBUser:     "intake",
		DBPassword: `p a's\w`,
		DBName:     "intake",
		DBSSLMode:  "disable",
	}

	assert.Equal(t,
		`host='localhost' port=5432 user='intake' password='p a\'s\\w' dbname='intake' sslmode='disable'`,
		cfg.DSN())
}
