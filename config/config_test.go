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
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, App)

	assert.Equal(t, "secret", cfg.JWT.Secret)
	assert.Equal(t, "secret-refresh", cfg.JWT.RefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "gtk123", cfg.Import.DefaultPassword)
	assert.Equal(t, int64(20<<20), cfg.Import.MaxUploadBytes)
	assert.True(t, cfg.Import.LockEnabled)
	assert.False(t, cfg.Minio.Enabled())
}

func TestLoadParsesImportOptions(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("IMPORT_BCRYPT_COST", "4")
	t.Setenv("IMPORT_LOCK_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://sipodi.id,https://admin.sipodi.id")
	t.Setenv("MINIO_ENDPOINT", "minio.local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Import.BcryptCost)
	assert.False(t, cfg.Import.LockEnabled)
	assert.Equal(t, []string{"https://sipodi.id", "https://admin.sipodi.id"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Minio.Enabled())
}

func TestLoadRejectsProductionWithoutSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required in production")
}

func TestValidate(t *testing.T) {
	valid := func() *Configuration {
		return &Configuration{
			Environment: "development",
			Import: ImportOptions{
				DefaultPassword: "gtk123",
				MaxUploadBytes:  1024,
				BcryptCost:      10,
			},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Import.BcryptCost = 2
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Import.DefaultPassword = "  "
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Import.MaxUploadBytes = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadEnvReadsExistingFilesOnly(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("SIM_TALENTA_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("SIM_TALENTA_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("SIM_TALENTA_TEST_VALUE"))

	n, err := LoadEnv([]string{file, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("SIM_TALENTA_TEST_VALUE"))
}

func TestSendMailRequiresConfiguration(t *testing.T) {
	assert.NoError(t, SendMail(MailOptions{}, nil, "s", "b"))
	assert.ErrorIs(t, SendMail(MailOptions{}, []string{"a@test"}, "s", "b"), ErrMailNotConfigured)
}
