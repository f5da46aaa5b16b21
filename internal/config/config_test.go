package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 300, cfg.Link.TTLSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Link.TTL())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, 0, cfg.Link.MaxFailedAttempts)
}

func TestLoadConfig_MissingDSNFailsValidation(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql.dsn")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SECUREPRINT_MYSQL_DSN", "root:root@tcp(db:3306)/secureprint")
	t.Setenv("SECUREPRINT_LINK_TTL_SECONDS", "60")
	t.Setenv("SECUREPRINT_JWT_EXPIRES_IN", "2h")
	t.Setenv("SECUREPRINT_STORAGE_TYPE", "aliyun_oss")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "root:root@tcp(db:3306)/secureprint", cfg.MySQL.DSN)
	assert.Equal(t, 60, cfg.Link.TTLSeconds)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "aliyun_oss", cfg.Storage.Type)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_LegacyEnvNames(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("LINK_TTL_SECONDS", "120")
	t.Setenv("SMTP_USER", "printer@example.com")
	t.Setenv("FROM_EMAIL", "noreply@example.com")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Server.Port)
	assert.Equal(t, "legacy-secret", cfg.JWT.SecretKey)
	assert.Equal(t, 120, cfg.Link.TTLSeconds)
	assert.Equal(t, "printer@example.com", cfg.SMTP.Username)
	assert.Equal(t, "noreply@example.com", cfg.SMTP.From)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: "9090"
mysql:
  dsn: "user:pass@tcp(localhost:3306)/sp"
storage:
  type: gridfs
mongo:
  uri: "mongodb://localhost:27017"
link:
  ttl_seconds: 600
  frontend_url: "https://print.example.com"
  max_failed_attempts: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 600, cfg.Link.TTLSeconds)
	assert.Equal(t, "https://print.example.com", cfg.Link.FrontendURL)
	assert.Equal(t, 5, cfg.Link.MaxFailedAttempts)
	assert.Equal(t, "gridfs", cfg.Storage.Type)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			MySQL:   MySQLConfig{DSN: "dsn"},
			JWT:     JWTConfig{SecretKey: "secret"},
			Storage: StorageConfig{Type: "minio"},
			Link:    LinkConfig{TTLSeconds: 300},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero ttl", mutate: func(c *Config) { c.Link.TTLSeconds = 0 }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.SecretKey = "" }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "ftp" }, wantErr: true},
		{name: "gridfs without uri", mutate: func(c *Config) { c.Storage.Type = "gridfs" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}
