package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUENOS_DATABASE__URL", "postgres://localhost/console")
	t.Setenv("SUENOS_JWT__SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Notifications.MaxAttempts)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, 10*time.Second, cfg.Notifications.Email.Timeout)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
database:
  url: postgres://filehost/console
jwt:
  secret: file-secret
log:
  level: debug
  format: text
notifications:
  max_attempts: 5
  email:
    enabled: true
    base_url: https://mail.example.com
    api_key: key
    from_address: no-reply@example.com
`), 0o600))

	// Environment wins over the file.
	t.Setenv("SUENOS_SERVER__PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "postgres://filehost/console", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Notifications.MaxAttempts)
	assert.True(t, cfg.Notifications.Email.Enabled)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"SUENOS_JWT__SECRET": "s"},
			wantErr: "database.url",
		},
		{
			name:    "missing jwt secret",
			env:     map[string]string{"SUENOS_DATABASE__URL": "postgres://localhost/x"},
			wantErr: "jwt.secret",
		},
		{
			name: "non-positive max attempts",
			env: map[string]string{
				"SUENOS_DATABASE__URL":               "postgres://localhost/x",
				"SUENOS_JWT__SECRET":                 "s",
				"SUENOS_NOTIFICATIONS__MAX_ATTEMPTS": "0",
			},
			wantErr: "max_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
