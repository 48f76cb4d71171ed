// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", DriverMemory)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("REDIS_URL", "")
}

func TestLoadDefaults(t *testing.T) {
	memoryEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, HashArgon2id, cfg.Hash.Algorithm)
	assert.Equal(t, uint32(64*1024), cfg.Hash.ArgonMemory)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
hash:
  algorithm: bcrypt
  bcrypt_cost: 10
log:
  level: debug
`), 0o600))

	memoryEnv(t)
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, HashBcrypt, cfg.Hash.Algorithm)
	assert.Equal(t, 10, cfg.Hash.BcryptCost)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	memoryEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "postgres without url",
			env:  map[string]string{"DATABASE_DRIVER": DriverPostgres},
			want: "DATABASE_URL",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"DATABASE_DRIVER": "sqlite"},
			want: "unsupported database driver",
		},
		{
			name: "redis without url",
			env:  map[string]string{"REDIS_ENABLED": "true"},
			want: "REDIS_URL",
		},
		{
			name: "bcrypt cost too low",
			env:  map[string]string{"HASH_ALGORITHM": HashBcrypt, "HASH_BCRYPT_COST": "3"},
			want: "bcrypt_cost",
		},
		{
			name: "unknown hash",
			env:  map[string]string{"HASH_ALGORITHM": "md5"},
			want: "unsupported hash algorithm",
		},
		{
			name: "memory store in production",
			env:  map[string]string{"ENVIRONMENT": "production"},
			want: "not allowed in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memoryEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
