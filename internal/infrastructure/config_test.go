package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *AppConfig {
	cfg := new(AppConfig)
	cfg.AppID = "course-service"
	cfg.Port = 8081
	cfg.Env = EnvDevelopment
	cfg.RequestTimeout = 30 * time.Second
	cfg.Database.Driver = "postgres"
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 5432
	cfg.Database.MaxConn = 10
	cfg.Database.User = "course"
	cfg.Database.Password = "secret"
	cfg.Database.Schema = "course"
	cfg.Logging.Level = "info"
	cfg.Security.IDLength = 24
	cfg.KVStore.Host = "127.0.0.1"
	cfg.KVStore.Port = 6379
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *AppConfig)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *AppConfig) {},
		},
		{
			name:    "missing app id",
			mutate:  func(cfg *AppConfig) { cfg.AppID = "" },
			wantErr: "app_id is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(cfg *AppConfig) { cfg.Database.Driver = "sqlite" },
			wantErr: "database.driver must be one of (postgres mysql)",
		},
		{
			name:    "unknown env",
			mutate:  func(cfg *AppConfig) { cfg.Env = "staging" },
			wantErr: "env must be one of",
		},
		{
			name:    "short ids",
			mutate:  func(cfg *AppConfig) { cfg.Security.IDLength = 4 },
			wantErr: "security.id_length must be at least 8",
		},
		{
			name: "cache enabled without host",
			mutate: func(cfg *AppConfig) {
				cfg.KVStore.Enabled = true
				cfg.KVStore.Host = ""
			},
			wantErr: "kv.host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
