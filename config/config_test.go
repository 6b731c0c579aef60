package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JOBS_ENABLED", "false")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "")

	cfg := LoadEnv()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.True(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Jobs.Enabled)
	assert.False(t, cfg.Twilio.Enabled())
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{"development": true, "dev": true, "staging": false} {
		cfg := &Config{Server: ServerConfig{AppEnv: env}}
		assert.Equal(t, want, cfg.IsDevelopment(), env)
	}
}
