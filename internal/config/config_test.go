package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/perfscope")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.True(t, cfg.Store.RunMigrations)
	assert.Equal(t, ProviderPageSpeed, cfg.Analysis.Provider)
	assert.Equal(t, 10*time.Second, cfg.Processor.PollInterval)
	assert.Equal(t, 5, cfg.Processor.BatchSize)
	assert.Equal(t, 50, cfg.Processor.MaxInFlight)
	assert.Equal(t, 3*time.Minute, cfg.Processor.JobTimeout)
	assert.True(t, cfg.Processor.AutoStart)
	assert.False(t, cfg.HTTP.TrustProxyHeaders)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Enabled(ServiceModeHTTP))
	assert.True(t, cfg.Enabled(ServiceModeWorker))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/p.db")
	t.Setenv("ANALYSIS_PROVIDER", "webpagetest")
	t.Setenv("SERVICES", "worker")
	t.Setenv("PROCESSOR_POLL_INTERVAL", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, ProviderWebPageTest, cfg.Analysis.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Processor.PollInterval)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.HTTP.TrustProxyHeaders)
	assert.False(t, cfg.Enabled(ServiceModeHTTP))
	assert.True(t, cfg.Enabled(ServiceModeWorker))
}

func TestLoad_LegacyPageSpeedKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/perfscope")
	t.Setenv("GOOGLE_PAGESPEED_API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Analysis.PageSpeedAPIKey)

	t.Setenv("PAGESPEED_API_KEY", "current")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "current", cfg.Analysis.PageSpeedAPIKey)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Services:  "http",
			Store:     StoreConfig{Driver: StoreDriverPostgres, DatabaseURL: "postgres://x"},
			Analysis:  AnalysisConfig{Provider: ProviderPageSpeed},
			Processor: ProcessorConfig{BatchSize: 1, MaxInFlight: 1},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing database url", func(c *Config) { c.Store.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"unknown provider", func(c *Config) { c.Analysis.Provider = "gtmetrix" }, "ANALYSIS_PROVIDER"},
		{"unknown service", func(c *Config) { c.Services = "http,cron" }, "invalid service name"},
		{"no services", func(c *Config) { c.Services = " , " }, "at least one service"},
		{"zero batch", func(c *Config) { c.Processor.BatchSize = 0 }, "PROCESSOR_BATCH_SIZE"},
		{"negative rate", func(c *Config) { c.HTTP.SubmitsPerMinute = -1 }, "RATE_LIMIT_PER_MINUTE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
