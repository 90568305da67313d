package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ServiceMode names a role this process can run.
type ServiceMode string

const (
	ServiceModeHTTP   ServiceMode = "http"
	ServiceModeWorker ServiceMode = "worker"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	ProviderPageSpeed   = "pagespeed"
	ProviderWebPageTest = "webpagetest"
)

type Config struct {
	Env        string `env:"APP_ENV"     envDefault:"development"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	Services   string `env:"SERVICES"    envDefault:"http,worker"`

	Log       LogConfig
	Store     StoreConfig
	Processor ProcessorConfig
	Analysis  AnalysisConfig
	Gemini    GeminiConfig
	HTTP      HTTPConfig

	// RedisURL enables cross-process wakeups; empty keeps them in-process.
	RedisURL string `env:"REDIS_URL"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT"`
}

type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER"   envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH"    envDefault:"perfscope.db"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

type ProcessorConfig struct {
	AutoStart    bool          `env:"AUTO_START_PROCESSOR"    envDefault:"true"`
	PollInterval time.Duration `env:"PROCESSOR_POLL_INTERVAL" envDefault:"10s"`
	BatchSize    int           `env:"PROCESSOR_BATCH_SIZE"    envDefault:"5"`
	MaxInFlight  int           `env:"PROCESSOR_MAX_IN_FLIGHT" envDefault:"50"`
	JobTimeout   time.Duration `env:"PROCESSOR_JOB_TIMEOUT"   envDefault:"3m"`
}

type AnalysisConfig struct {
	Provider string `env:"ANALYSIS_PROVIDER" envDefault:"pagespeed"`

	PageSpeedAPIKey       string `env:"PAGESPEED_API_KEY"`
	LegacyPageSpeedAPIKey string `env:"GOOGLE_PAGESPEED_API_KEY"`
	PageSpeedBaseURL      string `env:"PAGESPEED_BASE_URL"`

	WebPageTestAPIKey  string `env:"WEBPAGETEST_API_KEY"`
	WebPageTestBaseURL string `env:"WEBPAGETEST_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

type HTTPConfig struct {
	CORSOrigins      []string `env:"CORS_ALLOWED_ORIGINS"  envSeparator:","`
	SubmitsPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, cfg.Validate()
}

// Sanitize normalizes casing and applies the legacy PageSpeed key name.
func (c *Config) Sanitize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Analysis.Provider = strings.ToLower(strings.TrimSpace(c.Analysis.Provider))
	if c.Analysis.PageSpeedAPIKey == "" {
		c.Analysis.PageSpeedAPIKey = c.Analysis.LegacyPageSpeedAPIKey
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
		if c.IsDevelopment() {
			c.Log.Format = "text"
		}
	}
	origins := c.HTTP.CORSOrigins[:0]
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.CORSOrigins = origins
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) Validate() error {
	if _, err := ParseServices(c.Services); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q (valid options: postgres, sqlite)", c.Store.Driver)
	}
	switch c.Analysis.Provider {
	case ProviderPageSpeed, ProviderWebPageTest:
	default:
		return fmt.Errorf("invalid ANALYSIS_PROVIDER %q (valid options: pagespeed, webpagetest)", c.Analysis.Provider)
	}
	if c.Processor.BatchSize < 1 {
		return errors.New("PROCESSOR_BATCH_SIZE must be at least 1")
	}
	if c.Processor.MaxInFlight < 1 {
		return errors.New("PROCESSOR_MAX_IN_FLIGHT must be at least 1")
	}
	if c.HTTP.SubmitsPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// Enabled reports whether mode is listed in SERVICES.
func (c *Config) Enabled(mode ServiceMode) bool {
	services, err := ParseServices(c.Services)
	if err != nil {
		return false
	}
	return services[mode]
}

// ParseServices parses a comma-delimited list of service names.
func ParseServices(s string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch mode := ServiceMode(name); mode {
		case ServiceModeHTTP, ServiceModeWorker:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, worker)", name)
		}
	}
	if len(services) == 0 {
		return nil, errors.New("at least one service must be specified")
	}
	return services, nil
}
