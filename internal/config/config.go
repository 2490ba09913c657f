package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	BuildIDHeader = "X-Build-ID"

	defaultListen          = ":8080"
	defaultReleaseURL      = "https://api.github.com/repos/vercel/hyper/releases/latest"
	defaultUserAgent       = "hypersite"
	defaultReleaseTimeout  = 10 * time.Second
	defaultRevalidate      = 60 * 60 * 24 * time.Second
	defaultDownloadBaseURL = "https://releases.hyper.is/download/"
	defaultWorkers         = 4

	envListen      = "HYPERSITE_LISTEN"
	envRedisURL    = "HYPERSITE_REDIS_URL"
	envLogLevel    = "HYPERSITE_LOG_LEVEL"
	envGithubToken = "GITHUB_TOKEN"
	envAdminToken  = "HYPERSITE_ADMIN_TOKEN"
)

type ReleaseConfig struct {
	URL       string        `yaml:"url"`
	Token     string        `yaml:"token"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type SiteConfig struct {
	URL             string        `yaml:"url"`
	DownloadBaseURL string        `yaml:"download_base_url"`
	ContentDir      string        `yaml:"content_dir"`
	TemplateFile    string        `yaml:"template_file"`
	Revalidate      time.Duration `yaml:"revalidate"`
	Workers         int           `yaml:"workers"`
	// AdminToken guards POST /regenerate/. Empty disables the endpoint.
	AdminToken string `yaml:"admin_token"`
}

type Config struct {
	Listen        string        `yaml:"listen"`
	RedisURL      string        `yaml:"redis_url"`
	LogLevel      string        `yaml:"log_level"`
	ReleaseConfig ReleaseConfig `yaml:"release"`
	SiteConfig    SiteConfig    `yaml:"site"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}

	if c.ReleaseConfig.URL == "" {
		c.ReleaseConfig.URL = defaultReleaseURL
	}

	if c.ReleaseConfig.UserAgent == "" {
		c.ReleaseConfig.UserAgent = defaultUserAgent
	}

	if c.ReleaseConfig.Timeout <= 0 {
		c.ReleaseConfig.Timeout = defaultReleaseTimeout
	}

	if c.SiteConfig.DownloadBaseURL == "" {
		c.SiteConfig.DownloadBaseURL = defaultDownloadBaseURL
	}

	if c.SiteConfig.Revalidate <= 0 {
		c.SiteConfig.Revalidate = defaultRevalidate
	}

	if c.SiteConfig.Workers < 1 {
		c.SiteConfig.Workers = defaultWorkers
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envListen); v != "" {
		c.Listen = v
	}

	if v := os.Getenv(envRedisURL); v != "" {
		c.RedisURL = v
	}

	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv(envGithubToken); v != "" {
		c.ReleaseConfig.Token = v
	}

	if v := os.Getenv(envAdminToken); v != "" {
		c.SiteConfig.AdminToken = v
	}
}

/*
Load reads configuration in this order:
 1. .env file next to the working directory, if present;
 2. yaml config file, if it exists;
 3. environment overrides;
 4. defaults for everything still empty.
*/
func Load(cfgPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", cfgPath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", cfgPath, err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()

	return cfg, nil
}

func MustLoad(cfgPath string) *Config {
	cfg, err := Load(cfgPath)
	if err != nil {
		panic(err)
	}

	return cfg
}
