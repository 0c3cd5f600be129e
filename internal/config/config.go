package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Scan     ScanConfig     `yaml:"scan"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// UpstreamConfig holds the base URLs of the three platform services the
// console talks to: the auth service, the scan orchestrator and the
// dashboard read model.
type UpstreamConfig struct {
	AuthBaseURL       string        `yaml:"auth_base_url"`
	ScansBaseURL      string        `yaml:"scans_base_url"`
	DashboardsBaseURL string        `yaml:"dashboards_base_url"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

type SessionConfig struct {
	// Backend selects where the console persists sessions: memory, redis
	// or postgres. The terminal client always uses a session file and
	// ignores this.
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	// FilePath overrides the terminal client's session file location.
	FilePath      string `yaml:"file_path"`
	SweepSchedule string `yaml:"sweep_schedule"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ScanConfig struct {
	// RefreshDelay is how long after a scan is accepted the console waits
	// before fetching the dashboard for the first time. The orchestrator
	// processes scans asynchronously; an immediate fetch usually returns
	// an empty snapshot.
	RefreshDelay time.Duration `yaml:"refresh_delay"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}

	if c.Upstream.AuthBaseURL == "" {
		c.Upstream.AuthBaseURL = "http://localhost:8000/api/v1/auth"
	}
	if c.Upstream.ScansBaseURL == "" {
		c.Upstream.ScansBaseURL = "http://localhost:8001/api/v1/scans"
	}
	if c.Upstream.DashboardsBaseURL == "" {
		c.Upstream.DashboardsBaseURL = "http://localhost:8007/api/v1/dashboards"
	}
	if c.Upstream.RequestTimeout == 0 {
		c.Upstream.RequestTimeout = 15 * time.Second
	}

	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Session.SweepSchedule == "" {
		c.Session.SweepSchedule = "@every 10m"
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if c.Scan.RefreshDelay == 0 {
		c.Scan.RefreshDelay = 5 * time.Second
	}
}
