package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/ghboard/internal/adapter"
	"github.com/amishk599/ghboard/internal/filter"
	"github.com/amishk599/ghboard/internal/normalize"
)

// ErrNoURLs means the run has nothing to process. It is fatal for the whole run.
var ErrNoURLs = errors.New("no board URLs provided")

// Config is the root configuration for ghboard.
type Config struct {
	URLs         []BoardConfig
	Defaults     filter.Options // run-level filter defaults, raw
	FetchDetails bool
	Description  normalize.DescriptionMode
	HTTP         HTTPConfig
	Concurrency  ConcurrencyConfig
	Interval     time.Duration // watch mode only
	Sinks        []SinkConfig
}

// BoardConfig is one entry of `urls`. It decodes from either a bare URL
// string or a mapping carrying per-URL filter overrides.
type BoardConfig struct {
	URL       string
	Overrides filter.Options
}

// UnmarshalYAML accepts both the string and the object form.
func (b *BoardConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		b.URL = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		// Older configs spell the options in camelCase; snake_case wins
		// when both are given.
		var raw struct {
			URL           string `yaml:"url"`
			Departments   any    `yaml:"departments"`
			MaxJobs       any    `yaml:"max_jobs"`
			DaysBack      any    `yaml:"days_back"`
			LegacyMaxJobs any    `yaml:"maxJobs"`
			LegacyDays    any    `yaml:"daysBack"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		b.URL = strings.TrimSpace(raw.URL)
		b.Overrides = filter.Merge(
			filter.Options{MaxJobs: raw.LegacyMaxJobs, DaysBack: raw.LegacyDays},
			filter.Options{
				Departments: raw.Departments,
				MaxJobs:     raw.MaxJobs,
				DaysBack:    raw.DaysBack,
			},
		)
		return nil
	default:
		return fmt.Errorf("line %d: url entry must be a string or a mapping", value.Line)
	}
}

// HTTPConfig controls the Greenhouse API client.
type HTTPConfig struct {
	BaseURL           string // boards API root
	Timeout           time.Duration
	ProxyURL          string
	UserAgent         string
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64 // per API host; 0 disables limiting
	Burst             int
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	Boards  int // boards processed in parallel
	Details int // detail fetches in flight per board
}

// SinkConfig configures one output sink. Which fields apply depends on Type.
type SinkConfig struct {
	Type       string   `yaml:"type"`
	Path       string   `yaml:"path"`        // jsonl, sqlite
	DSN        string   `yaml:"dsn"`         // postgres
	Table      string   `yaml:"table"`       // postgres
	Addresses  []string `yaml:"addresses"`   // elasticsearch
	Index      string   `yaml:"index"`       // elasticsearch
	Username   string   `yaml:"username"`    // elasticsearch
	Password   string   `yaml:"password"`    // elasticsearch, redis
	Addr       string   `yaml:"addr"`        // redis
	DB         int      `yaml:"db"`          // redis
	Queue      string   `yaml:"queue"`       // redis
	WebhookURL string   `yaml:"webhook_url"` // slack
}

const (
	DefaultUserAgent     = "ghboard/1.0"
	DefaultPostgresTable = "job_records"
	DefaultESIndex       = "jobs"
	DefaultRedisQueue    = "jobs:normalized"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	URLs         []BoardConfig `yaml:"urls"`
	Departments  any           `yaml:"departments"`
	MaxJobs      any           `yaml:"max_jobs"`
	DaysBack     any           `yaml:"days_back"`
	FetchDetails *bool         `yaml:"fetch_details"`
	Description  string        `yaml:"description"`
	HTTP         rawHTTPConfig `yaml:"http"`
	Concurrency  struct {
		Boards  *int `yaml:"boards"`
		Details *int `yaml:"details"`
	} `yaml:"concurrency"`
	Interval string `yaml:"interval"`
	Output   struct {
		Sinks []SinkConfig `yaml:"sinks"`
	} `yaml:"output"`
}

type rawHTTPConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Timeout           string   `yaml:"timeout"`
	ProxyURL          string   `yaml:"proxy_url"`
	UserAgent         string   `yaml:"user_agent"`
	MaxRetries        *int     `yaml:"max_retries"`
	RetryDelay        string   `yaml:"retry_delay"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Burst             *int     `yaml:"burst"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A config without URLs is returned as-is; callers that need URLs check with
// RequireURLs, since positional URLs on the command line may supply them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates config bytes. Environment variables are
// expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	mode, err := normalize.ParseDescriptionMode(raw.Description)
	if err != nil {
		return nil, err
	}

	httpCfg, err := buildHTTPConfig(raw.HTTP)
	if err != nil {
		return nil, err
	}

	interval := time.Hour
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	cfg := &Config{
		URLs: raw.URLs,
		Defaults: filter.Options{
			Departments: raw.Departments,
			MaxJobs:     raw.MaxJobs,
			DaysBack:    raw.DaysBack,
		},
		FetchDetails: raw.FetchDetails == nil || *raw.FetchDetails,
		Description:  mode,
		HTTP:         httpCfg,
		Concurrency: ConcurrencyConfig{
			Boards:  intOr(raw.Concurrency.Boards, 4),
			Details: intOr(raw.Concurrency.Details, 8),
		},
		Interval: interval,
		Sinks:    raw.Output.Sinks,
	}
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []SinkConfig{{Type: "log"}}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists: defaults only,
// no URLs, log sink.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// RequireURLs returns ErrNoURLs when the config has nothing to process.
func (c *Config) RequireURLs() error {
	if len(c.URLs) == 0 {
		return ErrNoURLs
	}
	return nil
}

func buildHTTPConfig(raw rawHTTPConfig) (HTTPConfig, error) {
	cfg := HTTPConfig{
		BaseURL:           strings.TrimRight(raw.BaseURL, "/"),
		Timeout:           30 * time.Second,
		ProxyURL:          raw.ProxyURL,
		UserAgent:         raw.UserAgent,
		MaxRetries:        intOr(raw.MaxRetries, 2),
		RetryDelay:        2 * time.Second,
		RequestsPerSecond: 5,
		Burst:             intOr(raw.Burst, 5),
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = adapter.DefaultGreenhouseBaseURL
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return cfg, fmt.Errorf("invalid http.base_url %q", raw.BaseURL)
	}
	if raw.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *raw.RequestsPerSecond
	}

	var err error
	if raw.Timeout != "" {
		cfg.Timeout, err = time.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse http.timeout %q: %w", raw.Timeout, err)
		}
	}
	if raw.RetryDelay != "" {
		cfg.RetryDelay, err = time.ParseDuration(raw.RetryDelay)
		if err != nil {
			return cfg, fmt.Errorf("parse http.retry_delay %q: %w", raw.RetryDelay, err)
		}
	}
	return cfg, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func validate(cfg *Config) error {
	for i, b := range cfg.URLs {
		if b.URL == "" {
			return fmt.Errorf("urls[%d]: url is required", i)
		}
	}

	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must not be negative, got %v", cfg.HTTP.RequestsPerSecond)
	}
	if cfg.Concurrency.Boards < 0 || cfg.Concurrency.Details < 0 {
		return fmt.Errorf("concurrency values must not be negative, got boards=%d details=%d",
			cfg.Concurrency.Boards, cfg.Concurrency.Details)
	}

	for i := range cfg.Sinks {
		if err := validateSink(&cfg.Sinks[i]); err != nil {
			return fmt.Errorf("output.sinks[%d]: %w", i, err)
		}
	}
	return nil
}

// validateSink checks required fields and fills per-type defaults.
func validateSink(s *SinkConfig) error {
	switch s.Type {
	case "log":
	case "jsonl", "sqlite":
		if s.Path == "" {
			return fmt.Errorf("path is required when type is %q", s.Type)
		}
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("dsn is required when type is \"postgres\"")
		}
		if s.Table == "" {
			s.Table = DefaultPostgresTable
		}
		if !tableNameRe.MatchString(s.Table) {
			return fmt.Errorf("invalid table name %q", s.Table)
		}
	case "elasticsearch":
		if len(s.Addresses) == 0 {
			return fmt.Errorf("addresses are required when type is \"elasticsearch\"")
		}
		if s.Index == "" {
			s.Index = DefaultESIndex
		}
	case "redis":
		if s.Addr == "" {
			return fmt.Errorf("addr is required when type is \"redis\"")
		}
		if s.Queue == "" {
			s.Queue = DefaultRedisQueue
		}
	case "slack":
		if s.WebhookURL == "" {
			return fmt.Errorf("webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(s.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("webhook_url must start with https://hooks.slack.com/")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown sink type %q", s.Type)
	}
	return nil
}
