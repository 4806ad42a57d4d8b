// Package config loads the YAML configuration file, expands environment
// variables, applies defaults and validates the result.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobletter pipeline.
type Config struct {
	CycleInterval time.Duration // how often acquisition cycles run
	SweepInterval time.Duration // how often the dedup cache is swept
	Listen        string        // HTTP API listen address

	Budget    BudgetConfig
	Throttle  ThrottleConfig
	Dedup     DedupConfig
	Store     StoreConfig
	Freshness FreshnessConfig
	Shortlist ShortlistConfig
	Search    SearchConfig
	Providers []ProviderConfig
}

// BudgetConfig sets the provider request ceilings.
type BudgetConfig struct {
	DailyLimit  int `yaml:"daily_limit"`
	HourlyLimit int `yaml:"hourly_limit"`
}

// ThrottleConfig controls request pacing and backoff.
type ThrottleConfig struct {
	MinDelay       time.Duration // minimum gap between requests to the same provider
	RequestTimeout time.Duration // per provider call
	BackoffBase    time.Duration // rate-limit backoff, defaults to 2x MinDelay
	MaxAttempts    int           // total attempts per unit of work
}

// DedupConfig selects and tunes the fingerprint cache.
type DedupConfig struct {
	Backend   string // "memory" or "redis"
	Retention time.Duration
	RedisURL  string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend     string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string
}

// FreshnessConfig sets the posting-age windows behind the freshness tiers.
type FreshnessConfig struct {
	UltraFresh time.Duration
	Fresh      time.Duration
}

// ShortlistConfig tunes the prefilter and scoring engine.
type ShortlistConfig struct {
	MaxPerSource       int
	MaxTotal           int
	BroadLimit         int
	PoolWindow         time.Duration
	PoolLimit          int
	ReputableEmployers []string
}

// SearchConfig is the search plan shared by every provider.
type SearchConfig struct {
	Queries   []string         `yaml:"queries"`
	Locations []LocationConfig `yaml:"locations"`
	Rotate    bool             `yaml:"rotate"`
}

// LocationConfig is one weighted search location.
type LocationConfig struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// ProviderConfig describes one external listing source.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	Country string `yaml:"country"`
}

// rawConfig is the YAML shape: snake_case fields, durations as strings.
type rawConfig struct {
	CycleInterval string             `yaml:"cycle_interval"`
	SweepInterval string             `yaml:"sweep_interval"`
	Listen        string             `yaml:"listen"`
	Budget        BudgetConfig       `yaml:"budget"`
	Throttle      rawThrottleConfig  `yaml:"throttle"`
	Dedup         rawDedupConfig     `yaml:"dedup"`
	Store         rawStoreConfig     `yaml:"store"`
	Freshness     rawFreshnessConfig `yaml:"freshness"`
	Shortlist     rawShortlistConfig `yaml:"shortlist"`
	Search        SearchConfig       `yaml:"search"`
	Providers     []ProviderConfig   `yaml:"providers"`
}

type rawThrottleConfig struct {
	MinDelay       string `yaml:"min_delay"`
	RequestTimeout string `yaml:"request_timeout"`
	BackoffBase    string `yaml:"backoff_base"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

type rawDedupConfig struct {
	Backend   string `yaml:"backend"`
	Retention string `yaml:"retention"`
	RedisURL  string `yaml:"redis_url"`
}

type rawStoreConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
}

type rawFreshnessConfig struct {
	UltraFresh string `yaml:"ultra_fresh"`
	Fresh      string `yaml:"fresh"`
}

type rawShortlistConfig struct {
	MaxPerSource       int      `yaml:"max_per_source"`
	MaxTotal           int      `yaml:"max_total"`
	BroadLimit         int      `yaml:"broad_limit"`
	PoolWindow         string   `yaml:"pool_window"`
	PoolLimit          int      `yaml:"pool_limit"`
	ReputableEmployers []string `yaml:"reputable_employers"`
}

// Load reads and parses the YAML config at path, expands environment
// variables, applies defaults, validates and returns the Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Listen:    raw.Listen,
		Budget:    raw.Budget,
		Search:    raw.Search,
		Providers: raw.Providers,
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}

	cfg.CycleInterval, err = parseDuration("cycle_interval", raw.CycleInterval, time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval, err = parseDuration("sweep_interval", raw.SweepInterval, 6*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.Throttle.MinDelay, err = parseDuration("throttle.min_delay", raw.Throttle.MinDelay, 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Throttle.RequestTimeout, err = parseDuration("throttle.request_timeout", raw.Throttle.RequestTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	// Backoff defaults to double the throttle delay.
	cfg.Throttle.BackoffBase, err = parseDuration("throttle.backoff_base", raw.Throttle.BackoffBase, 2*cfg.Throttle.MinDelay)
	if err != nil {
		return nil, err
	}
	cfg.Throttle.MaxAttempts = raw.Throttle.MaxAttempts
	if cfg.Throttle.MaxAttempts == 0 {
		cfg.Throttle.MaxAttempts = 2
	}

	cfg.Dedup.Backend = raw.Dedup.Backend
	if cfg.Dedup.Backend == "" {
		cfg.Dedup.Backend = "memory"
	}
	cfg.Dedup.RedisURL = raw.Dedup.RedisURL
	cfg.Dedup.Retention, err = parseDuration("dedup.retention", raw.Dedup.Retention, 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.Store.Backend = raw.Store.Backend
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	cfg.Store.SQLitePath = raw.Store.SQLitePath
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "jobletter.db"
	}
	cfg.Store.PostgresURL = raw.Store.PostgresURL

	cfg.Freshness.UltraFresh, err = parseDuration("freshness.ultra_fresh", raw.Freshness.UltraFresh, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Freshness.Fresh, err = parseDuration("freshness.fresh", raw.Freshness.Fresh, 72*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.Shortlist.MaxPerSource = raw.Shortlist.MaxPerSource
	cfg.Shortlist.MaxTotal = raw.Shortlist.MaxTotal
	cfg.Shortlist.BroadLimit = raw.Shortlist.BroadLimit
	cfg.Shortlist.PoolLimit = raw.Shortlist.PoolLimit
	cfg.Shortlist.ReputableEmployers = raw.Shortlist.ReputableEmployers
	if cfg.Shortlist.PoolLimit == 0 {
		cfg.Shortlist.PoolLimit = 500
	}
	cfg.Shortlist.PoolWindow, err = parseDuration("shortlist.pool_window", raw.Shortlist.PoolWindow, 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	if cfg.CycleInterval <= 0 {
		return fmt.Errorf("cycle_interval must be positive, got %v", cfg.CycleInterval)
	}
	if cfg.Budget.DailyLimit <= 0 || cfg.Budget.HourlyLimit <= 0 {
		return fmt.Errorf("budget.daily_limit and budget.hourly_limit must be positive")
	}
	if cfg.Budget.HourlyLimit > cfg.Budget.DailyLimit {
		return fmt.Errorf("budget.hourly_limit %d exceeds daily_limit %d", cfg.Budget.HourlyLimit, cfg.Budget.DailyLimit)
	}
	if cfg.Dedup.Retention <= 0 {
		return fmt.Errorf("dedup.retention must be positive, got %v", cfg.Dedup.Retention)
	}

	switch cfg.Dedup.Backend {
	case "memory":
	case "redis":
		if cfg.Dedup.RedisURL == "" {
			return fmt.Errorf("dedup.redis_url is required when dedup.backend is \"redis\"")
		}
	default:
		return fmt.Errorf("dedup.backend must be \"memory\" or \"redis\", got %q", cfg.Dedup.Backend)
	}

	switch cfg.Store.Backend {
	case "sqlite":
	case "postgres":
		if cfg.Store.PostgresURL == "" {
			return fmt.Errorf("store.postgres_url is required when store.backend is \"postgres\"")
		}
	default:
		return fmt.Errorf("store.backend must be \"sqlite\" or \"postgres\", got %q", cfg.Store.Backend)
	}

	if len(cfg.Search.Queries) == 0 {
		return fmt.Errorf("search.queries must not be empty")
	}

	enabled := 0
	for _, p := range cfg.Providers {
		if p.Enabled {
			enabled++
		}
		if p.Name == "" {
			return fmt.Errorf("every provider needs a name")
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	for _, loc := range cfg.Search.Locations {
		if loc.Weight < 0 {
			return fmt.Errorf("search location %q has negative weight", loc.Name)
		}
	}

	return nil
}
