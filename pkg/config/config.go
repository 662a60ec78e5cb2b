package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalDesk/internal/usecase"

	"gopkg.in/yaml.v3"
)

const (
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"

	// DefaultTimeBudget applies when engine.time_budget is absent; an
	// explicit 0 disables the budget.
	DefaultTimeBudget = 90 * time.Second
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level          string        `yaml:"level"`
		Format         string        `yaml:"format"`
		Output         string        `yaml:"output"`
		CollectorTopic string        `yaml:"collector_topic"`
		FlushInterval  time.Duration `yaml:"flush_interval"`
	} `yaml:"logging"`
	Store struct {
		Backend string `yaml:"backend"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		InitSchema       bool          `yaml:"init_schema"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Kafka struct {
		Enabled          bool     `yaml:"enabled"`
		Brokers          []string `yaml:"brokers"`
		Topic            string   `yaml:"topic"`
		RequiredAcks     int      `yaml:"required_acks"`
		Compression      string   `yaml:"compression"`
		AutoCreateTopics bool     `yaml:"auto_create_topics"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		Enabled         bool          `yaml:"enabled"`
		Addr            string        `yaml:"addr"`
		Password        string        `yaml:"password"`
		DB              int           `yaml:"db"`
		Prefix          string        `yaml:"prefix"`
		SeriesTTL       time.Duration `yaml:"series_ttl"`
		SnapshotTTL     time.Duration `yaml:"snapshot_ttl"`
		LockTTL         time.Duration `yaml:"lock_ttl"`
		MemorySize      int           `yaml:"memory_size"`
		MemoryTTL       time.Duration `yaml:"memory_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"cache"`
	Engine struct {
		TimeBudget             time.Duration `yaml:"time_budget"`
		CheckEvery             int           `yaml:"check_every"`
		Workers                int           `yaml:"workers"`
		MinPrice               float64       `yaml:"min_price"`
		PredictionLookbackDays int           `yaml:"prediction_lookback_days"`
		ScreeningLookbackDays  int           `yaml:"screening_lookback_days"`
	} `yaml:"engine"`
	Thresholds usecase.Thresholds `yaml:"thresholds"`
}

// Load reads and parses a YAML configuration file, fills defaults and
// validates.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment
// variables before validating.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// keys where 0 is meaningful are preset so that only an absent key
	// takes the default
	var c Config
	c.Engine.TimeBudget = DefaultTimeBudget
	c.Engine.MinPrice = usecase.DefaultMinPrice
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
		c.Cache.Enabled = true
	}
	if v := getenv("TIME_BUDGET"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIME_BUDGET: %w", err)
		}
		c.Engine.TimeBudget = d
	}
	if v := getenv("ENGINE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENGINE_WORKERS: %w", err)
		}
		c.Engine.Workers = n
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) finish() error {
	c.setDefaults()
	if err := c.Thresholds.Normalize(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.FlushInterval == 0 {
		c.Logging.FlushInterval = 30 * time.Second
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendSQLite
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "market"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "signaldesk.runs"
	}
	if c.Cache.SeriesTTL == 0 {
		c.Cache.SeriesTTL = 6 * time.Hour
	}
	if c.Cache.SnapshotTTL == 0 {
		c.Cache.SnapshotTTL = 7 * 24 * time.Hour
	}
	if c.Cache.LockTTL == 0 {
		c.Cache.LockTTL = 15 * time.Minute
	}
	if c.Engine.CheckEvery == 0 {
		c.Engine.CheckEvery = usecase.DefaultCheckEvery
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 1
	}
	if c.Engine.PredictionLookbackDays == 0 {
		c.Engine.PredictionLookbackDays = usecase.DefaultPredictionLookbackDays
	}
	if c.Engine.ScreeningLookbackDays == 0 {
		c.Engine.ScreeningLookbackDays = usecase.DefaultScreeningLookbackDays
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Backend {
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse backend")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be '%s' or '%s', got '%s'", BackendClickHouse, BackendSQLite, c.Store.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when the cache is enabled")
	}
	if c.Engine.TimeBudget < 0 {
		return fmt.Errorf("engine.time_budget cannot be negative")
	}
	if c.Engine.Workers < 1 || c.Engine.CheckEvery < 1 {
		return fmt.Errorf("engine.workers and engine.check_every must be positive")
	}
	if c.Engine.MinPrice < 0 {
		return fmt.Errorf("engine.min_price cannot be negative")
	}
	return nil
}
