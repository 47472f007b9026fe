package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Hubeau struct {
		BaseURL     string        `yaml:"base_url"`
		Timeout     time.Duration `yaml:"timeout"`
		PageSize    int           `yaml:"page_size"`
		MaxRPS      float64       `yaml:"max_rps"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
		RetryMax    int           `yaml:"retry_max"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
		UserAgent   string        `yaml:"user_agent"`
		Departments []string      `yaml:"departments"`
	} `yaml:"hubeau"`
	EMI struct {
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
		MaxRPS   float64       `yaml:"max_rps"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"emi"`
	Ingest struct {
		StartDate         string   `yaml:"start_date"`
		Workers           int      `yaml:"workers"`
		BlacklistStations []string `yaml:"blacklist_stations"`
	} `yaml:"ingest"`
	Drought struct {
		Frequency       string        `yaml:"frequency"`
		Scale           int           `yaml:"scale"`
		MinHistoryYears int           `yaml:"min_history_years"`
		OutlierFactor   float64       `yaml:"outlier_factor"`
		MinFitPeriods   int           `yaml:"min_fit_periods"`
		ResultTTL       time.Duration `yaml:"result_ttl"`
	} `yaml:"drought"`
	Trend struct {
		YearsNotInTrend    int `yaml:"years_not_in_trend"`
		MinTrendLengthYear int `yaml:"min_trend_length_year"`
	} `yaml:"trend"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("EMI_API_KEY"); v != "" {
		c.EMI.APIKey = v
	}
	if v := os.Getenv("HUBEAU_BASE_URL"); v != "" {
		c.Hubeau.BaseURL = v
	}
	if v := os.Getenv("DEPARTMENTS"); v != "" {
		c.Hubeau.Departments = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.ClickHouse.DialTimeout <= 0 {
		c.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.ClickHouse.ReadTimeout <= 0 {
		c.ClickHouse.ReadTimeout = 10 * time.Second
	}
	if c.ClickHouse.WriteTimeout <= 0 {
		c.ClickHouse.WriteTimeout = 10 * time.Second
	}
	if c.ClickHouse.MaxExecutionTime <= 0 {
		c.ClickHouse.MaxExecutionTime = time.Minute
	}
	if c.Hubeau.Timeout <= 0 {
		c.Hubeau.Timeout = 30 * time.Second
	}
	if c.Hubeau.CacheTTL <= 0 {
		c.Hubeau.CacheTTL = time.Hour
	}
	if c.Hubeau.RetryDelay <= 0 {
		c.Hubeau.RetryDelay = 2 * time.Second
	}
	if c.EMI.Timeout <= 0 {
		c.EMI.Timeout = 30 * time.Second
	}
	if c.EMI.CacheTTL <= 0 {
		c.EMI.CacheTTL = time.Hour
	}
	if c.Drought.ResultTTL <= 0 {
		c.Drought.ResultTTL = time.Hour
	}
	if c.Hubeau.BaseURL == "" {
		c.Hubeau.BaseURL = "https://hubeau.eaufrance.fr/api/v1"
	}
	if c.Hubeau.PageSize <= 0 {
		c.Hubeau.PageSize = 5000
	}
	if c.EMI.BaseURL == "" {
		c.EMI.BaseURL = "https://api.emi.imageau.eu/app"
	}
	if c.Ingest.StartDate == "" {
		c.Ingest.StartDate = "1970-01-01"
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Drought.Frequency == "" {
		c.Drought.Frequency = "monthly"
	}
	if c.Drought.Scale <= 0 {
		c.Drought.Scale = 3
	}
	if c.Drought.MinHistoryYears <= 0 {
		c.Drought.MinHistoryYears = 15
	}
	if c.Drought.OutlierFactor <= 0 {
		c.Drought.OutlierFactor = 2.0
	}
	if c.Drought.MinFitPeriods <= 0 {
		c.Drought.MinFitPeriods = 30
	}
	if c.Trend.YearsNotInTrend <= 0 {
		c.Trend.YearsNotInTrend = 5
	}
	if c.Trend.MinTrendLengthYear <= 0 {
		c.Trend.MinTrendLengthYear = 3
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Drought.Frequency != "monthly" && c.Drought.Frequency != "daily" {
		return fmt.Errorf("drought.frequency must be 'monthly' or 'daily', got '%s'", c.Drought.Frequency)
	}
	if c.Drought.Scale < 1 {
		return fmt.Errorf("drought.scale must be >= 1")
	}
	if len(c.Hubeau.Departments) == 0 {
		return fmt.Errorf("hubeau.departments cannot be empty")
	}
	return nil
}
