package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"poolratio/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"api"`
	Network    string     `yaml:"network"`
	TokenA     model.Pool `yaml:"token_a"`
	TokenB     model.Pool `yaml:"token_b"`
	DaysBack   int        `yaml:"days_back"`
	Resolution string     `yaml:"resolution"`
	Parallel   bool       `yaml:"parallel"`
	Chart      struct {
		Output          string  `yaml:"output"`
		WidthInches     float64 `yaml:"width_inches"`
		HeightInches    float64 `yaml:"height_inches"`
		AnnotatePriceAt string  `yaml:"annotate_price_at"`
		RatioSMAPeriod  int     `yaml:"ratio_sma_period"`
	} `yaml:"chart"`
	Export struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"export"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file over the defaults, then applies environment
// variable overrides. A missing file is not an error. Numeric keys set explicitly
// to zero keep that value and are caught by Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GECKOTERMINAL_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("POOLRATIO_NETWORK"); v != "" {
		c.Network = v
	}
	if v := os.Getenv("POOLRATIO_POOL_A"); v != "" {
		c.TokenA.Address = v
	}
	if v := os.Getenv("POOLRATIO_POOL_B"); v != "" {
		c.TokenB.Address = v
	}
	if v := os.Getenv("POOLRATIO_DAYS_BACK"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POOLRATIO_DAYS_BACK: %w", err)
		}
		c.DaysBack = days
	}
	if v := os.Getenv("POOLRATIO_RESOLUTION"); v != "" {
		c.Resolution = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = d.API.Timeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = d.API.UserAgent
	}
	if c.Network == "" {
		c.Network = d.Network
	}
	if c.TokenA.Address == "" {
		c.TokenA.Address = d.TokenA.Address
	}
	if c.TokenA.Label == "" {
		c.TokenA.Label = d.TokenA.Label
	}
	if c.TokenB.Address == "" {
		c.TokenB.Address = d.TokenB.Address
	}
	if c.TokenB.Label == "" {
		c.TokenB.Label = d.TokenB.Label
	}
	if c.Resolution == "" {
		c.Resolution = d.Resolution
	}
	if c.Chart.Output == "" {
		c.Chart.Output = d.Chart.Output
	}
	if c.Chart.WidthInches == 0 {
		c.Chart.WidthInches = d.Chart.WidthInches
	}
	if c.Chart.HeightInches == 0 {
		c.Chart.HeightInches = d.Chart.HeightInches
	}
	if c.Chart.AnnotatePriceAt == "" {
		c.Chart.AnnotatePriceAt = d.Chart.AnnotatePriceAt
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = d.Schedule.Cron
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Default returns the configuration for the HIGHER/DEGEN pair on Base.
func Default() *Config {
	c := &Config{}
	c.API.BaseURL = "https://api.geckoterminal.com"
	c.API.Timeout = "30s"
	c.API.UserAgent = "poolratio/" + Version
	c.Network = "base"
	c.TokenA = model.Pool{Label: "HIGHER", Address: "0x87cadde19468283af8d610474ecbd19ed285f698"}
	c.TokenB = model.Pool{Label: "DEGEN", Address: "0xc9034c3e7f58003e6ae0c8438e7c8f4598d5acaa"}
	c.DaysBack = 30
	c.Resolution = string(model.ResolutionDay)
	c.Chart.Output = "relative_price.png"
	c.Chart.WidthInches = 8
	c.Chart.HeightInches = 8
	c.Chart.AnnotatePriceAt = "latest"
	c.Schedule.Cron = "0 5 0 * * *"
	c.LogLevel = "info"
	return c
}

// Version is the application version reported by the CLI.
const Version = "0.3.0"

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var errs error
	if c.Network == "" {
		errs = errors.Join(errs, errors.New("network is required"))
	}
	if c.TokenA.Address == "" || c.TokenB.Address == "" {
		errs = errors.Join(errs, errors.New("token_a.pool and token_b.pool are required"))
	}
	if c.TokenA.Label == "" || c.TokenB.Label == "" {
		errs = errors.Join(errs, errors.New("token_a.label and token_b.label are required"))
	}
	if c.DaysBack <= 0 {
		errs = errors.Join(errs, errors.New("days_back must be positive"))
	}
	if _, err := model.ParseResolution(c.Resolution); err != nil {
		errs = errors.Join(errs, fmt.Errorf("resolution: %w", err))
	}
	if _, err := c.APITimeout(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("api.timeout: %w", err))
	}
	if c.Chart.WidthInches <= 0 || c.Chart.HeightInches <= 0 {
		errs = errors.Join(errs, errors.New("chart dimensions must be positive"))
	}
	switch c.Chart.AnnotatePriceAt {
	case "latest", "first":
	default:
		errs = errors.Join(errs, fmt.Errorf("chart.annotate_price_at must be 'latest' or 'first', got %q", c.Chart.AnnotatePriceAt))
	}
	switch strings.ToLower(filepath.Ext(c.Chart.Output)) {
	case ".png", ".svg", ".pdf":
	default:
		errs = errors.Join(errs, fmt.Errorf("chart.output must end in .png, .svg or .pdf, got %q", c.Chart.Output))
	}
	if c.Chart.RatioSMAPeriod < 0 {
		errs = errors.Join(errs, errors.New("chart.ratio_sma_period cannot be negative"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = errors.Join(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	return errs
}

// APITimeout parses the HTTP client timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// Pair returns the immutable pipeline input described by the config.
func (c *Config) Pair() (model.PairConfig, error) {
	res, err := model.ParseResolution(c.Resolution)
	if err != nil {
		return model.PairConfig{}, err
	}
	return model.PairConfig{
		Network:    c.Network,
		A:          c.TokenA,
		B:          c.TokenB,
		Resolution: res,
		DaysBack:   c.DaysBack,
	}, nil
}

// TelegramEnabled reports whether chart delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
