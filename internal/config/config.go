package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STOCKREPORT_SMTP_PASSWORD.
const EnvPrefix = "STOCKREPORT"

// EnvFile is loaded into the process environment before overrides are read.
var EnvFile = ".env"

type Config struct {
	Company    string           `yaml:"company"`
	Source     SourceConfig     `yaml:"source"`
	Report     ReportConfig     `yaml:"report"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Commentary CommentaryConfig `yaml:"commentary"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SourceConfig struct {
	DirectoryURL      string  `yaml:"directory_url" split_words:"true" validate:"required,url"`
	PriceURL          string  `yaml:"price_url" split_words:"true" validate:"required,url"`
	Pages             int     `yaml:"pages" validate:"min=1,max=500"`
	UserAgent         string  `yaml:"user_agent" split_words:"true" validate:"required"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" split_words:"true" validate:"min=1"`
	RequestsPerSecond float64 `yaml:"requests_per_second" split_words:"true" validate:"gt=0"`
}

type ReportConfig struct {
	Dir       string `yaml:"dir" validate:"required"`
	Title     string `yaml:"title" validate:"required"`
	TableRows int    `yaml:"table_rows" split_words:"true" validate:"min=1,max=50"`
	Workbook  bool   `yaml:"workbook"`
}

type SMTPConfig struct {
	Host             string   `yaml:"host" validate:"required,hostname|ip"`
	Port             int      `yaml:"port" validate:"min=1,max=65535"`
	Username         string   `yaml:"username" validate:"required"`
	Password         string   `yaml:"password" validate:"required"`
	From             string   `yaml:"from" validate:"required,email"`
	To               []string `yaml:"to" validate:"required,min=1,dive,email"`
	Subject          string   `yaml:"subject"`
	Body             string   `yaml:"body"`
	StrictRecipients bool     `yaml:"strict_recipients" split_words:"true"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token" split_words:"true"`
	ChatID   int64  `yaml:"chat_id" split_words:"true"`
}

type CommentaryConfig struct {
	APIKey         string `yaml:"api_key" split_words:"true"`
	BaseURL        string `yaml:"base_url" split_words:"true"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" split_words:"true"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Load reads the YAML file at path (a missing file is fine), applies .env and
// STOCKREPORT_* environment overrides, fills defaults and validates the
// non-mail sections. Mail settings are checked by ValidateSMTP because only
// the report command needs them.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Source.DirectoryURL == "" {
		cfg.Source.DirectoryURL = "http://kind.krx.co.kr/corpgeneral/corpList.do?method=download"
	}
	if cfg.Source.PriceURL == "" {
		cfg.Source.PriceURL = "https://finance.naver.com/item/sise_day.naver"
	}
	if cfg.Source.Pages == 0 {
		cfg.Source.Pages = 20
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = "Mozilla/5.0"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 30
	}
	if cfg.Source.RequestsPerSecond == 0 {
		cfg.Source.RequestsPerSecond = 4
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "res/stock_report"
	}
	if cfg.Report.Title == "" {
		cfg.Report.Title = "주식 보고서"
	}
	if cfg.Report.TableRows == 0 {
		cfg.Report.TableRows = 10
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.Body == "" {
		cfg.SMTP.Body = "주식 보고서 분석 자료 입니다"
	}
	if cfg.Commentary.BaseURL == "" {
		cfg.Commentary.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Commentary.Model == "" {
		cfg.Commentary.Model = "deepseek-chat"
	}
	if cfg.Commentary.TimeoutSeconds == 0 {
		cfg.Commentary.TimeoutSeconds = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := validate.Struct(c.Report); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := validate.Struct(c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ValidateSMTP checks the settings needed to deliver the report.
func (c *Config) ValidateSMTP() error {
	if err := validate.Struct(c.SMTP); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// ReportLocation is the zone used to stamp report dates. KRX trades in KST.
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

func (c *Config) CommentaryTimeout() time.Duration {
	return time.Duration(c.Commentary.TimeoutSeconds) * time.Second
}

func (c *Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.SMTP.Host, c.SMTP.Port)
}

func (c *Config) CommentaryEnabled() bool {
	return c.Commentary.APIKey != ""
}

func (c *Config) StorageEnabled() bool {
	return c.Storage.Path != ""
}
