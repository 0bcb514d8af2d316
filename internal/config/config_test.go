package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func withEnvFile(t *testing.T, path string) {
	t.Helper()
	prev := EnvFile
	EnvFile = path
	t.Cleanup(func() { EnvFile = prev })
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Source.Pages)
	assert.Equal(t, "Mozilla/5.0", cfg.Source.UserAgent)
	assert.Equal(t, "res/stock_report", cfg.Report.Dir)
	assert.Equal(t, 10, cfg.Report.TableRows)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.CommentaryEnabled())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "absent.env"))
	path := writeConfig(t, `
company: LG화학
source:
  pages: 3
smtp:
  host: smtp.example.com
  username: reporter
  password: from-file
  from: reporter@example.com
  to: [desk@example.com]
logging:
  level: debug
`)
	t.Setenv("STOCKREPORT_SMTP_PASSWORD", "from-env")
	t.Setenv("STOCKREPORT_SOURCE_REQUESTS_PER_SECOND", "1.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "LG화학", cfg.Company)
	assert.Equal(t, 3, cfg.Source.Pages)
	assert.Equal(t, 1.5, cfg.Source.RequestsPerSecond)
	assert.Equal(t, "from-env", cfg.SMTP.Password)
	assert.Equal(t, "smtp.example.com:587", cfg.SMTPAddr())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.ValidateSMTP())
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STOCKREPORT_STORAGE_PATH=runs.db\n"), 0o644))
	withEnvFile(t, envPath)
	t.Cleanup(func() { os.Unsetenv("STOCKREPORT_STORAGE_PATH") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "runs.db", cfg.Storage.Path)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "absent.env"))
	_, err := Load(writeConfig(t, "source: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"negative pages", func(c *Config) { c.Source.Pages = -1 }, "source"},
		{"bad price url", func(c *Config) { c.Source.PriceURL = "not a url" }, "source"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "logging"},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = 1 }, "bot_token"},
		{"telegram without chat", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.BotToken = "t" }, "chat_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSMTP(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	require.Error(t, cfg.ValidateSMTP())

	cfg.SMTP.Host = "smtp.naver.com"
	cfg.SMTP.Username = "u"
	cfg.SMTP.Password = "p"
	cfg.SMTP.From = "sender@example.com"
	cfg.SMTP.To = []string{"not-an-address"}
	require.Error(t, cfg.ValidateSMTP())

	cfg.SMTP.To = []string{"receiver@example.com"}
	assert.NoError(t, cfg.ValidateSMTP())
}

func TestReportLocation(t *testing.T) {
	cfg := &Config{}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).In(cfg.ReportLocation())
	_, offset := now.Zone()
	assert.Equal(t, 9*60*60, offset)
}
