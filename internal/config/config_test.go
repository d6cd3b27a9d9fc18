package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"poolratio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "base", cfg.Network)
	assert.Equal(t, "HIGHER", cfg.TokenA.Label)
	assert.Equal(t, "DEGEN", cfg.TokenB.Label)
	assert.Equal(t, 30, cfg.DaysBack)
	assert.Equal(t, "day", cfg.Resolution)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().TokenA, cfg.TokenA)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network: eth
token_a:
  label: PEPE
  pool: "0x111"
token_b:
  label: WETH
  pool: "0x222"
days_back: 7
resolution: hour
chart:
  output: out.svg
  ratio_sma_period: 5
`), 0644))

	t.Setenv("POOLRATIO_POOL_B", "0x333")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	pair, err := cfg.Pair()
	require.NoError(t, err)
	assert.Equal(t, model.PairConfig{
		Network:    "eth",
		A:          model.Pool{Label: "PEPE", Address: "0x111"},
		B:          model.Pool{Label: "WETH", Address: "0x333"},
		Resolution: model.ResolutionHour,
		DaysBack:   7,
	}, pair)
	assert.Equal(t, "out.svg", cfg.Chart.Output)
	assert.Equal(t, 5, cfg.Chart.RatioSMAPeriod)
	assert.Equal(t, 8.0, cfg.Chart.WidthInches)
	assert.True(t, cfg.TelegramEnabled())

	timeout, err := cfg.APITimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoad_BadEnvDays(t *testing.T) {
	t.Setenv("POOLRATIO_DAYS_BACK", "thirty")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "negative days", mutate: func(c *Config) { c.DaysBack = -1 }, errMsg: "days_back must be positive"},
		{name: "bad resolution", mutate: func(c *Config) { c.Resolution = "minute" }, errMsg: "unknown resolution"},
		{name: "missing pool", mutate: func(c *Config) { c.TokenB.Address = "" }, errMsg: "token_b.pool"},
		{name: "bad timeout", mutate: func(c *Config) { c.API.Timeout = "soon" }, errMsg: "api.timeout"},
		{name: "bad annotate mode", mutate: func(c *Config) { c.Chart.AnnotatePriceAt = "middle" }, errMsg: "annotate_price_at"},
		{name: "bad output ext", mutate: func(c *Config) { c.Chart.Output = "chart.gif" }, errMsg: "chart.output"},
		{name: "half telegram", mutate: func(c *Config) { c.Telegram.BotToken = "x" }, errMsg: "must be set together"},
		{name: "negative sma", mutate: func(c *Config) { c.Chart.RatioSMAPeriod = -2 }, errMsg: "ratio_sma_period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolratio.yaml")
	cfg := Default()
	cfg.DaysBack = 90
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, loaded.DaysBack)
	assert.Equal(t, cfg.TokenB, loaded.TokenB)
	assert.Equal(t, cfg.Chart, loaded.Chart)
}

func TestLoad_ExplicitZeroDaysIsRejected(t *testing.T) {
	t.Setenv("POOLRATIO_DAYS_BACK", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("days_back: 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.DaysBack)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days_back must be positive")
}

func TestLoad_OmittedDaysUsesDefault(t *testing.T) {
	t.Setenv("POOLRATIO_DAYS_BACK", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: base\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.DaysBack)
}
