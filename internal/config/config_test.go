package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvStates, EnvOutput, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()

	assert.Equal(t, []string{"DE"}, cfg.States)
	assert.Equal(t, "http://www.artsindexusa.org", cfg.BaseURL)
	assert.Equal(t, "Total nonprofit arts revenue per capita", cfg.Metric)
	assert.Empty(t, cfg.Output)
	assert.Equal(t, "AFA_Nonprofit_Revenue", cfg.Sheet)
	assert.Equal(t, "xlsx", cfg.Format)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	require.NoError(t, cfg.Load())
	assert.Equal(t, "Nonprofit Revenue.xlsx", cfg.Output)
}

func TestLoad_OutputFollowsFormat(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Format = "json"

	require.NoError(t, cfg.Load())
	assert.Equal(t, "Nonprofit Revenue.json", cfg.Output)
}

func TestDefault_Env(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://mirror.example.com")
	t.Setenv(EnvOutput, "/tmp/arts.xlsx")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvStates, "de, ri")

	cfg := Default()

	assert.Equal(t, "http://mirror.example.com", cfg.BaseURL)
	assert.Equal(t, "/tmp/arts.xlsx", cfg.Output)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"DE", "RI"}, DefaultStates())
}

func TestDefaultStates_Unset(t *testing.T) {
	t.Setenv(EnvStates, "")
	assert.Equal(t, []string{"DE"}, DefaultStates())
}

func TestSplitStates(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "single", in: []string{"DE"}, want: []string{"DE"}},
		{name: "comma list", in: []string{"de,ri, ct"}, want: []string{"DE", "RI", "CT"}},
		{name: "repeated flags", in: []string{"DE", "ri"}, want: []string{"DE", "RI"}},
		{name: "empty parts dropped", in: []string{",DE,,", " "}, want: []string{"DE"}},
		{name: "nothing", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStates(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "lowercase states normalized", mutate: func(c *Config) { c.States = []string{"de", "ri"} }},
		{name: "uppercase format normalized", mutate: func(c *Config) { c.Format = "JSON" }},
		{name: "trailing slash trimmed", mutate: func(c *Config) { c.BaseURL = "http://example.com/" }},
		{name: "no states", mutate: func(c *Config) { c.States = nil }, wantErr: "States"},
		{name: "bad state code", mutate: func(c *Config) { c.States = []string{"DEL"} }, wantErr: "States[0]"},
		{name: "numeric state code", mutate: func(c *Config) { c.States = []string{"D1"} }, wantErr: "alpha"},
		{name: "bad base url", mutate: func(c *Config) { c.BaseURL = "artsindexusa" }, wantErr: "BaseURL"},
		{name: "empty metric", mutate: func(c *Config) { c.Metric = "" }, wantErr: "Metric"},
		{name: "sheet too long", mutate: func(c *Config) { c.Sheet = "AFA_Nonprofit_Revenue_By_County_2014" }, wantErr: "Sheet"},
		{name: "sheet with slash", mutate: func(c *Config) { c.Sheet = "AFA/Revenue" }, wantErr: "Sheet"},
		{name: "sheet with backslash", mutate: func(c *Config) { c.Sheet = `AFA\Revenue` }, wantErr: "Sheet"},
		{name: "sheet with brackets", mutate: func(c *Config) { c.Sheet = "Revenue[2014]" }, wantErr: "Sheet"},
		{name: "sheet with colon", mutate: func(c *Config) { c.Sheet = "DE:2014" }, wantErr: "Sheet"},
		{name: "sheet with spaces", mutate: func(c *Config) { c.Sheet = "Nonprofit Revenue" }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "csv" }, wantErr: "Format"},
		{name: "json into workbook", mutate: func(c *Config) { c.Format = "json"; c.Output = "out.xlsx" }, wantErr: "Output"},
		{name: "xlsx into json file", mutate: func(c *Config) { c.Output = "out.json" }, wantErr: "Output"},
		{name: "json with explicit path", mutate: func(c *Config) { c.Format = "json"; c.Output = "arts.json" }},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "Workers"},
		{name: "negative retries", mutate: func(c *Config) { c.Retries = -1 }, wantErr: "Retries"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "Timeout"},
		{name: "bad summary", mutate: func(c *Config) { c.Summary = "yaml" }, wantErr: "Summary"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_ReportsAllFailures(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Workers = 0
	cfg.Format = "csv"

	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Format")
}
