package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func noEnv(string) string { return "" }

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Flags(t *testing.T) {
	conf, err := Parse([]string{
		"--source", "csv",
		"--csv", "invoices.csv",
		"--ui", "console",
		"--locale", "en",
		"--sort-on-filter",
		"--log-level", "debug",
		"--fetch-timeout", "15s",
	}, noEnv)
	require.NoError(t, err)

	assert.Equal(t, SourceCSV, conf.Source)
	assert.Equal(t, "invoices.csv", conf.CSVPath)
	assert.Equal(t, UIConsole, conf.UI)
	assert.Equal(t, "en", conf.Locale.String())
	assert.True(t, conf.SortOnFilter)
	assert.Equal(t, zapcore.DebugLevel, conf.LogLevel)
	assert.Equal(t, 15*time.Second, conf.FetchTimeout)
	assert.Equal(t, defaultTable, conf.Table)
	assert.Equal(t, defaultAddr, conf.Addr)
}

func TestParse_Defaults(t *testing.T) {
	conf, err := Parse(nil, envOf(map[string]string{
		"SUPABASE_URL": "https://project.supabase.co",
		"SUPABASE_KEY": "anon",
	}))
	require.NoError(t, err)

	assert.Equal(t, SourcePostgrest, conf.Source)
	assert.Equal(t, "https://project.supabase.co", conf.URL)
	assert.Equal(t, "anon", conf.APIKey)
	assert.Equal(t, UIWeb, conf.UI)
	assert.Equal(t, "ru", conf.Locale.String())
	assert.False(t, conf.SortOnFilter)
	assert.Equal(t, zapcore.InfoLevel, conf.LogLevel)
	assert.Zero(t, conf.FetchTimeout)
}

func TestParse_FlagOverridesEnv(t *testing.T) {
	conf, err := Parse([]string{"--url", "https://flag.example", "--apikey", "flagkey"}, envOf(map[string]string{
		"SUPABASE_URL": "https://env.example",
		"SUPABASE_KEY": "envkey",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example", conf.URL)
	assert.Equal(t, "flagkey", conf.APIKey)
}

func TestParse_YAML(t *testing.T) {
	content := `source:
  kind: postgres
  table: invoices
  fetch_timeout: 30s
ui:
  mode: print
view:
  locale: ru
  sort_on_filter: true
log_level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	conf, err := Parse([]string{"--config", path, "--ui", "console"}, envOf(map[string]string{
		"DATABASE_URL": "postgres://localhost/app",
	}))
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, conf.Source)
	assert.Equal(t, "postgres://localhost/app", conf.DSN)
	assert.Equal(t, "invoices", conf.Table)
	assert.Equal(t, 30*time.Second, conf.FetchTimeout)
	assert.Equal(t, UIPrint, conf.UI, "flags are ignored when a config file is given")
	assert.True(t, conf.SortOnFilter)
	assert.Equal(t, zapcore.WarnLevel, conf.LogLevel)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgrest without url",
			args:    []string{"--apikey", "k"},
			wantErr: "postgrest source requires a URL",
		},
		{
			name:    "postgrest without key",
			args:    []string{"--url", "https://x"},
			wantErr: "postgrest source requires an API key",
		},
		{
			name:    "postgres without dsn",
			args:    []string{"--source", "postgres"},
			wantErr: "postgres source requires a DSN",
		},
		{
			name:    "csv without path",
			args:    []string{"--source", "csv"},
			wantErr: "csv source requires a file path",
		},
		{
			name:    "unknown source",
			args:    []string{"--source", "mongo"},
			wantErr: "unsupported source: mongo",
		},
		{
			name:    "unknown ui",
			args:    []string{"--source", "csv", "--csv", "a.csv", "--ui", "gtk"},
			wantErr: "unsupported ui mode: gtk",
		},
		{
			name:    "bad locale",
			args:    []string{"--source", "csv", "--csv", "a.csv", "--locale", "not a locale"},
			wantErr: "incorrect 'locale' param",
		},
		{
			name:    "bad log level",
			args:    []string{"--source", "csv", "--csv", "a.csv", "--log-level", "loud"},
			wantErr: "incorrect 'log_level' param",
		},
		{
			name:    "negative timeout",
			args:    []string{"--source", "csv", "--csv", "a.csv", "--fetch-timeout", "-1s"},
			wantErr: "'fetch_timeout' must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, envOf(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0o600))

	_, err := Parse([]string{"--config", path}, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect yaml config")
}

func TestParse_MissingConfigFile(t *testing.T) {
	_, err := Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, noEnv)
	require.Error(t, err)
}

func TestConfig_LogOutputPaths(t *testing.T) {
	tests := []struct {
		name string
		conf Config
		want []string
	}{
		{name: "web logs to stderr", conf: Config{UI: UIWeb}, want: []string{"stderr"}},
		{name: "print logs to stderr", conf: Config{UI: UIPrint}, want: []string{"stderr"}},
		{name: "console logs to file", conf: Config{UI: UIConsole}, want: []string{defaultConsoleLogFile}},
		{name: "explicit file wins", conf: Config{UI: UIConsole, LogFile: "/tmp/iv.log"}, want: []string{"/tmp/iv.log"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conf.LogOutputPaths())
		})
	}
}

func TestParse_LogFile(t *testing.T) {
	conf, err := Parse([]string{"--source", "csv", "--csv", "a.csv", "--ui", "console", "--log-file", "session.log"}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, []string{"session.log"}, conf.LogOutputPaths())
}
