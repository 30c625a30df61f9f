package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Data source kinds.
const (
	SourcePostgrest = "postgrest"
	SourcePostgres  = "postgres"
	SourceCSV       = "csv"
)

// Renderer modes.
const (
	UIWeb     = "web"
	UIConsole = "console"
	UIPrint   = "print"
)

// environment variables holding connection secrets
const (
	envSupabaseURL = "SUPABASE_URL"
	envSupabaseKey = "SUPABASE_KEY"
	envDatabaseURL = "DATABASE_URL"
)

const (
	defaultTable  = "Exchange_users_invoices"
	defaultAddr   = ":8080"
	defaultLocale = "ru"

	// console mode keeps the terminal for the forms
	defaultConsoleLogFile = "invoiceview.log"
)

type Config struct {
	Source       string
	URL          string
	APIKey       string
	Table        string
	DSN          string
	CSVPath      string
	FetchTimeout time.Duration
	UI           string
	Addr         string
	Locale       language.Tag
	SortOnFilter bool
	LogLevel     zapcore.Level
	LogFile      string
}

type ConfigTmp struct {
	Source struct {
		Kind         string `yaml:"kind"`
		URL          string `yaml:"url,omitempty"`
		APIKey       string `yaml:"api_key,omitempty"`
		Table        string `yaml:"table,omitempty"`
		DSN          string `yaml:"dsn,omitempty"`
		CSVPath      string `yaml:"csv_path,omitempty"`
		FetchTimeout string `yaml:"fetch_timeout,omitempty"`
	} `yaml:"source"`
	UI struct {
		Mode string `yaml:"mode,omitempty"`
		Addr string `yaml:"addr,omitempty"`
	} `yaml:"ui"`
	View struct {
		Locale       string `yaml:"locale,omitempty"`
		SortOnFilter bool   `yaml:"sort_on_filter,omitempty"`
	} `yaml:"view"`
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// Get reads the configuration from the process arguments and environment.
func Get() (Config, error) {
	return Parse(os.Args[1:], os.Getenv)
}

// Parse reads the configuration from args. When --config is given the YAML file
// is used and the other flags are ignored. Secrets missing from the file or the
// flags are taken from getenv.
func Parse(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("invoiceview", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	source := fs.String("source", SourcePostgrest, "data source: postgrest, postgres or csv")
	url := fs.String("url", "", "Supabase project URL, defaults to $"+envSupabaseURL)
	apiKey := fs.String("apikey", "", "Supabase API key, defaults to $"+envSupabaseKey)
	table := fs.String("table", defaultTable, "table name")
	dsn := fs.String("dsn", "", "PostgreSQL DSN, defaults to $"+envDatabaseURL)
	csvPath := fs.String("csv", "", "path to a CSV export of the table")
	fetchTimeout := fs.Duration("fetch-timeout", 0, "timeout of the initial fetch, 0 means none")
	ui := fs.String("ui", UIWeb, "renderer: web, console or print")
	addr := fs.String("addr", defaultAddr, "web listen address")
	locale := fs.String("locale", defaultLocale, "locale for text sorting and case folding")
	sortOnFilter := fs.Bool("sort-on-filter", false, "re-apply the active sort after the filter changes")
	logLevel := fs.String("log-level", "info", "log level")
	logFile := fs.String("log-file", "", "write logs to this file, console mode defaults to "+defaultConsoleLogFile)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if *configPath != "" {
		f, err := os.ReadFile(*configPath)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(f, &tmp); err != nil {
			return Config{}, fmt.Errorf("incorrect yaml config %s, error: %w", *configPath, err)
		}
	} else {
		tmp.Source.Kind = *source
		tmp.Source.URL = *url
		tmp.Source.APIKey = *apiKey
		tmp.Source.Table = *table
		tmp.Source.DSN = *dsn
		tmp.Source.CSVPath = *csvPath
		if *fetchTimeout != 0 {
			tmp.Source.FetchTimeout = fetchTimeout.String()
		}
		tmp.UI.Mode = *ui
		tmp.UI.Addr = *addr
		tmp.View.Locale = *locale
		tmp.View.SortOnFilter = *sortOnFilter
		tmp.LogLevel = *logLevel
		tmp.LogFile = *logFile
	}

	return fromTmp(tmp, getenv)
}

func fromTmp(c ConfigTmp, getenv func(string) string) (Config, error) {
	conf := Config{
		Source:       c.Source.Kind,
		URL:          c.Source.URL,
		APIKey:       c.Source.APIKey,
		Table:        c.Source.Table,
		DSN:          c.Source.DSN,
		CSVPath:      c.Source.CSVPath,
		UI:           c.UI.Mode,
		Addr:         c.UI.Addr,
		SortOnFilter: c.View.SortOnFilter,
		LogFile:      c.LogFile,
	}

	// Apply defaults
	if conf.Source == "" {
		conf.Source = SourcePostgrest
	}
	if conf.Table == "" {
		conf.Table = defaultTable
	}
	if conf.UI == "" {
		conf.UI = UIWeb
	}
	if conf.Addr == "" {
		conf.Addr = defaultAddr
	}
	if conf.URL == "" {
		conf.URL = getenv(envSupabaseURL)
	}
	if conf.APIKey == "" {
		conf.APIKey = getenv(envSupabaseKey)
	}
	if conf.DSN == "" {
		conf.DSN = getenv(envDatabaseURL)
	}

	if c.Source.FetchTimeout != "" {
		timeout, err := time.ParseDuration(c.Source.FetchTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'fetch_timeout' param (correct format is 10s), error: %w", err)
		}
		if timeout < 0 {
			return Config{}, fmt.Errorf("'fetch_timeout' must not be negative, got %s", timeout)
		}
		conf.FetchTimeout = timeout
	}

	localeStr := c.View.Locale
	if localeStr == "" {
		localeStr = defaultLocale
	}
	tag, err := language.Parse(localeStr)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'locale' param %q, error: %w", localeStr, err)
	}
	conf.Locale = tag

	level := zapcore.InfoLevel
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return Config{}, fmt.Errorf("incorrect 'log_level' param %q, error: %w", c.LogLevel, err)
		}
	}
	conf.LogLevel = level

	if err := conf.validate(); err != nil {
		return Config{}, err
	}

	return conf, nil
}

func (c Config) validate() error {
	switch c.Source {
	case SourcePostgrest:
		if c.URL == "" {
			return fmt.Errorf("postgrest source requires a URL (--url or $%s)", envSupabaseURL)
		}
		if c.APIKey == "" {
			return fmt.Errorf("postgrest source requires an API key (--apikey or $%s)", envSupabaseKey)
		}
	case SourcePostgres:
		if c.DSN == "" {
			return fmt.Errorf("postgres source requires a DSN (--dsn or $%s)", envDatabaseURL)
		}
	case SourceCSV:
		if c.CSVPath == "" {
			return fmt.Errorf("csv source requires a file path (--csv)")
		}
	default:
		return fmt.Errorf("unsupported source: %s", c.Source)
	}

	switch c.UI {
	case UIWeb, UIConsole, UIPrint:
	default:
		return fmt.Errorf("unsupported ui mode: %s", c.UI)
	}

	return nil
}

// LogOutputPaths returns where the logger writes. An explicit log file wins;
// the console renderer otherwise logs to a file instead of the terminal.
func (c Config) LogOutputPaths() []string {
	if c.LogFile != "" {
		return []string{c.LogFile}
	}
	if c.UI == UIConsole {
		return []string{defaultConsoleLogFile}
	}
	return []string{"stderr"}
}
