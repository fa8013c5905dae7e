package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the config directory and the environment prefix
const AppName = "omnipg"

// Config holds all application configuration
type Config struct {
	Connection  ConnectionConfig  `mapstructure:"connection"`
	UI          UIConfig          `mapstructure:"ui"`
	OmniBox     OmniBoxConfig     `mapstructure:"omnibox"`
	Data        DataConfig        `mapstructure:"data"`
	History     HistoryConfig     `mapstructure:"history"`
	Views       ViewsConfig       `mapstructure:"views"`
	Log         LogConfig         `mapstructure:"log"`
	Performance PerformanceConfig `mapstructure:"performance"`
}

type ConnectionConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Schema   string `mapstructure:"schema"`
	Table    string `mapstructure:"table"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type OmniBoxConfig struct {
	BackspaceRemoves bool `mapstructure:"backspace_removes"`
	CloseOnComplete  bool `mapstructure:"close_on_complete"`
	DebounceMS       int  `mapstructure:"debounce_ms"`
	MaxOptions       int  `mapstructure:"max_options"`
	DistinctLimit    int  `mapstructure:"distinct_limit"`
	SingletonFilter  bool `mapstructure:"singleton_filter"`
	SingletonSort    bool `mapstructure:"singleton_sort"`
}

type DataConfig struct {
	// File is a JSON or CSV file browsed instead of a PostgreSQL table
	File                 string `mapstructure:"file"`
	PageSize             int    `mapstructure:"page_size"`
	MaxCellDisplayLength int    `mapstructure:"max_cell_display_length"`
}

type HistoryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Path        string `mapstructure:"path"`
	RestoreLast bool   `mapstructure:"restore_last"`
	MaxEntries  int    `mapstructure:"max_entries"`
}

type ViewsConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

type PerformanceConfig struct {
	ConnectionPoolSize int `mapstructure:"connection_pool_size"`
	QueryTimeout       int `mapstructure:"query_timeout"`
}

var defaults = map[string]any{
	"connection.host":                  "localhost",
	"connection.port":                  5432,
	"connection.database":              "postgres",
	"connection.user":                  "postgres",
	"connection.password":              "",
	"connection.sslmode":               "prefer",
	"connection.schema":                "public",
	"connection.table":                 "",
	"ui.theme":                         "default",
	"ui.mouse_enabled":                 true,
	"omnibox.backspace_removes":        true,
	"omnibox.close_on_complete":        false,
	"omnibox.debounce_ms":              150,
	"omnibox.max_options":              50,
	"omnibox.distinct_limit":           200,
	"omnibox.singleton_filter":         false,
	"omnibox.singleton_sort":           true,
	"data.file":                        "",
	"data.page_size":                   100,
	"data.max_cell_display_length":     50,
	"history.enabled":                  true,
	"history.path":                     "",
	"history.restore_last":             true,
	"history.max_entries":              500,
	"views.path":                       "",
	"log.path":                         "",
	"log.level":                        "info",
	"performance.connection_pool_size": 4,
	"performance.query_timeout":        30000,
}

// flagKeys maps command-line flags onto config keys
var flagKeys = map[string]string{
	"host":      "connection.host",
	"port":      "connection.port",
	"db":        "connection.database",
	"user":      "connection.user",
	"sslmode":   "connection.sslmode",
	"schema":    "connection.schema",
	"table":     "connection.table",
	"file":      "data.file",
	"page-size": "data.page_size",
	"theme":     "ui.theme",
	"log-level": "log.level",
	"log-file":  "log.path",
}

// Flags defines the command-line flags of omnipg
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", "", "config file (default: <user config dir>/omnipg/config.yaml)")
	fs.String("host", "localhost", "PostgreSQL host")
	fs.Int("port", 5432, "PostgreSQL port")
	fs.String("db", "postgres", "database name")
	fs.String("user", "postgres", "database user")
	fs.String("sslmode", "prefer", "SSL mode")
	fs.String("schema", "public", "schema of the table")
	fs.String("table", "", "table to browse")
	fs.String("file", "", "JSON, CSV or XLSX file to browse instead of a table (.gz, .bz2 and .xz are unpacked)")
	fs.Int("page-size", 100, "rows per page")
	fs.String("theme", "default", "color theme")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "log file (default: <user config dir>/omnipg/omnipg.log)")
	fs.StringArray("filter", nil, "OmniBox text to apply, e.g. 'filter qty > 10' (repeatable)")
	fs.String("view", "", "open with a saved view")
	fs.String("export", "", "write the filtered rows to a .csv, .json or .xlsx file and exit")
	fs.String("export-views", "", "write saved views to a .csv or .json file and exit")
	fs.Bool("save-password", false, "store the password in the system keyring")
	return fs
}

// Load loads configuration from defaults, the config file, the environment
// (OMNIPG_SECTION_KEY) and flags, in increasing priority
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configDir, err := GetConfigPath(); err == nil {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	explicit := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			explicit = f.Value.String()
			v.SetConfigFile(explicit)
		}
	}

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag %s", name)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	if cfg.History.Path == "" {
		if dir, err := GetConfigPath(); err == nil {
			cfg.History.Path = filepath.Join(dir, "history.db")
		}
	}
	if cfg.Views.Path == "" {
		if dir, err := GetConfigPath(); err == nil {
			cfg.Views.Path = filepath.Join(dir, "views.yaml")
		}
	}
	if cfg.Log.Path == "" {
		if dir, err := GetConfigPath(); err == nil {
			cfg.Log.Path = filepath.Join(dir, AppName+".log")
		}
	}
	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(configDir, AppName), nil
}
