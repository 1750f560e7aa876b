package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig selects the backing store. DSN is a SQLite path,
// ":memory:", or a postgres:// URL.
type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn" yaml:"dsn"`
	ConnectRetries uint   `mapstructure:"connect_retries" yaml:"connect_retries"`
}

// HTTPConfig configures the JSON API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// DropdownConfig holds the global limits of the listing queries.
type DropdownConfig struct {
	// Max caps the page size of every dropdown and the default upper
	// bound of numeric dropdowns.
	Max int `mapstructure:"max" yaml:"max"`
	// ListLimit is the default page size of plain listings.
	ListLimit int `mapstructure:"list_limit" yaml:"list_limit"`
	// Translate enables per-language dropdown translations.
	Translate bool `mapstructure:"translate" yaml:"translate"`
	// NumberFormat is the default format of numeric labels, see format.NumberFormat.
	NumberFormat int `mapstructure:"number_format" yaml:"number_format"`
	// Decimals is the default precision of unit-formatted values.
	Decimals int `mapstructure:"decimals" yaml:"decimals"`
	// EntityCacheTTL bounds how long the entity hierarchy is cached; 0
	// caches it for the life of the process.
	EntityCacheTTL time.Duration `mapstructure:"entity_cache_ttl" yaml:"entity_cache_ttl"`
}

// SessionConfig holds the defaults applied to new sessions.
type SessionConfig struct {
	DefaultLanguage string        `mapstructure:"default_language" yaml:"default_language"`
	IDORTokenTTL    time.Duration `mapstructure:"idor_token_ttl" yaml:"idor_token_ttl"`
	ShowIDs         bool          `mapstructure:"show_ids" yaml:"show_ids"`
	FlatTree        bool          `mapstructure:"flat_tree" yaml:"flat_tree"`
}

// Language is an entry of the language catalog.
type Language struct {
	Code string `mapstructure:"code" yaml:"code"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Config wraps the whole service configuration.
type Config struct {
	Database  DatabaseConfig `mapstructure:"database" yaml:"database"`
	HTTP      HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
	Dropdown  DropdownConfig `mapstructure:"dropdown" yaml:"dropdown"`
	Session   SessionConfig  `mapstructure:"session" yaml:"session"`
	Languages []Language     `mapstructure:"languages" yaml:"languages"`
}

// Default returns a Config with sensible defaults: a local SQLite file,
// 100 entries per dropdown page and an English session language.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			DSN:            "dropdown.db",
			ConnectRetries: 5,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Dropdown: DropdownConfig{
			Max:            100,
			ListLimit:      15,
			Decimals:       2,
			EntityCacheTTL: time.Minute,
		},
		Session: SessionConfig{
			DefaultLanguage: "en_GB",
			IDORTokenTTL:    2 * time.Hour,
		},
		Languages: []Language{
			{Code: "cs_CZ", Name: "Čeština"},
			{Code: "de_DE", Name: "Deutsch"},
			{Code: "en_GB", Name: "English"},
			{Code: "en_US", Name: "English (US)"},
			{Code: "es_ES", Name: "Español"},
			{Code: "fr_FR", Name: "Français"},
			{Code: "it_IT", Name: "Italiano"},
			{Code: "pt_BR", Name: "Português do Brasil"},
		},
	}
}

// Load reads the config file at filePath when it exists, then applies
// environment overrides. A .env file next to the working directory is
// loaded first so its variables take part in the overrides.
func Load(filePath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, Default())

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", filePath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the services depend on.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.Dropdown.Max <= 0 {
		return fmt.Errorf("config: dropdown.max must be positive, got %d", c.Dropdown.Max)
	}
	if c.Dropdown.ListLimit <= 0 {
		return fmt.Errorf("config: dropdown.list_limit must be positive, got %d", c.Dropdown.ListLimit)
	}
	if c.Dropdown.NumberFormat < 0 || c.Dropdown.NumberFormat > 4 {
		return fmt.Errorf("config: dropdown.number_format must be between 0 and 4, got %d", c.Dropdown.NumberFormat)
	}
	if c.Dropdown.Decimals < 0 || c.Dropdown.Decimals > 9 {
		return fmt.Errorf("config: dropdown.decimals must be between 0 and 9, got %d", c.Dropdown.Decimals)
	}
	if c.Dropdown.EntityCacheTTL < 0 {
		return errors.New("config: dropdown.entity_cache_ttl must not be negative")
	}
	if c.Session.IDORTokenTTL <= 0 {
		return errors.New("config: session.idor_token_ttl must be positive")
	}
	if !c.HasLanguage(c.Session.DefaultLanguage) {
		return fmt.Errorf("config: session.default_language %q is not in the language catalog", c.Session.DefaultLanguage)
	}
	return nil
}

// HasLanguage reports whether code is in the language catalog.
func (c *Config) HasLanguage(code string) bool {
	return slices.ContainsFunc(c.Languages, func(l Language) bool { return l.Code == code })
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.connect_retries", d.Database.ConnectRetries)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("dropdown.max", d.Dropdown.Max)
	v.SetDefault("dropdown.list_limit", d.Dropdown.ListLimit)
	v.SetDefault("dropdown.translate", d.Dropdown.Translate)
	v.SetDefault("dropdown.number_format", d.Dropdown.NumberFormat)
	v.SetDefault("dropdown.decimals", d.Dropdown.Decimals)
	v.SetDefault("dropdown.entity_cache_ttl", d.Dropdown.EntityCacheTTL)
	v.SetDefault("session.default_language", d.Session.DefaultLanguage)
	v.SetDefault("session.idor_token_ttl", d.Session.IDORTokenTTL)
	v.SetDefault("session.show_ids", d.Session.ShowIDs)
	v.SetDefault("session.flat_tree", d.Session.FlatTree)
	v.SetDefault("languages", d.Languages)
}

// envBindings maps config keys to the environment variables that may set
// them. The first name wins when several are set.
var envBindings = map[string][]string{
	"database.dsn":              {"DROPDOWN_DATABASE_DSN", "DROPDOWN_DB"},
	"database.connect_retries":  {"DROPDOWN_DATABASE_CONNECT_RETRIES"},
	"http.addr":                 {"DROPDOWN_HTTP_ADDR"},
	"http.shutdown_timeout":     {"DROPDOWN_HTTP_SHUTDOWN_TIMEOUT"},
	"log.level":                 {"DROPDOWN_LOG_LEVEL"},
	"log.development":           {"DROPDOWN_LOG_DEVELOPMENT"},
	"dropdown.max":              {"DROPDOWN_MAX"},
	"dropdown.list_limit":       {"DROPDOWN_LIST_LIMIT"},
	"dropdown.translate":        {"DROPDOWN_TRANSLATE"},
	"dropdown.number_format":    {"DROPDOWN_NUMBER_FORMAT"},
	"dropdown.decimals":         {"DROPDOWN_DECIMALS"},
	"dropdown.entity_cache_ttl": {"DROPDOWN_ENTITY_CACHE_TTL"},
	"session.default_language":  {"DROPDOWN_SESSION_DEFAULT_LANGUAGE"},
	"session.idor_token_ttl":    {"DROPDOWN_SESSION_IDOR_TOKEN_TTL"},
	"session.show_ids":          {"DROPDOWN_SESSION_SHOW_IDS"},
	"session.flat_tree":         {"DROPDOWN_SESSION_FLAT_TREE"},
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}
