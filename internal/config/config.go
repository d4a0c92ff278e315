// Package config resolves runtime settings from .usecase.yaml, USECASE_* env
// vars and CLI flags through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "USECASE"

// ServerConfig holds settings for the HTTP facade.
type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
	TemplateCache int    `mapstructure:"template_cache"`
}

// WatchConfig holds settings for regenerate-on-change.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all runtime configuration.
type Config struct {
	OutputDir         string       `mapstructure:"output_dir"`
	ReferenceDir      string       `mapstructure:"reference_dir"`
	MarkdownTemplates string       `mapstructure:"markdown_templates"`
	ExcelTemplate     string       `mapstructure:"excel_template"`
	CSVDelimiter      string       `mapstructure:"csv_delimiter"`
	HistoryDB         string       `mapstructure:"history_db"`
	Verbose           bool         `mapstructure:"verbose"`
	Server            ServerConfig `mapstructure:"server"`
	Watch             WatchConfig  `mapstructure:"watch"`
}

// Delimiter returns the first rune of CSVDelimiter, or ',' when it is empty.
// A "\t" escape selects a tab.
func (c Config) Delimiter() rune {
	d := c.CSVDelimiter
	if d == `\t` {
		return '\t'
	}
	for _, r := range d {
		return r
	}
	return ','
}

// BindEnv maps USECASE_* environment variables onto config keys, with
// nested keys joined by underscores (USECASE_SERVER_ADDR).
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// DefaultHistoryPath is ~/.usecase/history.db, or empty when the home
// directory is unknown, which disables the run ledger.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".usecase", "history.db")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("output_dir", "")
	viper.SetDefault("reference_dir", "")
	viper.SetDefault("markdown_templates", "")
	viper.SetDefault("excel_template", "")
	viper.SetDefault("csv_delimiter", ",")
	viper.SetDefault("history_db", DefaultHistoryPath())
	viper.SetDefault("verbose", false)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.max_upload_mb", 32)
	viper.SetDefault("server.template_cache", 64)
	viper.SetDefault("watch.debounce", 200*time.Millisecond)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
