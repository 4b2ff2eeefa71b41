// Package config loads server and utility settings from the environment,
// an optional promptlib.yaml and command-line flags.
package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
	"io/fs"
	"os"
	"strings"
	"time"
)

const (
	EnvPrefix      = "PROMPTLIB"
	DefaultAPIBase = "http://localhost:5000/api"
)

type Settings struct {
	Port           int           `mapstructure:"port"`
	DBPath         string        `mapstructure:"db_path"`
	APIBase        string        `mapstructure:"api_base"`
	BackupDir      string        `mapstructure:"backup_dir"`
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	S3Bucket       string        `mapstructure:"s3_bucket"`
	S3Region       string        `mapstructure:"s3_region"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Address is the listen address for the HTTP server.
func (s *Settings) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// NewViper returns a viper instance with every default and env binding set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 5000)
	v.SetDefault("db_path", "./db.sqlite")
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("backup_dir", "./backups")
	v.SetDefault("backup_interval", time.Duration(0))
	v.SetDefault("request_delay", 100*time.Millisecond)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The utilities historically read API_BASE.
	_ = v.BindEnv("api_base", EnvPrefix+"_API_BASE", "API_BASE")
	return v
}

// Load reads cfgFile (or ./promptlib.yaml when empty, if present) into v and
// decodes the result.
func Load(v *viper.Viper, cfgFile string) (*Settings, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("promptlib")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if s.Port <= 0 || s.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", s.Port)
	}
	if s.RequestDelay < 0 {
		return nil, fmt.Errorf("request_delay cannot be negative")
	}
	if s.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request_timeout must be positive")
	}
	if s.BackupInterval < 0 {
		return nil, fmt.Errorf("backup_interval cannot be negative")
	}
	s.APIBase = strings.TrimRight(s.APIBase, "/")
	return &s, nil
}

// LoadEnv exports environment variables before viper reads them: from AWS SSM
// when GO_ENV is production, otherwise from a .env file if one exists.
func LoadEnv() error {
	if os.Getenv("GO_ENV") == "production" {
		return LoadProdEnv()
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ParseLogLevel maps a level name to gommon's levels, defaulting to INFO.
func ParseLogLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
