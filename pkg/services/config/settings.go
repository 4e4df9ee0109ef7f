package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "FTS"

type RetrySettings struct {
	Max     int
	WaitMin time.Duration
	WaitMax time.Duration
}

// Settings are the run settings read from the YAML config, FTS_* env and flags.
type Settings struct {
	OutputDir string
	Year      int
	Countries []string
	DBPath    string
	Bucket    string
	Prefix    string
	Region    string
	Retry     RetrySettings
	Timeout   time.Duration
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "output")
	v.SetDefault("year", time.Now().Year())
	v.SetDefault("countries", []string{})
	v.SetDefault("db_path", "funding-atlas.duckdb")
	v.SetDefault("bucket", "")
	v.SetDefault("prefix", "fts")
	v.SetDefault("region", "")
	v.SetDefault("retry.max", 5)
	v.SetDefault("retry.wait_min", time.Second)
	v.SetDefault("retry.wait_max", 30*time.Second)
	v.SetDefault("timeout", 60*time.Second)
}

// NewViper returns a viper instance with defaults and FTS_* env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfig merges a YAML config file into v. An empty path reads
// config.yaml from ~/.config/fts or the working directory when present.
func ReadConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fts"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func LoadSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		OutputDir: v.GetString("output_dir"),
		Year:      v.GetInt("year"),
		Countries: v.GetStringSlice("countries"),
		DBPath:    v.GetString("db_path"),
		Bucket:    v.GetString("bucket"),
		Prefix:    strings.Trim(v.GetString("prefix"), "/"),
		Region:    v.GetString("region"),
		Retry: RetrySettings{
			Max:     v.GetInt("retry.max"),
			WaitMin: v.GetDuration("retry.wait_min"),
			WaitMax: v.GetDuration("retry.wait_max"),
		},
		Timeout: v.GetDuration("timeout"),
	}

	if s.Year < 1990 {
		return Settings{}, fmt.Errorf("invalid year %d", s.Year)
	}
	if s.Retry.Max < 0 {
		return Settings{}, fmt.Errorf("invalid retry.max %d", s.Retry.Max)
	}
	if s.Retry.WaitMax < s.Retry.WaitMin {
		return Settings{}, fmt.Errorf("retry.wait_max %s is below retry.wait_min %s", s.Retry.WaitMax, s.Retry.WaitMin)
	}
	return s, nil
}
