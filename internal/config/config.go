package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/survivorlens/internal/loader"
)

// Global configuration structure.
type Global struct {
	// Dataset location: local path or http(s) URL
	Source         string `mapstructure:"source" yaml:"source"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Estimator match windows (half-widths)
	AgeWindow  float64 `mapstructure:"age_window" yaml:"age_window"`
	FareWindow float64 `mapstructure:"fare_window" yaml:"fare_window"`

	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	OutputFormat  string `mapstructure:"output_format" yaml:"output_format"`
	ServeAddr     string `mapstructure:"serve_addr" yaml:"serve_addr"`
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{"source", "http_timeout_sec", "age_window", "fare_window", "histogram_bins", "output_format", "serve_addr"}
}

// Dir returns ~/.survivorlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".survivorlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.survivorlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVIVORLENS")
	v.AutomaticEnv()

	v.SetDefault("source", loader.DefaultSource)
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("age_window", 5.0)
	v.SetDefault("fare_window", 20.0)
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("output_format", "table")
	v.SetDefault("serve_addr", "127.0.0.1:8080")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// a missing file is fine; a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Get returns the string form of a key's value.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "source":
		return c.Source, nil
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), nil
	case "age_window":
		return strconv.FormatFloat(c.AgeWindow, 'g', -1, 64), nil
	case "fare_window":
		return strconv.FormatFloat(c.FareWindow, 'g', -1, 64), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "output_format":
		return c.OutputFormat, nil
	case "serve_addr":
		return c.ServeAddr, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "source":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("source must not be empty")
		}
		c.Source = strings.TrimSpace(val)
	case "http_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
		}
		c.HTTPTimeoutSec = i
	case "age_window":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for age_window: %v", val)
		}
		c.AgeWindow = f
	case "fare_window":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for fare_window: %v", val)
		}
		c.FareWindow = f
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "output_format":
		switch strings.ToLower(val) {
		case "table", "json", "yaml":
			c.OutputFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid output_format: %s (use table, json or yaml)", val)
		}
	case "serve_addr":
		c.ServeAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
