package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// dirName is the per-user config directory under $HOME.
const dirName = ".datadash"

// Global configuration structure.
type Global struct {
	// Web server
	Addr               string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB        int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Loading
	MaxRows    int  `mapstructure:"max_rows" yaml:"max_rows"`
	ParseDates bool `mapstructure:"parse_dates" yaml:"parse_dates"`

	// Charts
	HistBins    int `mapstructure:"hist_bins" yaml:"hist_bins"`
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"addr", "max_upload_mb", "shutdown_timeout_sec",
	"max_rows", "parse_dates",
	"hist_bins", "chart_width", "chart_height", "preview_rows",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8501")
	v.SetDefault("max_upload_mb", 200)
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("max_rows", 0)
	v.SetDefault("parse_dates", true)
	v.SetDefault("hist_bins", 30)
	v.SetDefault("chart_width", 640)
	v.SetDefault("chart_height", 420)
	v.SetDefault("preview_rows", 5)
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Path resolves the config file location: cfgFile when set, otherwise
// ~/.datadash/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := utils.HomeDir(dirName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datadash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATADASH")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, dirName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set assigns one key from its string form, as given on the command line.
// Malformed values are rejected rather than zeroed.
func (c *Global) Set(key, value string) error {
	var ip *int
	switch key {
	case "addr":
		c.Addr = value
		return c.Validate()
	case "parse_dates":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %q", key, value)
		}
		c.ParseDates = b
		return c.Validate()
	case "max_upload_mb":
		ip = &c.MaxUploadMB
	case "shutdown_timeout_sec":
		ip = &c.ShutdownTimeoutSec
	case "max_rows":
		ip = &c.MaxRows
	case "hist_bins":
		ip = &c.HistBins
	case "chart_width":
		ip = &c.ChartWidth
	case "chart_height":
		ip = &c.ChartHeight
	case "preview_rows":
		ip = &c.PreviewRows
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid int for %s: %q", key, value)
	}
	prev := *ip
	*ip = i
	if err := c.Validate(); err != nil {
		*ip = prev
		return err
	}
	return nil
}

// Validate rejects values the dashboard cannot work with.
func (c *Global) Validate() error {
	switch {
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.HistBins <= 0:
		return fmt.Errorf("hist_bins must be positive, got %d", c.HistBins)
	case c.ChartWidth <= 0 || c.ChartHeight <= 0:
		return fmt.Errorf("chart size must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	case c.PreviewRows < 0:
		return fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows)
	}
	return nil
}
