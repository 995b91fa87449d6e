package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Report format used when the output path has no recognizable extension.
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"`
	// NumberFormat is "comma" (every ',' is a decimal point) or "auto".
	NumberFormat string `mapstructure:"number_format" yaml:"number_format"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"`
	// Delimiter for text inputs; empty means sniff from the header line.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Run history
	HistoryEnabled bool   `mapstructure:"history_enabled" yaml:"history_enabled"`
	HistoryDB      string `mapstructure:"history_db" yaml:"history_db"`

	// Files analyzed in parallel by `analyze`.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`
}

// Dir returns ~/.outliers.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".outliers"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.outliers/config.yaml, creating the directory if necessary.
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
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("OUTLIERS")
	v.AutomaticEnv()

	v.SetDefault("report_format", "xlsx")
	v.SetDefault("number_format", "comma")
	v.SetDefault("encoding", "utf-8")
	v.SetDefault("delimiter", "")
	v.SetDefault("history_enabled", true)
	v.SetDefault("history_db", "")
	v.SetDefault("jobs", 1)

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
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HistoryDB == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.HistoryDB = filepath.Join(dir, "history.db")
	}
	if c.Jobs < 1 {
		c.Jobs = 1
	}
	return &c, nil
}
