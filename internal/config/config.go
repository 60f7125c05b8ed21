package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Display    int    `mapstructure:"display" yaml:"display"`
	Window     string `mapstructure:"window" yaml:"window"`
	Output     string `mapstructure:"output" yaml:"output"`
	Format     string `mapstructure:"format" yaml:"format"`
	IntervalMS int    `mapstructure:"interval_ms" yaml:"interval_ms"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		Display:    1,
		Output:     "capture.png",
		Format:     "png",
		IntervalMS: 100,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dxcapture")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DXCAPTURE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("display", cfg.Display)
	viper.Set("window", cfg.Window)
	viper.Set("output", cfg.Output)
	viper.Set("format", cfg.Format)
	viper.Set("interval_ms", cfg.IntervalMS)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "dxcapture.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	return viper.WriteConfigAs(cfgPath)
}

// Dump renders the config as YAML, for `config show`.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dxcapture")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "dxcapture")
	default:
		return filepath.Join(os.Getenv("HOME"), ".config", "dxcapture")
	}
}
