package watcher

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/wippyai/resource-guard/errors"
)

// Config is the endpoint configuration distributed through views.
type Config struct {
	Hostname string `mapstructure:"hostname"`
	URL      string `mapstructure:"url"`
	Port     int    `mapstructure:"port"`
}

// Default returns a Config with the stock values.
func Default() Config {
	return Config{
		Hostname: "localhost",
		Port:     80,
		URL:      "/index.html",
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("hostname must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// load reads path into a Config, applying defaults for absent keys.
func load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	def := Default()
	v.SetDefault("hostname", def.Hostname)
	v.SetDefault("port", def.Port)
	v.SetDefault("url", def.URL)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Load(path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Load(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Load(path, err)
	}
	return cfg, nil
}
