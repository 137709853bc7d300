package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smilemakc/bars/internal/utils"
)

// Config is the client process's own settings — how to reach the
// channel server, at what level to log, and which ICAOs to track on
// startup. It is distinct from domain.Config, the aerodrome
// configuration the server sends over the channel.
type Config struct {
	ServerAddr string   `yaml:"server_addr"`
	AuthToken  string   `yaml:"auth_token"`
	LogLevel   string   `yaml:"log_level"`
	Aerodromes []string `yaml:"aerodromes"`
}

// Default returns the process settings used when no config file is
// present.
func Default() *Config {
	return &Config{
		ServerAddr: "ws://localhost:8080/channel",
		LogLevel:   "info",
	}
}

// Load reads process settings from a YAML file at path, overlaying
// environment variables for the fields operators most commonly need
// to override at deploy time.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// A config file that sets some fields and omits others must not
	// blank out the defaults for the ones it left empty.
	cfg.ServerAddr = utils.DefaultValue(cfg.ServerAddr, Default().ServerAddr)
	cfg.LogLevel = utils.DefaultValue(cfg.LogLevel, Default().LogLevel)

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("BARS_SERVER_ADDR"); ok {
		cfg.ServerAddr = v
	}
	if v, ok := os.LookupEnv("BARS_AUTH_TOKEN"); ok {
		cfg.AuthToken = v
	}
	if v, ok := os.LookupEnv("BARS_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
}
