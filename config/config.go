package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	HttpPort             uint16 `envconfig:"LAB_HTTP_SERVER_PORT" default:"8080" required:"true"`
	CatalogPath          string `envconfig:"LAB_CATALOG_PATH" default:"catalog.json"`
	CatalogOverridesPath string `envconfig:"LAB_CATALOG_OVERRIDES_PATH"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
}

func New() *Config {
	return &Config{}
}

func (c *Config) LoadFromEnv() error {
	return envconfig.Process("", c)
}

// NewConfig loads the service configuration from the environment.
func NewConfig() (*Config, error) {
	cfg := New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}
