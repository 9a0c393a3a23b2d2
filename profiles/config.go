package profiles

import "github.com/kelseyhightower/envconfig"

const (
	DefaultOverlapThreshold   = 0.5
	DefaultCustomPackageKey   = "custom"
	DefaultCustomPackageLabel = "Custom Package"
)

type Config struct {
	// OverlapThreshold is the minimum share of ungrouped tests a catalog profile
	// must contain to claim them.
	OverlapThreshold   float64 `envconfig:"LAB_PROFILES_OVERLAP_THRESHOLD" default:"0.5"`
	CustomPackageKey   string  `envconfig:"LAB_PROFILES_CUSTOM_KEY" default:"custom"`
	CustomPackageLabel string  `envconfig:"LAB_PROFILES_CUSTOM_LABEL" default:"Custom Package"`
}

func DefaultConfig() *Config {
	return &Config{
		OverlapThreshold:   DefaultOverlapThreshold,
		CustomPackageKey:   DefaultCustomPackageKey,
		CustomPackageLabel: DefaultCustomPackageLabel,
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
