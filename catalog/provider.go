package catalog

import (
	"context"

	"github.com/tidepool-org/labreport/config"
	"go.uber.org/zap"
)

//go:generate go tool mockgen -source=./provider.go -destination=./test/mock_provider.go -package test

type Provider interface {
	Get(ctx context.Context) (*Catalog, error)
}

// FileProvider serves a catalog loaded once from disk. The catalog is treated as
// read only after loading.
type FileProvider struct {
	catalog *Catalog
}

var _ Provider = &FileProvider{}

func NewFileProvider(cfg *config.Config, logger *zap.SugaredLogger) (Provider, error) {
	c, err := Load(cfg.CatalogPath, cfg.CatalogOverridesPath)
	if err != nil {
		return nil, err
	}

	logger.Infow("loaded catalog",
		"path", cfg.CatalogPath,
		"overrides", cfg.CatalogOverridesPath,
		"tests", len(c.Tests),
		"profiles", len(c.Profiles),
	)

	return &FileProvider{catalog: c}, nil
}

// NewStaticProvider returns a provider for an in-memory catalog.
func NewStaticProvider(c *Catalog) Provider {
	return &FileProvider{catalog: c}
}

func (f *FileProvider) Get(ctx context.Context) (*Catalog, error) {
	return f.catalog, nil
}
