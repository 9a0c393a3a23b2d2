package profiles

import (
	"strings"

	"github.com/tidepool-org/labreport/catalog"
)

// Catalog resolves group keys against the profile catalog. It is the single
// place where a group gets its display label and its price.
type Catalog struct {
	catalog     *catalog.Catalog
	customKey   string
	customLabel string
}

func NewCatalog(c *catalog.Catalog, cfg *Config) *Catalog {
	if c == nil {
		c = &catalog.Catalog{}
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	customKey := strings.TrimSpace(cfg.CustomPackageKey)
	if customKey == "" {
		customKey = DefaultCustomPackageKey
	}
	customLabel := cfg.CustomPackageLabel
	if strings.TrimSpace(customLabel) == "" {
		customLabel = DefaultCustomPackageLabel
	}

	return &Catalog{
		catalog:     c,
		customKey:   customKey,
		customLabel: customLabel,
	}
}

func (c *Catalog) CustomPackageKey() string {
	return c.customKey
}

func (c *Catalog) ActiveProfiles() []catalog.Profile {
	return c.catalog.ActiveProfiles()
}

type Resolved struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
	// Matched is true when the key belongs to a cataloged profile.
	Matched bool `json:"matched"`
}

// Resolve returns the label and price of a group. A group matched to a cataloged
// profile uses the profile name and package price. Every other group, and a
// matched profile without a package price, is priced at the sum of its snapshot
// prices, missing prices counting as zero.
func (c *Catalog) Resolve(group Group) Resolved {
	if profile, ok := c.catalog.Profile(group.Key); ok {
		resolved := Resolved{
			Label:   profile.Name,
			Price:   group.SnapshotPrice(),
			Matched: true,
		}
		if strings.TrimSpace(resolved.Label) == "" {
			resolved.Label = group.Key
		}
		if profile.Price != nil {
			resolved.Price = *profile.Price
		}
		return resolved
	}

	label := group.Key
	if group.Key == c.customKey {
		label = c.customLabel
	}
	return Resolved{
		Label: label,
		Price: group.SnapshotPrice(),
	}
}
