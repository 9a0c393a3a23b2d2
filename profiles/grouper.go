package profiles

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tidepool-org/labreport/results"
)

// Resolution records how a group obtained its key.
type Resolution string

const (
	ResolutionDirect  Resolution = "direct"
	ResolutionOverlap Resolution = "overlap"
	ResolutionCustom  Resolution = "custom"
)

type Group struct {
	Key        string             `json:"key"`
	Resolution Resolution         `json:"resolution"`
	Snapshots  []results.Snapshot `json:"snapshots"`
}

func (g Group) SnapshotPrice() float64 {
	total := 0.0
	for _, s := range g.Snapshots {
		total += s.PriceOrZero()
	}
	return total
}

func (g Group) TestIds() []string {
	ids := make([]string, 0, len(g.Snapshots))
	for _, s := range g.Snapshots {
		ids = append(ids, s.TestId)
	}
	return ids
}

// Groups are ordered by the position at which each key was first seen.
type Groups []Group

func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for _, group := range g {
		keys = append(keys, group.Key)
	}
	return keys
}

func (g Groups) Get(key string) (Group, bool) {
	for _, group := range g {
		if group.Key == key {
			return group, true
		}
	}
	return Group{}, false
}

// Snapshots returns every grouped snapshot in group order.
func (g Groups) Snapshots() []results.Snapshot {
	snapshots := make([]results.Snapshot, 0)
	for _, group := range g {
		snapshots = append(snapshots, group.Snapshots...)
	}
	return snapshots
}

type Grouper struct {
	threshold float64
}

func NewGrouper(cfg *Config) *Grouper {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Grouper{threshold: cfg.OverlapThreshold}
}

type bucket struct {
	resolution Resolution
	indices    []int
}

// Group partitions the snapshots of a visit by profile key. Every snapshot ends
// up in exactly one group. Snapshots without a key are assigned together, either
// to the catalog profile that best covers their tests or to the custom package.
func (g *Grouper) Group(snapshots []results.Snapshot, c *Catalog) Groups {
	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	ungrouped := make([]int, 0)
	fallbackAt := -1

	for i, s := range snapshots {
		key := strings.TrimSpace(s.ProfileId)
		if key == "" {
			if fallbackAt < 0 {
				fallbackAt = len(order)
				order = append(order, "")
			}
			ungrouped = append(ungrouped, i)
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{resolution: ResolutionDirect}
			buckets[key] = b
			order = append(order, key)
		}
		b.indices = append(b.indices, i)
	}

	if fallbackAt >= 0 {
		key, resolution := g.Match(snapshots, ungrouped, c)
		if b, ok := buckets[key]; ok {
			if pos := slices.Index(order, key); pos > fallbackAt {
				order = slices.Delete(order, pos, pos+1)
				order[fallbackAt] = key
				b.resolution = resolution
			} else {
				order = slices.Delete(order, fallbackAt, fallbackAt+1)
			}
			b.indices = append(b.indices, ungrouped...)
			slices.Sort(b.indices)
		} else {
			buckets[key] = &bucket{resolution: resolution, indices: ungrouped}
			order[fallbackAt] = key
		}
	}

	groups := make(Groups, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		group := Group{
			Key:        key,
			Resolution: b.resolution,
			Snapshots:  make([]results.Snapshot, 0, len(b.indices)),
		}
		for _, i := range b.indices {
			s := snapshots[i]
			s.ProfileId = key
			group.Snapshots = append(group.Snapshots, s)
		}
		groups = append(groups, group)
	}
	return groups
}

// Match picks the key for the snapshots at the given indices. The overlap of a
// profile is the share of the distinct test ids that are members of it. The
// first active profile with the highest overlap wins when it reaches the
// threshold, otherwise the custom package key is used.
func (g *Grouper) Match(snapshots []results.Snapshot, indices []int, c *Catalog) (string, Resolution) {
	ids := mapset.NewThreadUnsafeSet[string]()
	for _, i := range indices {
		ids.Add(snapshots[i].TestId)
	}
	if ids.Cardinality() == 0 {
		return c.CustomPackageKey(), ResolutionCustom
	}

	bestKey := ""
	bestOverlap := 0.0
	for _, profile := range c.ActiveProfiles() {
		members := profile.TestSet()
		overlap := float64(ids.Intersect(members).Cardinality()) / float64(ids.Cardinality())
		if overlap > bestOverlap {
			bestKey = profile.ProfileId
			bestOverlap = overlap
		}
	}

	if bestKey != "" && bestOverlap >= g.threshold {
		return bestKey, ResolutionOverlap
	}
	return c.CustomPackageKey(), ResolutionCustom
}
