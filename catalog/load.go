package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/TwiN/deepmerge"
)

// keyedCatalog is the shape override documents are written in. Entries are keyed
// by id so an override can patch a single field of a single test or profile.
type keyedCatalog struct {
	Tests    map[string]json.RawMessage `json:"tests,omitempty"`
	Profiles map[string]json.RawMessage `json:"profiles,omitempty"`
}

func Load(path string, overridesPath string) (*Catalog, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog: %w", err)
	}

	c, err := Parse(body)
	if err != nil {
		return nil, err
	}

	if overridesPath == "" {
		return c, nil
	}

	overrides, err := os.ReadFile(overridesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog overrides: %w", err)
	}

	return ApplyOverrides(c, overrides)
}

func Parse(body []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := json.Unmarshal(body, c); err != nil {
		return nil, fmt.Errorf("unable to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyOverrides deep merges an override document into the catalog and returns
// the merged copy. Overridden entries keep their position, new entries are
// appended in id order.
func ApplyOverrides(c *Catalog, overrides []byte) (*Catalog, error) {
	base, err := json.Marshal(toKeyed(c))
	if err != nil {
		return nil, err
	}

	merged, err := deepmerge.JSON(base, overrides, deepmerge.Config{
		PreventMultipleDefinitionsOfKeysWithPrimitiveValue: false,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to merge catalog overrides: %w", err)
	}

	keyed := keyedCatalog{}
	if err := json.Unmarshal(merged, &keyed); err != nil {
		return nil, fmt.Errorf("unable to parse merged catalog: %w", err)
	}

	result := &Catalog{}
	for _, id := range orderedKeys(keyed.Tests, testIds(c)) {
		test := TestDefinition{}
		if err := json.Unmarshal(keyed.Tests[id], &test); err != nil {
			return nil, fmt.Errorf("unable to parse test %s override: %w", id, err)
		}
		if test.TestId == "" {
			test.TestId = id
		}
		result.Tests = append(result.Tests, test)
	}
	for _, id := range orderedKeys(keyed.Profiles, profileIds(c)) {
		profile := Profile{}
		if err := json.Unmarshal(keyed.Profiles[id], &profile); err != nil {
			return nil, fmt.Errorf("unable to parse profile %s override: %w", id, err)
		}
		if profile.ProfileId == "" {
			profile.ProfileId = id
		}
		result.Profiles = append(result.Profiles, profile)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func toKeyed(c *Catalog) map[string]map[string]any {
	tests := make(map[string]any, len(c.Tests))
	for _, t := range c.Tests {
		tests[t.TestId] = t
	}
	profiles := make(map[string]any, len(c.Profiles))
	for _, p := range c.Profiles {
		profiles[p.ProfileId] = p
	}
	return map[string]map[string]any{
		"tests":    tests,
		"profiles": profiles,
	}
}

func orderedKeys(entries map[string]json.RawMessage, existing []string) []string {
	keys := make([]string, 0, len(entries))
	for _, id := range existing {
		if _, ok := entries[id]; ok {
			keys = append(keys, id)
		}
	}

	added := make([]string, 0)
	for id := range entries {
		if !slices.Contains(existing, id) {
			added = append(added, id)
		}
	}
	slices.Sort(added)

	return append(keys, added...)
}

func testIds(c *Catalog) []string {
	ids := make([]string, 0, len(c.Tests))
	for _, t := range c.Tests {
		ids = append(ids, t.TestId)
	}
	return ids
}

func profileIds(c *Catalog) []string {
	ids := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		ids = append(ids, p.ProfileId)
	}
	return ids
}
