package catalog

import (
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	ErrDuplicateTest    = errors.New("duplicate test id")
	ErrDuplicateProfile = errors.New("duplicate profile id")
	ErrMissingId        = errors.New("missing id")
)

type InputType string

const (
	InputTypeNumber           InputType = "number"
	InputTypeText             InputType = "text"
	InputTypeDropdown         InputType = "dropdown"
	InputTypeMicroscopyNumber InputType = "microscopy-number"
	InputTypeCalculated       InputType = "calculated"
)

// IsNumeric reports whether values of this input type are compared against a
// reference range. An empty input type is treated as a number.
func (i InputType) IsNumeric() bool {
	switch i {
	case InputTypeText, InputTypeDropdown:
		return false
	default:
		return true
	}
}

// Bounds is an inclusive numeric interval where either side may be open.
type Bounds struct {
	Low  *float64 `json:"low,omitempty" mapstructure:"low"`
	High *float64 `json:"high,omitempty" mapstructure:"high"`
}

func (b *Bounds) IsEmpty() bool {
	return b == nil || (b.Low == nil && b.High == nil)
}

type TestDefinition struct {
	TestId          string    `json:"testId"`
	Name            string    `json:"name"`
	Category        string    `json:"category,omitempty"`
	InputType       InputType `json:"inputType"`
	Unit            string    `json:"unit,omitempty"`
	RefLow          *float64  `json:"refLow,omitempty"`
	RefHigh         *float64  `json:"refHigh,omitempty"`
	RefText         string    `json:"refText,omitempty"`
	GenderSpecific  bool      `json:"genderSpecific,omitempty"`
	MaleRange       *Bounds   `json:"maleRange,omitempty"`
	FemaleRange     *Bounds   `json:"femaleRange,omitempty"`
	DropdownOptions []string  `json:"dropdownOptions,omitempty"`
	Formula         string    `json:"formula,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	Active          bool      `json:"active"`
	Order           int       `json:"order"`
}

type Profile struct {
	ProfileId string   `json:"profileId"`
	Name      string   `json:"name"`
	Tests     []string `json:"tests"`
	Price     *float64 `json:"price,omitempty"`
	Active    bool     `json:"active"`
}

// TestSet returns the profile's member test ids as a set.
func (p Profile) TestSet() mapset.Set[string] {
	return mapset.NewThreadUnsafeSet[string](p.Tests...)
}

type Catalog struct {
	Tests    []TestDefinition `json:"tests"`
	Profiles []Profile        `json:"profiles"`
}

func (c *Catalog) Test(testId string) (TestDefinition, bool) {
	for _, t := range c.Tests {
		if t.TestId == testId {
			return t, true
		}
	}
	return TestDefinition{}, false
}

func (c *Catalog) Profile(profileId string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.ProfileId == profileId {
			return p, true
		}
	}
	return Profile{}, false
}

// ActiveProfiles returns the active profiles in catalog order.
func (c *Catalog) ActiveProfiles() []Profile {
	active := make([]Profile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

func (c *Catalog) Validate() error {
	testIds := mapset.NewThreadUnsafeSet[string]()
	for i, t := range c.Tests {
		id := strings.TrimSpace(t.TestId)
		if id == "" {
			return fmt.Errorf("%w: test at index %d", ErrMissingId, i)
		}
		if !testIds.Add(id) {
			return fmt.Errorf("%w: %s", ErrDuplicateTest, id)
		}
	}

	profileIds := mapset.NewThreadUnsafeSet[string]()
	for i, p := range c.Profiles {
		id := strings.TrimSpace(p.ProfileId)
		if id == "" {
			return fmt.Errorf("%w: profile at index %d", ErrMissingId, i)
		}
		if !profileIds.Add(id) {
			return fmt.Errorf("%w: %s", ErrDuplicateProfile, id)
		}
	}

	return nil
}
