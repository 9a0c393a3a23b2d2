package results

import (
	"github.com/mohae/deepcopy"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/pointer"
	"github.com/tidepool-org/labreport/ranges"
)

// Snapshot is a test attached to a visit. Catalog fields are copied when the test
// is attached so later catalog edits never change a historical report; only
// Value and Status change afterwards.
type Snapshot struct {
	TestId          string            `json:"testId" mapstructure:"testId"`
	Name            string            `json:"name" mapstructure:"name"`
	Category        string            `json:"category,omitempty" mapstructure:"category"`
	InputType       catalog.InputType `json:"inputType" mapstructure:"inputType"`
	Unit            string            `json:"unit,omitempty" mapstructure:"unit"`
	RefLow          *float64          `json:"refLow,omitempty" mapstructure:"refLow"`
	RefHigh         *float64          `json:"refHigh,omitempty" mapstructure:"refHigh"`
	RefText         string            `json:"refText,omitempty" mapstructure:"refText"`
	GenderSpecific  bool              `json:"genderSpecific,omitempty" mapstructure:"genderSpecific"`
	MaleRange       *catalog.Bounds   `json:"maleRange,omitempty" mapstructure:"maleRange"`
	FemaleRange     *catalog.Bounds   `json:"femaleRange,omitempty" mapstructure:"femaleRange"`
	DropdownOptions []string          `json:"dropdownOptions,omitempty" mapstructure:"dropdownOptions"`
	Formula         string            `json:"formula,omitempty" mapstructure:"formula"`
	Price           *float64          `json:"price,omitempty" mapstructure:"price"`
	Order           int               `json:"order" mapstructure:"order"`
	ProfileId       string            `json:"profileId,omitempty" mapstructure:"profileId"`
	Value           string            `json:"value" mapstructure:"value"`
	Status          ranges.Status     `json:"status,omitempty" mapstructure:"status"`
}

// NewSnapshot captures the catalog definition of a test as it is attached to a
// visit under the given profile.
func NewSnapshot(definition catalog.TestDefinition, profileId string) Snapshot {
	def := deepcopy.Copy(definition).(catalog.TestDefinition)
	return Snapshot{
		TestId:          def.TestId,
		Name:            def.Name,
		Category:        def.Category,
		InputType:       def.InputType,
		Unit:            def.Unit,
		RefLow:          def.RefLow,
		RefHigh:         def.RefHigh,
		RefText:         def.RefText,
		GenderSpecific:  def.GenderSpecific,
		MaleRange:       def.MaleRange,
		FemaleRange:     def.FemaleRange,
		DropdownOptions: def.DropdownOptions,
		Formula:         def.Formula,
		Price:           def.Price,
		Order:           def.Order,
		ProfileId:       profileId,
		Status:          ranges.StatusNormal,
	}
}

// NewProfileSnapshots attaches every member test of a profile that exists in
// the catalog, in profile order.
func NewProfileSnapshots(c *catalog.Catalog, profile catalog.Profile) []Snapshot {
	snapshots := make([]Snapshot, 0, len(profile.Tests))
	for _, testId := range profile.Tests {
		if definition, ok := c.Test(testId); ok {
			snapshots = append(snapshots, NewSnapshot(definition, profile.ProfileId))
		}
	}
	return snapshots
}

// WithValue returns a copy of the snapshot holding a new entered value. The
// previous status is cleared until the copy is classified again.
func (s Snapshot) WithValue(value string) Snapshot {
	s.Value = value
	s.Status = ""
	return s
}

func (s Snapshot) PriceOrZero() float64 {
	return pointer.ToFloat64(s.Price)
}

// ExplicitBounds returns the numeric bounds of the snapshot when both are set.
// They take precedence over every other reference.
func (s Snapshot) ExplicitBounds() (float64, float64, bool) {
	if s.RefLow == nil || s.RefHigh == nil || !isFinite(*s.RefLow) || !isFinite(*s.RefHigh) {
		return 0, 0, false
	}
	return *s.RefLow, *s.RefHigh, true
}
