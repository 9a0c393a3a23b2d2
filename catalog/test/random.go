package test

import (
	"fmt"
	"strings"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/pointer"
	"github.com/tidepool-org/labreport/test"
)

var categories = []string{"Haematology", "Biochemistry", "Serology", "Urine Analysis", "Hormones"}

func RandomTestId() string {
	return strings.ToUpper(test.Faker.Lexify("???")) + "-" + test.Faker.UUID().V4()
}

func RandomTestDefinition() catalog.TestDefinition {
	low := test.Faker.Float64(2, 1, 50)
	high := low + test.Faker.Float64(2, 1, 50)
	return catalog.TestDefinition{
		TestId:    RandomTestId(),
		Name:      test.Faker.Lorem().Word(),
		Category:  test.Faker.RandomStringElement(categories),
		InputType: catalog.InputTypeNumber,
		Unit:      test.Faker.RandomStringElement([]string{"mg/dL", "g/dL", "%", "IU/L", "mmol/L"}),
		RefLow:    pointer.FromAny(low),
		RefHigh:   pointer.FromAny(high),
		RefText:   fmt.Sprintf("%.2f - %.2f", low, high),
		Price:     pointer.FromAny(float64(test.Faker.IntBetween(50, 900))),
		Active:    true,
		Order:     test.Faker.IntBetween(1, 100),
	}
}

func RandomTestDefinitions(count int) []catalog.TestDefinition {
	definitions := make([]catalog.TestDefinition, count)
	for i := range definitions {
		definitions[i] = RandomTestDefinition()
	}
	return definitions
}

func RandomProfile(tests []catalog.TestDefinition) catalog.Profile {
	ids := make([]string, 0, len(tests))
	for _, t := range tests {
		ids = append(ids, t.TestId)
	}
	return catalog.Profile{
		ProfileId: test.Faker.UUID().V4(),
		Name:      test.Faker.Company().Name() + " Panel",
		Tests:     ids,
		Price:     pointer.FromAny(float64(test.Faker.IntBetween(500, 3000))),
		Active:    true,
	}
}

// RandomCatalog returns a catalog with the requested number of profiles, each
// built from its own set of random tests.
func RandomCatalog(profiles int, testsPerProfile int) *catalog.Catalog {
	c := &catalog.Catalog{}
	for range profiles {
		tests := RandomTestDefinitions(testsPerProfile)
		c.Tests = append(c.Tests, tests...)
		c.Profiles = append(c.Profiles, RandomProfile(tests))
	}
	return c
}
