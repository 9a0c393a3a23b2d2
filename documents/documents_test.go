package documents_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/pointer"
	"github.com/tidepool-org/labreport/profiles"
	"github.com/tidepool-org/labreport/results"
)

func snapshot(testId string, profileId string, price float64) results.Snapshot {
	return results.Snapshot{TestId: testId, ProfileId: profileId, Price: pointer.FromAny(price)}
}

var _ = Describe("Composer", func() {
	var composer *documents.Composer
	var profileCatalog *profiles.Catalog
	var groups profiles.Groups

	BeforeEach(func() {
		composer = documents.NewComposer()
		profileCatalog = profiles.NewCatalog(&catalog.Catalog{
			Profiles: []catalog.Profile{
				{ProfileId: "CBC", Name: "Complete Blood Count", Tests: []string{"HB", "WBC"}, Price: pointer.FromAny(300.0), Active: true},
				{ProfileId: "LFT", Name: "Liver Function", Tests: []string{"ALT", "AST"}, Active: true},
			},
		}, profiles.DefaultConfig())

		groups = profiles.Groups{
			{Key: "CBC", Resolution: profiles.ResolutionDirect, Snapshots: []results.Snapshot{
				snapshot("HB", "CBC", 150),
				snapshot("WBC", "CBC", 200),
			}},
			{Key: "LFT", Resolution: profiles.ResolutionOverlap, Snapshots: []results.Snapshot{
				snapshot("ALT", "LFT", 120),
				{TestId: "AST", ProfileId: "LFT"},
			}},
			{Key: "custom", Resolution: profiles.ResolutionCustom, Snapshots: []results.Snapshot{
				snapshot("VITD", "custom", 900),
				snapshot("B12", "custom", 700),
			}},
		}
	})

	Describe("per profile reports", func() {
		It("emits one section per group in group order", func() {
			sections, err := composer.Compose(groups, profileCatalog, documents.ModePerProfileReports)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).To(HaveLen(3))

			titles := []string{}
			for _, section := range sections {
				Expect(section.Kind).To(Equal(documents.KindReport))
				Expect(section.Invoice).To(BeNil())
				titles = append(titles, section.Title)
			}
			Expect(titles).To(Equal([]string{"Complete Blood Count", "Liver Function", profiles.DefaultCustomPackageLabel}))
			Expect(sections[0].Snapshots).To(Equal(groups[0].Snapshots))
			Expect(sections[1].Resolution).To(Equal(profiles.ResolutionOverlap))
		})

		It("labels an uncataloged key with the key", func() {
			groups = profiles.Groups{{Key: "OLD-PANEL", Snapshots: []results.Snapshot{snapshot("X", "OLD-PANEL", 10)}}}
			sections, err := composer.Compose(groups, profileCatalog, documents.ModePerProfileReports)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections[0].Title).To(Equal("OLD-PANEL"))
		})

		It("skips empty groups", func() {
			groups = append(groups, profiles.Group{Key: "EMPTY"})
			sections, err := composer.Compose(groups, profileCatalog, documents.ModePerProfileReports)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).To(HaveLen(3))
		})
	})

	Describe("combined invoice", func() {
		It("prices matched groups at the package price and the rest at the snapshot sum", func() {
			sections, err := composer.Compose(groups, profileCatalog, documents.ModeCombinedInvoice)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).To(HaveLen(1))

			invoice := sections[0]
			Expect(invoice.Kind).To(Equal(documents.KindInvoice))
			Expect(invoice.Title).To(Equal(documents.InvoiceTitle))
			Expect(invoice.Snapshots).To(BeEmpty())
			Expect(invoice.Invoice.LineItems).To(Equal([]documents.LineItem{
				{Key: "CBC", Label: "Complete Blood Count", Resolution: profiles.ResolutionDirect, Matched: true, Tests: 2, Price: 300},
				{Key: "LFT", Label: "Liver Function", Resolution: profiles.ResolutionOverlap, Matched: true, Tests: 2, Price: 120},
				{Key: "custom", Label: profiles.DefaultCustomPackageLabel, Resolution: profiles.ResolutionCustom, Tests: 2, Price: 1600},
			}))
		})

		It("totals the line items rather than the snapshot prices", func() {
			sections, err := composer.Compose(groups, profileCatalog, documents.ModeCombinedInvoice)
			Expect(err).ToNot(HaveOccurred())

			invoice := sections[0].Invoice
			Expect(invoice.Total).To(Equal(300.0 + 120.0 + 1600.0))

			raw := 0.0
			for _, s := range groups.Snapshots() {
				raw += s.PriceOrZero()
			}
			Expect(invoice.Total).ToNot(Equal(raw))
		})

		It("emits a single empty invoice for a visit without tests", func() {
			sections, err := composer.Compose(nil, profileCatalog, documents.ModeCombinedInvoice)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).To(HaveLen(1))
			Expect(sections[0].Invoice.LineItems).To(BeEmpty())
			Expect(sections[0].Invoice.Total).To(BeZero())
		})
	})

	Describe("combined report and invoice", func() {
		It("puts the invoice first followed by every report", func() {
			sections, err := composer.Compose(groups, profileCatalog, documents.ModeCombinedReportAndInvoice)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).To(HaveLen(4))
			Expect(sections[0].Kind).To(Equal(documents.KindInvoice))
			for _, section := range sections[1:] {
				Expect(section.Kind).To(Equal(documents.KindReport))
			}
			Expect(sections[1].Key).To(Equal("CBC"))
			Expect(sections[3].Key).To(Equal("custom"))
		})
	})

	It("covers every snapshot once across reports and every group once in the invoice", func() {
		reports, err := composer.Compose(groups, profileCatalog, documents.ModePerProfileReports)
		Expect(err).ToNot(HaveOccurred())
		invoice, err := composer.Compose(groups, profileCatalog, documents.ModeCombinedInvoice)
		Expect(err).ToNot(HaveOccurred())

		seen := map[string]int{}
		for _, section := range reports {
			for _, s := range section.Snapshots {
				seen[s.TestId]++
			}
		}
		Expect(seen).To(HaveLen(len(groups.Snapshots())))
		for _, count := range seen {
			Expect(count).To(Equal(1))
		}

		keys := []string{}
		for _, item := range invoice[0].Invoice.LineItems {
			keys = append(keys, item.Key)
		}
		Expect(keys).To(Equal(groups.Keys()))
	})

	It("rejects an unknown mode", func() {
		_, err := composer.Compose(groups, profileCatalog, documents.Mode("summary"))
		Expect(err).To(MatchError(documents.ErrUnknownMode))
	})
})

var _ = Describe("ParseMode", func() {
	It("accepts every mode", func() {
		for _, mode := range documents.Modes {
			parsed, err := documents.ParseMode(" " + string(mode) + " ")
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(mode))
		}
	})

	It("rejects unknown modes", func() {
		_, err := documents.ParseMode("everything")
		Expect(err).To(MatchError(documents.ErrUnknownMode))
	})
})
