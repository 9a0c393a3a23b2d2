package visits_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/formulas"
	"github.com/tidepool-org/labreport/profiles"
	"github.com/tidepool-org/labreport/ranges"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

var _ = Describe("Processor", func() {
	var processor *visits.Processor
	var logs *observer.ObservedLogs
	var c *catalog.Catalog

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zapcore.DebugLevel)
		logger := zap.New(core).Sugar()

		processor = visits.NewProcessor(
			logger,
			formulas.NewEvaluator(formulas.DefaultConfig()),
			results.NewClassifier(results.DefaultConfig(), ranges.DefaultConfig()),
			profiles.NewGrouper(profiles.DefaultConfig()),
			documents.NewComposer(),
			profiles.DefaultConfig(),
		)

		var err error
		c, err = catalog.Load("../catalog/test/fixtures/catalog.json", "")
		Expect(err).ToNot(HaveOccurred())
	})

	attach := func(testId string, profileId string, value string) results.Snapshot {
		definition, ok := c.Test(testId)
		Expect(ok).To(BeTrue())
		return results.NewSnapshot(definition, profileId).WithValue(value)
	}

	It("evaluates, classifies, groups and composes a visit", func() {
		visit := visits.Visit{
			Id:     "visit-1",
			Gender: "Female",
			Snapshots: []results.Snapshot{
				attach("LIP001", "LIPID", "240"),
				attach("LIP002", "LIPID", "40"),
				attach("LIP003", "LIPID", ""),
				attach("HB", "", "11.5"),
				attach("WBC", "", "12"),
				attach("URC", "", "Red"),
			},
		}

		document, err := processor.Process(visit, c, documents.ModeCombinedReportAndInvoice)
		Expect(err).ToNot(HaveOccurred())
		Expect(document.Mode).To(Equal(documents.ModeCombinedReportAndInvoice))
		Expect(document.Warnings).To(BeNil())
		Expect(document.Sections).To(HaveLen(3))

		invoice := document.Sections[0]
		Expect(invoice.Kind).To(Equal(documents.KindInvoice))
		Expect(invoice.Invoice.LineItems).To(HaveLen(2))
		Expect(invoice.Invoice.LineItems[0].Label).To(Equal("Lipid Profile"))
		Expect(invoice.Invoice.LineItems[0].Price).To(Equal(500.0))
		Expect(invoice.Invoice.LineItems[1].Label).To(Equal("Complete Blood Count"))
		Expect(invoice.Invoice.LineItems[1].Resolution).To(Equal(profiles.ResolutionOverlap))
		Expect(invoice.Invoice.LineItems[1].Price).To(Equal(300.0))
		Expect(document.Total).To(Equal(800.0))

		lipid := document.Sections[1]
		Expect(lipid.Title).To(Equal("Lipid Profile"))
		Expect(lipid.Snapshots[0].Status).To(Equal(ranges.StatusHigh))
		Expect(lipid.Snapshots[1].Status).To(Equal(ranges.StatusLow))
		Expect(lipid.Snapshots[2].Value).To(Equal("6.00"))
		Expect(lipid.Snapshots[2].Status).To(Equal(ranges.StatusHigh))

		cbc := document.Sections[2]
		Expect(cbc.Title).To(Equal("Complete Blood Count"))
		Expect(cbc.Snapshots).To(HaveLen(3))
		Expect(cbc.Snapshots[0].Status).To(Equal(ranges.StatusLow))
		Expect(cbc.Snapshots[1].Status).To(Equal(ranges.StatusHigh))
		Expect(cbc.Snapshots[2].Status).To(Equal(ranges.StatusNormal))

		Expect(logs.FilterMessage("assigned tests without a profile").Len()).To(Equal(1))
	})

	It("reports the invoice total for report only documents", func() {
		visit := visits.Visit{Snapshots: []results.Snapshot{attach("HB", "CBC", "14")}}

		document, err := processor.Process(visit, c, documents.ModePerProfileReports)
		Expect(err).ToNot(HaveOccurred())
		Expect(document.Sections).To(HaveLen(1))
		Expect(document.Total).To(Equal(300.0))
	})

	It("returns formula issues as warnings", func() {
		visit := visits.Visit{
			Snapshots: []results.Snapshot{
				attach("LIP001", "LIPID", "200"),
				attach("LIP002", "LIPID", "0"),
				attach("LIP003", "LIPID", ""),
			},
		}

		document, err := processor.Process(visit, c, documents.ModeCombinedInvoice)
		Expect(err).ToNot(HaveOccurred())
		Expect(document.Warnings).To(HaveLen(1))
		Expect(document.Warnings[0].TestId).To(Equal("LIP003"))
		Expect(logs.FilterMessage("unable to evaluate calculated test").Len()).To(Equal(1))
	})

	It("fails for an unknown mode", func() {
		_, err := processor.Process(visits.Visit{}, c, documents.Mode("poster"))
		Expect(err).To(MatchError(documents.ErrUnknownMode))
	})

	It("classifies without grouping", func() {
		classified, warnings := processor.Classify(visits.Visit{
			Gender:    "male",
			Snapshots: []results.Snapshot{attach("HB", "", "12")},
		})
		Expect(warnings).To(BeEmpty())
		Expect(classified[0].Status).To(Equal(ranges.StatusLow))
	})
})
