package results_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/pointer"
	"github.com/tidepool-org/labreport/ranges"
	"github.com/tidepool-org/labreport/results"
)

var _ = Describe("Classifier", func() {
	var classifier *results.Classifier

	BeforeEach(func() {
		classifier = results.NewClassifier(results.DefaultConfig(), ranges.DefaultConfig())
	})

	numeric := func(value string) results.Snapshot {
		return results.Snapshot{
			TestId:    "HB",
			Name:      "Haemoglobin",
			InputType: catalog.InputTypeNumber,
			RefText:   "7.94 - 20.07",
			Value:     value,
		}
	}

	Describe("reference text", func() {
		DescribeTable("two sided range",
			func(value string, expected ranges.Status) {
				Expect(classifier.Classify(numeric(value), "")).To(Equal(expected))
			},
			Entry("above", "25", ranges.StatusHigh),
			Entry("below", "5", ranges.StatusLow),
			Entry("inside", "15", ranges.StatusNormal),
			Entry("on the lower bound", "7.94", ranges.StatusBoundary),
			Entry("on the upper bound", "20.07", ranges.StatusBoundary),
			Entry("with surrounding whitespace", " 25 ", ranges.StatusHigh),
		)

		It("treats an upper bound as high when exceeded", func() {
			s := numeric("250")
			s.RefText = "< 200 mg/dL"
			Expect(classifier.Classify(s, "")).To(Equal(ranges.StatusHigh))
		})

		It("treats a lower bound as low when undercut", func() {
			s := numeric("40")
			s.RefText = ">= 60"
			Expect(classifier.Classify(s, "")).To(Equal(ranges.StatusLow))
		})

		It("is normal when the text has no numeric structure", func() {
			s := numeric("999")
			s.RefText = "Clear"
			evaluation := classifier.Evaluate(s, "")
			Expect(evaluation.Status).To(Equal(ranges.StatusNormal))
			Expect(evaluation.Source).To(Equal(results.RangeSourceNone))
			Expect(evaluation.Range).To(BeNil())
		})

		It("returns identical results for identical inputs", func() {
			s := numeric("20.07")
			first := classifier.Evaluate(s, "female")
			for range 5 {
				Expect(classifier.Evaluate(s, "female")).To(Equal(first))
			}
		})
	})

	Describe("boundary reporting", func() {
		It("folds boundary values into normal when disabled", func() {
			classifier = results.NewClassifier(&results.Config{ReportBoundary: false}, ranges.DefaultConfig())
			Expect(classifier.Classify(numeric("7.94"), "")).To(Equal(ranges.StatusNormal))
			Expect(classifier.Classify(numeric("5"), "")).To(Equal(ranges.StatusLow))
		})
	})

	Describe("explicit bounds", func() {
		It("win over the reference text", func() {
			s := numeric("25")
			s.RefLow = pointer.FromAny(20.0)
			s.RefHigh = pointer.FromAny(30.0)

			evaluation := classifier.Evaluate(s, "")
			Expect(evaluation.Status).To(Equal(ranges.StatusNormal))
			Expect(evaluation.Source).To(Equal(results.RangeSourceExplicit))
		})

		It("are ignored unless both are present", func() {
			s := numeric("25")
			s.RefLow = pointer.FromAny(20.0)

			evaluation := classifier.Evaluate(s, "")
			Expect(evaluation.Status).To(Equal(ranges.StatusHigh))
			Expect(evaluation.Source).To(Equal(results.RangeSourceText))
		})

		It("are ignored when not finite", func() {
			s := numeric("25")
			s.RefLow = pointer.FromAny(math.NaN())
			s.RefHigh = pointer.FromAny(30.0)

			Expect(classifier.Evaluate(s, "").Source).To(Equal(results.RangeSourceText))
		})
	})

	Describe("gender specific tests", func() {
		var s results.Snapshot

		BeforeEach(func() {
			s = results.Snapshot{
				TestId:         "HCT",
				InputType:      catalog.InputTypeNumber,
				GenderSpecific: true,
				MaleRange:      &catalog.Bounds{Low: pointer.FromAny(35.0), High: pointer.FromAny(55.0)},
				FemaleRange:    &catalog.Bounds{Low: pointer.FromAny(45.0), High: pointer.FromAny(65.0)},
				Value:          "40",
			}
		})

		It("uses the male range", func() {
			Expect(classifier.Classify(s, "male")).To(Equal(ranges.StatusNormal))
		})

		It("uses the female range", func() {
			Expect(classifier.Classify(s, "female")).To(Equal(ranges.StatusLow))
		})

		It("matches gender case insensitively", func() {
			Expect(classifier.Classify(s, "FEMALE")).To(Equal(ranges.StatusLow))
			Expect(classifier.Classify(s, " F ")).To(Equal(ranges.StatusLow))
			Expect(classifier.Classify(s, "Male")).To(Equal(ranges.StatusNormal))
		})

		It("falls back to the reference text for an unknown gender", func() {
			s.RefText = "< 30"
			evaluation := classifier.Evaluate(s, "unknown")
			Expect(evaluation.Source).To(Equal(results.RangeSourceText))
			Expect(evaluation.Status).To(Equal(ranges.StatusHigh))
		})

		It("falls back to the reference text when the gender has no bounds", func() {
			s.FemaleRange = nil
			s.RefText = "30 - 50"
			evaluation := classifier.Evaluate(s, "female")
			Expect(evaluation.Source).To(Equal(results.RangeSourceText))
			Expect(evaluation.Status).To(Equal(ranges.StatusNormal))
		})

		It("uses a single bound as an inclusive one sided range", func() {
			s.FemaleRange = &catalog.Bounds{Low: pointer.FromAny(45.0)}
			Expect(classifier.Classify(s, "female")).To(Equal(ranges.StatusLow))

			s.Value = "45"
			Expect(classifier.Classify(s, "female")).To(Equal(ranges.StatusNormal))
		})

		It("ignores the gender table when the test is not gender specific", func() {
			s.GenderSpecific = false
			Expect(classifier.Evaluate(s, "female").Source).To(Equal(results.RangeSourceNone))
		})
	})

	Describe("values that cannot be classified", func() {
		DescribeTable("are normal",
			func(inputType catalog.InputType, value string) {
				s := numeric(value)
				s.InputType = inputType

				evaluation := classifier.Evaluate(s, "")
				Expect(evaluation.Status).To(Equal(ranges.StatusNormal))
				Expect(evaluation.Numeric).To(BeFalse())
			},
			Entry("text test", catalog.InputTypeText, "25"),
			Entry("dropdown test", catalog.InputTypeDropdown, "25"),
			Entry("non numeric value", catalog.InputTypeNumber, "trace"),
			Entry("empty value", catalog.InputTypeNumber, ""),
			Entry("infinite value", catalog.InputTypeNumber, "Inf"),
			Entry("not a number", catalog.InputTypeNumber, "NaN"),
		)

		It("classifies microscopy and calculated tests as numbers", func() {
			s := numeric("25")
			s.InputType = catalog.InputTypeMicroscopyNumber
			Expect(classifier.Classify(s, "")).To(Equal(ranges.StatusHigh))

			s.InputType = catalog.InputTypeCalculated
			Expect(classifier.Classify(s, "")).To(Equal(ranges.StatusHigh))
		})
	})

	Describe("ClassifyAll", func() {
		It("returns classified copies", func() {
			snapshots := []results.Snapshot{numeric("25"), numeric("5")}
			classified := classifier.ClassifyAll(snapshots, "")

			Expect(classified[0].Status).To(Equal(ranges.StatusHigh))
			Expect(classified[1].Status).To(Equal(ranges.StatusLow))
			Expect(snapshots[0].Status).To(BeEmpty())
		})
	})
})

var _ = Describe("ParseGender", func() {
	DescribeTable("normalizes free text",
		func(text string, expected results.Gender) {
			Expect(results.ParseGender(text)).To(Equal(expected))
		},
		Entry("male", "Male", results.GenderMale),
		Entry("m", "m", results.GenderMale),
		Entry("female", "Female", results.GenderFemale),
		Entry("f", "F", results.GenderFemale),
		Entry("empty", "", results.GenderUnknown),
		Entry("other", "other", results.GenderUnknown),
	)
})
