package command

import (
	"github.com/spf13/cobra"

	"github.com/tidepool-org/labreport/api"
	"github.com/tidepool-org/labreport/results"
)

var classifyParams = struct {
	TestFile string
	Value    string
	Gender   string
}{}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single result",
	Long:  "The classify command classifies a value against the reference range of a stored snapshot record",
	RunE: func(cmd *cobra.Command, args []string) error {
		record := map[string]any{}
		if err := readJSON(classifyParams.TestFile, &record); err != nil {
			return err
		}

		snapshot, err := results.DecodeSnapshot(record)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("value") {
			snapshot = snapshot.WithValue(classifyParams.Value)
		}

		return Run(func(classifier *results.Classifier) error {
			return printJSON(cmd.OutOrStdout(), api.Classification{
				TestId: snapshot.TestId,
				Value:  snapshot.Value,
				Result: classifier.Evaluate(snapshot, classifyParams.Gender),
			})
		})
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyParams.TestFile, "test-file", "", "Path to a snapshot record in JSON")
	classifyCmd.Flags().StringVar(&classifyParams.Value, "value", "", "Entered value, overrides the value of the record")
	classifyCmd.Flags().StringVar(&classifyParams.Gender, "gender", "", "Patient gender")
	_ = classifyCmd.MarkFlagRequired("test-file")

	rootCmd.AddCommand(classifyCmd)
}
