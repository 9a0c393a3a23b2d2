package command

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tidepool-org/labreport/api"
	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/render"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

var composeParams = struct {
	VisitFile string
	Mode      string
	Xlsx      string
}{}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a visit document",
	Long:  "The compose command builds the report and invoice sections of a visit using the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := documents.ParseMode(composeParams.Mode)
		if err != nil {
			return err
		}

		request := api.VisitRequest{}
		if err := readJSON(composeParams.VisitFile, &request); err != nil {
			return err
		}
		snapshots, err := results.DecodeSnapshots(request.Snapshots)
		if err != nil {
			return err
		}
		visit := visits.Visit{
			Id:        request.VisitId,
			Gender:    request.Gender,
			Snapshots: snapshots,
		}

		return Run(func(provider catalog.Provider, processor *visits.Processor, logger *zap.SugaredLogger) error {
			c, err := provider.Get(context.TODO())
			if err != nil {
				return err
			}

			document, err := processor.Process(visit, c, mode)
			if err != nil {
				return err
			}

			if composeParams.Xlsx == "" {
				return printJSON(cmd.OutOrStdout(), api.NewDocumentResponse(uuid.NewString(), visit.Id, document))
			}

			f, err := os.Create(composeParams.Xlsx)
			if err != nil {
				return fmt.Errorf("unable to create %s: %w", composeParams.Xlsx, err)
			}
			defer f.Close()

			if err := render.NewWorkbook(document).Write(f); err != nil {
				return err
			}
			logger.Infow("wrote document", "path", composeParams.Xlsx, "mode", mode, "sections", len(document.Sections))
			return nil
		})
	},
}

func init() {
	composeCmd.Flags().StringVar(&composeParams.VisitFile, "visit-file", "", "Path to a visit in JSON with gender and snapshot records")
	composeCmd.Flags().StringVar(&composeParams.Mode, "mode", string(documents.ModeCombinedReportAndInvoice), "Document mode")
	composeCmd.Flags().StringVar(&composeParams.Xlsx, "xlsx", "", "Write the document to an xlsx file instead of printing JSON")
	_ = composeCmd.MarkFlagRequired("visit-file")

	rootCmd.AddCommand(composeCmd)
}
