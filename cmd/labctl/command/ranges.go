package command

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidepool-org/labreport/api"
	"github.com/tidepool-org/labreport/ranges"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Reference ranges",
	Long:  "The ranges command is used to inspect how reference text is interpreted",
}

var rangesParseCmd = &cobra.Command{
	Use:   "parse {text}",
	Args:  cobra.MinimumNArgs(1),
	Short: "Parse reference text",
	Long:  "The parse command prints the numeric range extracted from reference text, or null",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return Run(func(parser ranges.Parser) error {
			return printJSON(cmd.OutOrStdout(), api.ParseRangeResponse{
				Text:  text,
				Range: parser.Parse(text),
			})
		})
	},
}

func init() {
	rangesCmd.AddCommand(rangesParseCmd)
	rootCmd.AddCommand(rangesCmd)
}
