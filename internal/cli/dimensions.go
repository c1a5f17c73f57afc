package cli

import (
	"resumescore/internal/common"
	"resumescore/internal/scoring"

	"github.com/spf13/cobra"
)

func newDimensionsCmd() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "List the scoring dimensions and their weights",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			format, err := common.ResolveOutputFormat(cmdConfig.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
			cmdConfig.OutputFormat = format
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := getLoggerFromContext(cmd.Context())
			if err != nil {
				return err
			}
			out := common.NewOutputHandler(logger, cmd.OutOrStdout())
			return out.HandleOutput(scoring.DescribeDimensions(), cmdConfig)
		},
	}

	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	registerFormatCompletion(cmd)
	return cmd
}
