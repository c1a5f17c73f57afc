package cli

import (
	stderrors "errors"
	"fmt"

	"resumescore/internal/errors"
	"resumescore/internal/schemas"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [report.json...]",
		Short: "Check saved JSON reports against the report schema",
		Long: `Validate one or more reports previously written with
"resumescore score --format json". Every file is checked and each schema
violation is listed with the field it applies to.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var invalid []string
	for _, path := range args {
		err := schemas.ValidateReportFile(path)
		if err == nil {
			fmt.Fprintf(out, "%s: valid\n", path)
			continue
		}

		var violation *schemas.ValidationError
		if !stderrors.As(err, &violation) {
			return err
		}
		invalid = append(invalid, path)
		fmt.Fprintf(out, "%s: invalid\n", path)
		for _, fe := range violation.Errors {
			fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
		}
		logger.Debug("Report failed schema validation", "file", path, "violations", len(violation.Errors))
	}

	if len(invalid) > 0 {
		return errors.NewValidationError(errors.ErrCodeSchemaViolation,
			fmt.Sprintf("%d of %d reports failed validation", len(invalid), len(args)), nil)
	}
	return nil
}
