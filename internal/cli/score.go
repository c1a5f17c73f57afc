package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"resumescore/internal/analysis"
	"resumescore/internal/common"
	"resumescore/internal/errors"
	"resumescore/internal/schemas"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

const stdinName = "stdin.txt"

type scoreOptions struct {
	common.CommandConfig
	strict   bool
	minScore float64
	stdin    bool
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score [resume-file...]",
		Short: "Score one or more resumes",
		Long: `Score resumes across seven weighted dimensions: contact information,
section structure, length, action verbs, quantified achievements, keywords
and formatting. Run "resumescore dimensions" to see the weights.

Supported inputs are .txt, .md, .pdf, .docx and .html files. With a single
input the report is printed on its own; with several, a batch summary with
the average score is printed instead.

Use --stdin to read plain text from standard input.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.stdin && len(args) > 0 {
				return fmt.Errorf("--stdin cannot be combined with file arguments")
			}
			if !opts.stdin && len(args) == 0 {
				return fmt.Errorf("requires at least 1 resume file or --stdin")
			}
			if len(args) > types.MaxBatchItems {
				return fmt.Errorf("at most %d resumes can be scored at once, got %d", types.MaxBatchItems, len(args))
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			format, err := common.ResolveOutputFormat(opts.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
			if err != nil {
				return err
			}
			opts.OutputFormat = format
			if opts.minScore < 0 || opts.minScore > 100 {
				return fmt.Errorf("--min-score must be between 0 and 100, got %g", opts.minScore)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "", "Output format: json, text, or markdown")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Validate each report against the report schema")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Fail when any overall score is below this value")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read resume text from standard input")
	registerFormatCompletion(cmd)

	return cmd
}

func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runScore(cmd *cobra.Command, args []string, opts scoreOptions) error {
	cfg, logger, err := contextDeps(cmd)
	if err != nil {
		return err
	}

	service := analysis.NewService(logger, analysis.Options{
		Concurrency:   cfg.App.Concurrency,
		MinTextLength: cfg.App.MinTextLength,
	})
	files := common.NewFileProcessor(logger, cfg.App.MaxFileSize)

	load := func(ctx context.Context) ([]types.ScoreRequest, error) {
		if opts.stdin {
			data, err := files.ReadStream(stdinName, cmd.InOrStdin())
			if err != nil {
				return nil, err
			}
			return []types.ScoreRequest{{Text: string(data)}}, nil
		}

		requests := make([]types.ScoreRequest, 0, len(args))
		for _, path := range args {
			data, err := files.ReadDocument(path)
			if err != nil {
				return nil, err
			}
			name := filepath.Base(path)
			text, err := service.ExtractText(ctx, name, data)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) == "" {
				logger.Warn("No text extracted, scoring as empty", "file", path)
			}
			requests = append(requests, types.ScoreRequest{Text: text, Filename: name})
		}
		return requests, nil
	}

	operation := func(ctx context.Context, requests []types.ScoreRequest) (any, error) {
		if len(requests) == 1 {
			return service.Score(ctx, analysis.SourceCLI, requests[0])
		}
		return service.ScoreBatch(ctx, analysis.SourceCLI, requests)
	}

	var checks []common.CheckFunc[any]
	if opts.strict {
		checks = append(checks, checkSchema)
	}
	if opts.minScore > 0 {
		checks = append(checks, checkMinScore(opts.minScore))
	}

	out := common.NewOutputHandler(logger, cmd.OutOrStdout())
	return common.RunCommand(cmd.Context(), logger, out, opts.CommandConfig, load, operation, checks...)
}

// scoredResults flattens the output of a score run.
func scoredResults(result any) []types.ScoreResponse {
	switch r := result.(type) {
	case types.ScoreResponse:
		return []types.ScoreResponse{r}
	case types.BatchResult:
		return r.Results
	default:
		return nil
	}
}

func resultName(r types.ScoreResponse) string {
	if r.Filename == "" {
		return "input"
	}
	return r.Filename
}

func checkSchema(result any) error {
	for _, r := range scoredResults(result) {
		data, err := json.Marshal(r.Report)
		if err != nil {
			return fmt.Errorf("failed to serialize report for %s: %w", resultName(r), err)
		}
		if err := schemas.ValidateReport(data); err != nil {
			return fmt.Errorf("report for %s: %w", resultName(r), err)
		}
	}
	return nil
}

func checkMinScore(minimum float64) common.CheckFunc[any] {
	return func(result any) error {
		var below []string
		for _, r := range scoredResults(result) {
			if r.Report != nil && r.Report.OverallScore < minimum {
				below = append(below, fmt.Sprintf("%s (%.1f)", resultName(r), r.Report.OverallScore))
			}
		}
		if len(below) == 0 {
			return nil
		}
		return errors.NewValidationError(errors.ErrCodeScoreBelowMinimum,
			fmt.Sprintf("overall score below %.1f: %s", minimum, strings.Join(below, ", ")), nil)
	}
}
