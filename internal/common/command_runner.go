package common

import (
	"context"
	"fmt"

	"resumescore/internal/errors"
)

// LoadInputFunc gathers the input for a command.
type LoadInputFunc[Input any] func(context.Context) (Input, error)

// OperationFunc turns the input into a result.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// CheckFunc inspects a written result and may fail the command.
type CheckFunc[Output any] func(Output) error

// RunCommand loads input, runs the operation, writes the formatted result and
// then applies checks. Checks run after output so a failing command still
// shows what it produced.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	out *OutputHandler,
	cmdConfig CommandConfig,
	load LoadInputFunc[Input],
	operation OperationFunc[Input, Output],
	checks ...CheckFunc[Output],
) error {
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, out.GetSupportedFormats()); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}

	input, err := load(ctx)
	if err != nil {
		return err
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if err := out.HandleOutput(result, cmdConfig); err != nil {
		return err
	}

	for _, check := range checks {
		if err := check(result); err != nil {
			if logger != nil {
				logger.Debug("Command check failed", "error", err)
			}
			return fmt.Errorf("check failed: %w", err)
		}
	}
	return nil
}
