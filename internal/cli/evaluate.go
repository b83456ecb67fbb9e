package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/eval"
)

// evaluateOpts holds the command-line flags for the evaluate command.
type evaluateOpts struct {
	url     string        // evaluator endpoint URL
	timeout time.Duration // per-request timeout
}

// evaluateCommand creates the evaluate command for submitting a PNG to the
// external evaluator service.
func (c *CLI) evaluateCommand() *cobra.Command {
	opts := evaluateOpts{timeout: eval.DefaultTimeout}

	cmd := &cobra.Command{
		Use:   "evaluate [file]",
		Short: "Submit a kolam image to the evaluator service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.url == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--url is required")
			}
			return c.runEvaluate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "evaluator endpoint URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "request timeout")

	return cmd
}

func (c *CLI) runEvaluate(ctx context.Context, path string, opts *evaluateOpts) error {
	logger := loggerFromContext(ctx)

	image, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", path)
		}
		return err
	}

	client, err := eval.NewClient(opts.url, eval.WithTimeout(opts.timeout))
	if err != nil {
		return err
	}
	logger.Debugf("Submitting %s (%d bytes) to %s", path, len(image), opts.url)

	spinner := newSpinnerWithContext(ctx, "Waiting for evaluator")
	spinner.Start()

	verdict, err := client.Submit(ctx, filepath.Base(path), image)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Evaluation failed: %s", errors.UserMessage(err)))
		return err
	}
	spinner.StopWithSuccess("Evaluation complete")

	var pretty map[string]any
	if err := json.Unmarshal(verdict.Raw, &pretty); err == nil {
		for k, v := range pretty {
			printDetail("%s: %v", k, v)
		}
		return nil
	}
	fmt.Println(string(verdict.Raw))
	return nil
}
