package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/pipeline"
)

// lookupOpts holds the flags for the lookup command.
type lookupOpts struct {
	passive bool // behave like a pasted link: no fallback, silent failures
}

// lookupCommand creates the lookup command for one direct package lookup.
func (c *CLI) lookupCommand() *cobra.Command {
	var opts lookupOpts

	cmd := &cobra.Command{
		Use:   "lookup <package> [<version>]",
		Short: "Look up one package and print the reply",
		Long: `Look up one package on PyPI and print the reply the bot would post.

By default the lookup behaves like a ".pypi" command: a miss on an unpinned
version falls back to a registry search, and failures print a message.
With --passive it behaves like a pasted link instead.`,
		Example: `  pypilink lookup requests
  pypilink lookup sopel 7.1.0
  pypilink lookup --passive flask`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.Request{PackageName: args[0]}
			if len(args) == 2 {
				req.Version = args[1]
			}
			return c.runLookup(cmd.Context(), req, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.passive, "passive", false, "treat the lookup as a pasted link")

	return cmd
}

func (c *CLI) runLookup(ctx context.Context, req pipeline.Request, opts lookupOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rt := newRuntime(cfg, logger)
	defer rt.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Looking up %s...", req))
	spinner.Start()

	tag := rt.runner.Tag
	outcome, err := rt.runner.Handle(ctx, chat.SenderFunc(func(_ context.Context, line string) error {
		spinner.Stop()
		printReply(line, tag)
		return nil
	}), req, !opts.passive)
	spinner.Stop()
	if err != nil {
		return err
	}

	prog.done("Lookup finished", "package", req.PackageName, "outcome", outcome.Kind)

	if outcome.Searched && outcome.Kind == pipeline.KindReply {
		printKeyValue("Resolved", outcome.Resolved.String())
	}
	if outcome.Silent() {
		printInfo("No reply (%s)", outcome.Kind)
	}
	if outcome.Kind != pipeline.KindReply && outcome.Err != nil {
		return fmt.Errorf("lookup %s: %w", req, outcome.Err)
	}
	return nil
}
