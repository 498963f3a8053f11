package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pypilink/pkg/bot"
	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/pipeline"
)

// sayOpts holds the flags for the say command.
type sayOpts struct {
	nick    string
	channel string
	summary bool
}

// sayCommand creates the say command, which feeds one chat line to the bot.
func (c *CLI) sayCommand() *cobra.Command {
	opts := sayOpts{nick: "user", channel: "#terminal"}

	cmd := &cobra.Command{
		Use:   "say <text...>",
		Short: "Post one chat line to the bot and print its replies",
		Example: `  pypilink say "have you tried https://pypi.org/project/sopel/ yet?"
  pypilink say .pypi requests 2.31.0
  pypilink say --summary "pkg:pypi/django@5.0 and pkg:pypi/flask"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := bot.Message{Channel: opts.channel, Nick: opts.nick, Text: strings.Join(args, " ")}
			return c.runSay(cmd.Context(), msg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.nick, "nick", opts.nick, "nick the line is posted as")
	cmd.Flags().StringVar(&opts.channel, "channel", opts.channel, "channel the line is posted to")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a table of the triggers found")

	return cmd
}

func (c *CLI) runSay(ctx context.Context, msg bot.Message, opts sayOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rt := newRuntime(cfg, logger)
	defer rt.Close()

	tag := rt.runner.Tag
	replied := false
	results, err := rt.bot.HandleMessage(ctx, msg, chat.SenderFunc(func(_ context.Context, line string) error {
		replied = true
		printReply(line, tag)
		return nil
	}))

	if len(results) == 0 {
		printInfo("No triggers in %q", msg.Text)
	} else if !replied {
		printInfo("No reply")
	}
	if opts.summary && len(results) > 0 {
		fmt.Println()
		fmt.Println(renderResults(results))
	}
	return err
}

// renderResults tabulates what the bot did with each trigger.
func renderResults(results []bot.Result) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		version := r.Match.Request.Version
		if version == "" {
			version = "—"
		}
		resolved := "—"
		if r.Outcome.Searched && r.Outcome.Resolved.PackageName != "" {
			resolved = r.Outcome.Resolved.String()
		}
		rows = append(rows, []string{
			r.Match.Request.PackageName,
			version,
			string(r.Match.Source),
			string(r.Outcome.Kind),
			resolved,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Version", "Source", "Outcome", "Resolved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && row < len(results) {
				if results[row].Outcome.Kind == pipeline.KindReply {
					return lipgloss.NewStyle().Foreground(colorGreen)
				}
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
