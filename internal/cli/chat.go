package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pypilink/pkg/bot"
	"github.com/matzehuels/pypilink/pkg/chat"
)

// chatOpts holds the flags for the chat command.
type chatOpts struct {
	nick    string
	channel string
	logFile string
}

// chatCommand creates the interactive console command.
func (c *CLI) chatCommand() *cobra.Command {
	opts := chatOpts{nick: "user", channel: "#terminal"}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive console that behaves like a channel",
		Long: `Open an interactive console. Every line typed is posted to the bot as if
sent to a channel, and the bot's replies appear below it.

Logs would garble the screen, so they are dropped unless --log-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChat(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.nick, "nick", opts.nick, "nick your lines are posted as")
	cmd.Flags().StringVar(&opts.channel, "channel", opts.channel, "channel name shown to the bot")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	return cmd
}

func (c *CLI) runChat(ctx context.Context, opts chatOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, c.Logger.GetLevel())

	rt := newRuntime(cfg, logger)
	defer rt.Close()

	model := newChatModel(ctx, opts.nick, cfg.Bot.Nick, rt.runner.Tag, botHandler(rt.bot, opts, logger))
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// botHandler adapts b to the console: each line becomes a message from
// opts.nick and the replies are collected rather than sent.
func botHandler(b *bot.Bot, opts chatOpts, logger *log.Logger) chatHandler {
	return func(ctx context.Context, text string) ([]string, error) {
		var rec chat.Recorder
		msg := bot.Message{Channel: opts.channel, Nick: opts.nick, Text: text}
		if _, err := b.HandleMessage(ctx, msg, &rec); err != nil {
			logger.Warn("message failed", "error", err)
			return rec.Lines(), err
		}
		return rec.Lines(), nil
	}
}
