// Package bot connects chat messages to package lookups.
//
// A [Bot] reads one message at a time: it finds the triggers in the text,
// runs each through the lookup pipeline in order, and lets the pipeline
// reply through the message's [chat.Sender]. The bot holds no per-message
// state, so one Bot can serve any number of channels concurrently.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/pipeline"
	"github.com/matzehuels/pypilink/pkg/trigger"
)

// Message is one line of chat.
type Message struct {
	Channel string `json:"channel"`
	Nick    string `json:"nick"`
	Text    string `json:"text"`
}

// Result describes what the bot did with one trigger.
type Result struct {
	Match   trigger.Match
	Outcome pipeline.Outcome
}

// Bot dispatches chat messages to the lookup runner.
type Bot struct {
	Extractor *trigger.Extractor
	Runner    *pipeline.Runner
	Logger    *log.Logger

	// Nick is the bot's own name; its messages are ignored.
	Nick string
}

// New creates a Bot.
func New(extractor *trigger.Extractor, runner *pipeline.Runner, nick string, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Default()
	}
	return &Bot{
		Extractor: extractor,
		Runner:    runner,
		Logger:    logger,
		Nick:      nick,
	}
}

// HandleMessage processes msg, replying through sender.
//
// Lookup failures are answered (or suppressed) by the runner and are not
// errors here. The returned error joins delivery failures and context
// cancellation.
func (b *Bot) HandleMessage(ctx context.Context, msg Message, sender chat.Sender) ([]Result, error) {
	if b.Nick != "" && strings.EqualFold(msg.Nick, b.Nick) {
		return nil, nil
	}

	matches := b.Extractor.Extract(msg.Text)
	if len(matches) == 0 {
		return nil, nil
	}

	eventID := uuid.NewString()
	logger := b.Logger.With("event", eventID, "channel", msg.Channel, "nick", msg.Nick)
	ctx = pipeline.WithLogger(ctx, logger)
	logger.Debug("triggers found", "count", len(matches))

	var (
		results []Result
		errs    []error
	)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if m.Commanded && m.Request.PackageName == "" {
			if err := sender.Say(ctx, b.Extractor.Usage()); err != nil {
				errs = append(errs, fmt.Errorf("send usage: %w", err))
			}
			results = append(results, Result{Match: m, Outcome: pipeline.Outcome{Kind: pipeline.KindInvalid, Text: b.Extractor.Usage()}})
			continue
		}

		outcome, err := b.Runner.Handle(ctx, sender, m.Request, m.Commanded)
		if err != nil {
			logger.Error("reply failed", "package", m.Request.PackageName, "error", err)
			errs = append(errs, err)
		}
		results = append(results, Result{Match: m, Outcome: outcome})
	}
	return results, errors.Join(errs...)
}
