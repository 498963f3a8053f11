package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pypilink/pkg/bot"
	"github.com/matzehuels/pypilink/pkg/buildinfo"
	"github.com/matzehuels/pypilink/pkg/config"
	"github.com/matzehuels/pypilink/pkg/integrations"
	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
	"github.com/matzehuels/pypilink/pkg/pipeline"
	"github.com/matzehuels/pypilink/pkg/trigger"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "pypilink"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	registry   string
	noSearch   bool
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pypilink answers PyPI package lookups in chat",
		Long:         `pypilink watches chat for PyPI links and ".pypi <package> [<version>]" commands and replies with a one-line package summary.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&c.registry, "registry", "", "PyPI API base URL (overrides registry.base_url and registry.rpc_url)")
	flags.BoolVar(&c.noSearch, "no-search", false, "disable the search fallback for commanded misses")

	// Register all subcommands
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.sayCommand())
	root.AddCommand(c.chatCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.registry != "" {
		cfg.Registry.BaseURL = c.registry
		cfg.Registry.RPCURL = c.registry
	}
	if c.noSearch {
		cfg.Bot.SearchFallback = false
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Runtime Factory
// =============================================================================

// runtime is the wired lookup stack for one command invocation.
type runtime struct {
	cfg    config.Config
	http   *integrations.Client
	runner *pipeline.Runner
	bot    *bot.Bot
}

// newRuntime wires registry clients, the runner and the bot from cfg.
func newRuntime(cfg config.Config, logger *log.Logger) *runtime {
	hc := integrations.NewClient(cfg.Registry.Timeout, cfg.Registry.Headers())

	var searcher pipeline.Searcher
	if cfg.Bot.SearchFallback {
		searcher = pypi.NewSearcher(hc, cfg.Registry.RPCURL)
	}

	runner := pipeline.NewRunner(pypi.NewClient(hc, cfg.Registry.BaseURL), searcher, logger)
	runner.Tag = cfg.Bot.Tag
	runner.MaxMessages = cfg.Bot.MaxMessages
	runner.MaxLineLength = cfg.Bot.MaxLineLength

	return &runtime{
		cfg:    cfg,
		http:   hc,
		runner: runner,
		bot:    bot.New(trigger.NewExtractor(cfg.Bot.CommandPrefix), runner, cfg.Bot.Nick, logger),
	}
}

// Close releases the HTTP client.
func (rt *runtime) Close() {
	rt.http.Close()
}
