// Package config loads pypilink settings from an optional TOML file.
//
// Every setting has a default, so a missing file is not an error when no
// path is given. A minimal file looks like:
//
//	[registry]
//	timeout = "5s"
//
//	[bot]
//	command_prefix = "!"
//	search_fallback = false
//
//	[server]
//	addr = ":9000"
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pypilink/pkg/buildinfo"
	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations"
	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
	"github.com/matzehuels/pypilink/pkg/pipeline"
	"github.com/matzehuels/pypilink/pkg/trigger"
)

// DefaultUserAgent identifies the bot to PyPI.
var DefaultUserAgent = buildinfo.UserAgent()

// Config is the full configuration.
type Config struct {
	Registry Registry `toml:"registry"`
	Bot      Bot      `toml:"bot"`
	Server   Server   `toml:"server"`
}

// Registry configures access to PyPI.
type Registry struct {
	// BaseURL is the JSON API root, including its /pypi path
	// ("https://pypi.org/pypi"); lookups request {BaseURL}/{package}/json.
	BaseURL   string        `toml:"base_url"`
	// RPCURL is the XML-RPC endpoint used for search.
	RPCURL    string        `toml:"rpc_url"`
	Timeout   time.Duration `toml:"timeout"`
	UserAgent string        `toml:"user_agent"`
}

// Bot configures triggers and replies.
type Bot struct {
	Nick           string `toml:"nick"`
	CommandPrefix  string `toml:"command_prefix"`
	Tag            string `toml:"tag"`
	SearchFallback bool   `toml:"search_fallback"`
	MaxMessages    int    `toml:"max_messages"`
	MaxLineLength  int    `toml:"max_line_length"`
}

// Server configures the webhook listener.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry: Registry{
			BaseURL:   pypi.DefaultBaseURL,
			RPCURL:    pypi.DefaultRPCURL,
			Timeout:   integrations.DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Bot: Bot{
			Nick:           "pypilink",
			CommandPrefix:  trigger.DefaultPrefix,
			Tag:            pipeline.DefaultTag,
			SearchFallback: true,
			MaxMessages:    pipeline.DefaultMaxMessages,
			MaxLineLength:  pipeline.DefaultMaxLineLength,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.Registry.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry.base_url")
	}
	if err := errors.ValidateURL(c.Registry.RPCURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry.rpc_url")
	}
	if c.Registry.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "registry.timeout must be positive")
	}
	if c.Bot.CommandPrefix == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "bot.command_prefix cannot be empty")
	}
	if c.Bot.MaxMessages < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "bot.max_messages must be at least 1")
	}
	if c.Bot.MaxLineLength < 40 {
		return errors.New(errors.ErrCodeInvalidConfig, "bot.max_line_length must be at least 40")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

// Headers returns the default request headers for registry calls.
func (r Registry) Headers() map[string]string {
	if r.UserAgent == "" {
		return nil
	}
	return map[string]string{"User-Agent": r.UserAgent}
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
