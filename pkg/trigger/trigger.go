// Package trigger finds package lookups in chat messages.
//
// Three shapes are recognised:
//
//   - a command, ".pypi <package> [<version>]"
//   - PyPI project links, https://pypi.org/project/<package>[/<version>]/
//   - package URLs, pkg:pypi/<package>[@<version>]
//
// A command is an explicit request. Links and package URLs are passive: the
// bot only answers them when the lookup succeeds.
package trigger

import (
	"regexp"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations"
	"github.com/matzehuels/pypilink/pkg/pipeline"
)

const (
	// DefaultPrefix starts a command.
	DefaultPrefix = "."

	// CommandName is the command word after the prefix.
	CommandName = "pypi"
)

// Source says which shape produced a match.
type Source string

const (
	SourceCommand Source = "command"
	SourceLink    Source = "link"
	SourcePURL    Source = "purl"
)

// Match is one lookup found in a message.
type Match struct {
	Request   pipeline.Request
	Commanded bool
	Source    Source
}

var (
	linkRE = regexp.MustCompile(`https?://pypi\.(?:org|io)/p(?:roject)?/([\w\-.]+)(?:/([\w.\-]+))?/?`)
	purlRE = regexp.MustCompile(`pkg:pypi/\S+`)
)

// Extractor finds matches in message text. The zero value uses
// [DefaultPrefix].
type Extractor struct {
	Prefix string
}

// NewExtractor returns an Extractor for the given command prefix.
func NewExtractor(prefix string) *Extractor {
	return &Extractor{Prefix: prefix}
}

// Extract returns the lookups in text.
//
// If text is a command, the command is the only match, even when its
// package name is missing or invalid; the runner answers those. Otherwise
// every valid link and package URL is returned in order of appearance,
// without duplicates. Names are compared in their normalized form, so
// Foo_Bar and foo-bar are the same project.
func (e *Extractor) Extract(text string) []Match {
	if m, ok := e.command(text); ok {
		return []Match{m}
	}

	type hit struct {
		pos int
		m   Match
	}
	var hits []hit
	for _, loc := range linkRE.FindAllStringSubmatchIndex(text, -1) {
		req := pipeline.Request{PackageName: text[loc[2]:loc[3]]}
		if loc[4] >= 0 {
			req.Version = text[loc[4]:loc[5]]
		}
		hits = append(hits, hit{loc[0], Match{Request: req, Source: SourceLink}})
	}
	for _, loc := range purlRE.FindAllStringIndex(text, -1) {
		req, ok := parsePURL(text[loc[0]:loc[1]])
		if !ok {
			continue
		}
		hits = append(hits, hit{loc[0], Match{Request: req, Source: SourcePURL}})
	}

	// Links and package URLs were collected separately; restore text order.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	seen := make(map[string]bool)
	var out []Match
	for _, h := range hits {
		req := h.m.Request
		if errors.ValidatePythonPackageName(req.PackageName) != nil || errors.ValidateVersion(req.Version) != nil {
			continue
		}
		key := integrations.NormalizePkgName(req.PackageName) + "@" + req.Version
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.m)
	}
	return out
}

// Usage is the reply to a command without a package name.
func (e *Extractor) Usage() string {
	return "Usage: " + e.prefix() + CommandName + " <package> [<version>]"
}

func (e *Extractor) prefix() string {
	if e.Prefix == "" {
		return DefaultPrefix
	}
	return e.Prefix
}

// command parses "<prefix>pypi [package [version]]". Extra arguments are
// ignored.
func (e *Extractor) command(text string) (Match, bool) {
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, e.prefix())
	if !ok {
		return Match{}, false
	}
	word, args, _ := strings.Cut(rest, " ")
	if !strings.EqualFold(word, CommandName) {
		return Match{}, false
	}

	m := Match{Commanded: true, Source: SourceCommand}
	fields := strings.Fields(args)
	if len(fields) > 0 {
		m.Request.PackageName = fields[0]
	}
	if len(fields) > 1 {
		m.Request.Version = fields[1]
	}
	return m, true
}

// parsePURL reads a pkg:pypi package URL, ignoring sentence punctuation
// stuck to its end.
func parsePURL(token string) (pipeline.Request, bool) {
	token = strings.TrimRight(token, ".,;:!?)]}>'\"")
	p, err := packageurl.FromString(token)
	if err != nil || p.Type != packageurl.TypePyPi || p.Name == "" {
		return pipeline.Request{}, false
	}
	return pipeline.Request{PackageName: p.Name, Version: p.Version}, true
}
