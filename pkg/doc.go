// Package pkg provides the libraries behind pypilink, a chat bot that
// answers PyPI package lookups.
//
// # Overview
//
// pypilink watches chat for PyPI links, "pkg:pypi/..." package URLs and
// ".pypi <package> [<version>]" commands, and replies with a one-line
// summary of the package. The pkg directory is organized into:
//
//  1. [trigger] - finds lookups in a chat line
//  2. [integrations] - registry access (PyPI JSON API, XML-RPC search)
//  3. [pypiinfo] - release date, author identity and reply formatting
//  4. [pipeline] - one lookup from request to reply, with search fallback
//  5. [bot] and [server] - chat dispatch and the webhook host
//
// # Architecture
//
// The data flow for one chat line:
//
//	chat message
//	     ↓
//	[trigger] package (command / link / purl matches)
//	     ↓
//	[pipeline] package (fetch → fallback search → format)
//	     ↓
//	[chat] package (tag, split, deliver)
//
// # Quick Start
//
// Look up one package and print the reply:
//
//	import (
//	    "github.com/matzehuels/pypilink/pkg/chat"
//	    "github.com/matzehuels/pypilink/pkg/integrations"
//	    "github.com/matzehuels/pypilink/pkg/integrations/pypi"
//	    "github.com/matzehuels/pypilink/pkg/pipeline"
//	)
//
//	hc := integrations.NewClient(0, nil)
//	defer hc.Close()
//
//	runner := pipeline.NewRunner(pypi.NewClient(hc, ""), pypi.NewSearcher(hc, ""), nil)
//	runner.Handle(ctx, chat.Writer{W: os.Stdout}, pipeline.Request{PackageName: "sopel"}, true)
//
// [trigger]: github.com/matzehuels/pypilink/pkg/trigger
// [integrations]: github.com/matzehuels/pypilink/pkg/integrations
// [pypiinfo]: github.com/matzehuels/pypilink/pkg/pypiinfo
// [pipeline]: github.com/matzehuels/pypilink/pkg/pipeline
// [bot]: github.com/matzehuels/pypilink/pkg/bot
// [server]: github.com/matzehuels/pypilink/pkg/server
// [chat]: github.com/matzehuels/pypilink/pkg/chat
package pkg
