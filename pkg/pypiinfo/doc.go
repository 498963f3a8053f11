// Package pypiinfo turns a PyPI metadata document into the one-line summary
// the bot posts to chat.
//
// # Pieces
//
//   - [ResolveReleaseDate] picks the newest upload time among a release's
//     files and reads it as UTC.
//   - [MergeAuthorIdentity] folds the author and author_email fields into one
//     de-duplicated list of display names.
//   - [Formatter] renders the fixed template
//
//	<name> <version> | Author: <author> | Released <age> | <summary>[ | <release_url>]
//
// Ages are humanized relative to the formatter's clock, so tests can pin
// "now".
package pypiinfo
