package pypiinfo

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
)

// NoSummary replaces an empty summary field.
const NoSummary = "(no summary)"

// Formatter renders package documents. The zero value uses the wall clock.
type Formatter struct {
	// Now returns the reference time for release ages. Nil means time.Now.
	Now func() time.Time
}

// Format renders doc as a single line. With includeLink the release URL of
// the resolved version is appended, so the link keeps pointing at the same
// release after newer ones are published.
func (f Formatter) Format(doc *pypi.Document, includeLink bool) (string, error) {
	released, err := ResolveReleaseDate(doc.Files())
	if err != nil {
		return "", err
	}

	info := doc.Info
	summary := singleLine(info.Summary)
	if summary == "" {
		summary = NoSummary
	}

	line := fmt.Sprintf("%s %s | Author: %s | Released %s | %s",
		singleLine(info.Name),
		singleLine(info.Version),
		singleLine(MergeAuthorIdentity(info.Author, info.AuthorEmail)),
		RelativeAge(f.now(), released),
		summary,
	)
	if includeLink {
		line += " | " + singleLine(ReleaseURL(info))
	}
	return line, nil
}

// singleLine collapses every run of whitespace and control characters in
// registry text into one space, so a field can never start a new chat line.
func singleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}), " ")
}

func (f Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now().UTC()
	}
	return time.Now().UTC()
}

// RelativeAge describes released relative to now ("3 years ago").
// Release times in the future are clamped to now.
func RelativeAge(now, released time.Time) string {
	if released.After(now) {
		released = now
	}
	return humanize.RelTime(released, now, "ago", "from now")
}

// ReleaseURL returns the project page of the resolved version, building it
// from the name and version when the document has no release_url.
func ReleaseURL(info pypi.Info) string {
	if info.ReleaseURL != "" {
		return info.ReleaseURL
	}
	return fmt.Sprintf("https://pypi.org/project/%s/%s/", info.Name, info.Version)
}
