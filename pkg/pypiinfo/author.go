package pypiinfo

import (
	"net/mail"
	"strings"
)

// UnknownAuthor is shown when a package lists neither names nor emails.
const UnknownAuthor = "(unknown name)"

const listSep = ", "

// MergeAuthorIdentity combines PyPI's author and author_email fields.
//
// names is a ", "-separated list of display names. emails is a
// ", "-separated list of RFC 5322 mailboxes; each contributes its display
// name when it has one, and otherwise the entry itself (bare addresses, or
// plain names stored in the email field). Duplicates are dropped, keeping
// the first occurrence.
func MergeAuthorIdentity(names, emails string) string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, n := range splitList(names) {
		add(n)
	}
	for _, e := range splitList(emails) {
		add(displayName(e))
	}

	if len(out) == 0 {
		return UnknownAuthor
	}
	return strings.Join(out, listSep)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, listSep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func displayName(entry string) string {
	addr, err := mail.ParseAddress(entry)
	if err != nil {
		return entry
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}
