// Package chat delivers bot replies to a chat context.
//
// A [Sender] is whatever can post a line of text where a trigger came from:
// an IRC channel, a webhook response, a terminal. [Split] applies the
// line-length and message-count limits a host places on replies.
package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
)

// Ellipsis marks a reply cut short by the message limit.
const Ellipsis = "…"

// Sender posts one line of text to a chat context.
type Sender interface {
	Say(ctx context.Context, text string) error
}

// SenderFunc adapts a function to [Sender].
type SenderFunc func(ctx context.Context, text string) error

// Say calls f.
func (f SenderFunc) Say(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Split breaks text into lines of at most maxLen runes, preferring word
// boundaries. At most maxMessages lines are returned; when text remains
// after the last one, that line is shortened and ends with [Ellipsis].
// A non-positive maxLen or maxMessages means no limit.
//
// Line breaks and other control characters in text become spaces, so every
// returned line is one physical line.
//
// maxLen counts runes, not bytes. IRC caps a whole protocol line at 512
// bytes, so hosts with multi-byte text should pick maxLen with room to
// spare: the default 400 runes can exceed 512 bytes for non-ASCII replies.
func Split(text string, maxLen, maxMessages int) []string {
	text = strings.TrimSpace(strings.Map(flattenControl, text))
	if text == "" {
		return nil
	}
	if maxLen <= 0 {
		return []string{text}
	}

	var lines []string
	rest := []rune(text)
	for len(rest) > 0 {
		if len(rest) <= maxLen {
			lines = append(lines, string(rest))
			break
		}
		if maxMessages > 0 && len(lines) == maxMessages-1 {
			cut := cutPoint(rest, maxLen-1)
			lines = append(lines, strings.TrimRightFunc(string(rest[:cut]), unicode.IsSpace)+Ellipsis)
			break
		}
		cut := cutPoint(rest, maxLen)
		lines = append(lines, strings.TrimRightFunc(string(rest[:cut]), unicode.IsSpace))
		rest = trimLeftSpace(rest[cut:])
	}
	return lines
}

// cutPoint returns where to end a line of at most limit runes: the last
// whitespace at or before limit, or limit itself for a single long word.
// r must be longer than limit.
func cutPoint(r []rune, limit int) int {
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return limit
}

func flattenControl(r rune) rune {
	if unicode.IsControl(r) {
		return ' '
	}
	return r
}

func trimLeftSpace(r []rune) []rune {
	for len(r) > 0 && unicode.IsSpace(r[0]) {
		r = r[1:]
	}
	return r
}

// Recorder is an in-memory [Sender]. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Say appends text.
func (r *Recorder) Say(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
	return nil
}

// Lines returns a copy of everything said so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Reset forgets all recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

// Writer is a [Sender] printing each line to W, optionally prefixed.
type Writer struct {
	W      io.Writer
	Prefix string
}

// Say writes one line.
func (w Writer) Say(_ context.Context, text string) error {
	_, err := fmt.Fprintf(w.W, "%s%s\n", w.Prefix, text)
	return err
}
