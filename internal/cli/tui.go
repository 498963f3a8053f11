package cli

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	chatPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	chatCursorStyle = lipgloss.NewStyle().Foreground(colorGray)
	chatErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// chatHistoryLimit bounds the scrollback kept by the console.
const chatHistoryLimit = 200

// =============================================================================
// ChatModel - Interactive channel console
// =============================================================================

// chatHandler posts one line as nick and returns the bot's replies.
type chatHandler func(ctx context.Context, text string) ([]string, error)

// chatEntry is one line of scrollback.
type chatEntry struct {
	nick string
	text string
	err  bool
}

// chatReplyMsg carries the bot's answer to a submitted line.
type chatReplyMsg struct {
	replies []string
	err     error
}

// ChatModel is the bubbletea model for the chat console. Typed lines are
// posted to the bot as if sent to a channel and its replies are appended
// to the history.
type ChatModel struct {
	Nick    string
	BotNick string
	Tag     string

	input   []rune
	history []chatEntry
	pending bool
	height  int

	ctx    context.Context
	handle chatHandler
}

// newChatModel creates a console posting as nick.
func newChatModel(ctx context.Context, nick, botNick, tag string, handle chatHandler) ChatModel {
	return ChatModel{
		Nick:    nick,
		BotNick: botNick,
		Tag:     tag,
		height:  20,
		ctx:     ctx,
		handle:  handle,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return nil
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyCtrlU:
			m.input = nil
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	case chatReplyMsg:
		m.pending = false
		for _, line := range msg.replies {
			m.push(chatEntry{nick: m.BotNick, text: line})
		}
		if msg.err != nil {
			m.push(chatEntry{text: msg.err.Error(), err: true})
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 5)
	}
	return m, nil
}

// submit posts the current input and returns the command that runs the bot.
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(string(m.input))
	m.input = nil
	if text == "" || m.pending {
		return m, nil
	}
	m.push(chatEntry{nick: m.Nick, text: text})
	m.pending = true

	ctx, handle := m.ctx, m.handle
	return m, func() tea.Msg {
		replies, err := handle(ctx, text)
		return chatReplyMsg{replies: replies, err: err}
	}
}

func (m *ChatModel) push(e chatEntry) {
	m.history = append(m.history, e)
	if len(m.history) > chatHistoryLimit {
		m.history = m.history[len(m.history)-chatHistoryLimit:]
	}
}

func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("pypilink console"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("⏎ send  ctrl+u clear  esc quit"))
	b.WriteString("\n\n")

	start := max(len(m.history)-m.height, 0)
	for _, e := range m.history[start:] {
		switch {
		case e.err:
			b.WriteString(chatErrorStyle.Render(iconError + " " + e.text))
		case e.nick == m.BotNick:
			b.WriteString(StyleNick.Render("<"+e.nick+">") + " " + renderReply(e.text, m.Tag))
		default:
			b.WriteString(StyleNick.Render("<"+e.nick+">") + " " + StyleValue.Render(e.text))
		}
		b.WriteString("\n")
	}

	if m.pending {
		b.WriteString(StyleDim.Render("…"))
		b.WriteString("\n")
	}
	b.WriteString(chatPromptStyle.Render(m.Nick + "> "))
	b.WriteString(string(m.input))
	b.WriteString(chatCursorStyle.Render("█"))
	return b.String()
}
