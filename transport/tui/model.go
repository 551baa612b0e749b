// Package tui is a terminal chat front end for a single interview.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/interview"
)

var (
	lavender = lipgloss.Color("#b4befe")
	sapphire = lipgloss.Color("#74c7ec")
	green    = lipgloss.Color("#a6e3a1")
	peach    = lipgloss.Color("#fab387")
	subtext  = lipgloss.Color("#a6adc8")

	titleStyle       = lipgloss.NewStyle().Foreground(sapphire).Bold(true)
	interviewerStyle = lipgloss.NewStyle().Foreground(lavender).Bold(true)
	candidateStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(peach).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(subtext)
)

// Advancer sends one candidate answer to the interview.
type Advancer interface {
	Advance(ctx context.Context, sessionID, utterance string) (interview.AdvanceResult, error)
}

type line struct {
	role core.Role
	text string
}

// ReplyMsg carries the interviewer's answer back into the model.
type ReplyMsg struct {
	Result interview.AdvanceResult
	Err    error
}

// Model is the Bubble Tea model for one interview.
type Model struct {
	ctx       context.Context
	svc       Advancer
	sessionID string
	candidate string
	phase     core.Phase

	lines   []line
	input   []rune
	waiting bool
	done    bool
	err     error
	width   int
}

// New opens the chat on an already started interview.
func New(ctx context.Context, svc Advancer, candidate string, start interview.StartResult) Model {
	return Model{
		ctx:       ctx,
		svc:       svc,
		sessionID: start.SessionID,
		candidate: candidate,
		phase:     start.Phase,
		lines:     []line{{role: core.RoleInterviewer, text: start.Utterance}},
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Done reports whether the interview reached its end.
func (m Model) Done() bool { return m.done }

func (m Model) SessionID() string { return m.sessionID }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ReplyMsg:
		m.waiting = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.phase = msg.Result.Phase
		m.lines = append(m.lines, line{role: core.RoleInterviewer, text: msg.Result.Utterance})
		m.done = msg.Result.Complete

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		if m.waiting {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(string(m.input))
			if text == "" {
				return m, nil
			}
			m.input = m.input[:0]
			m.waiting = true
			m.lines = append(m.lines, line{role: core.RoleCandidate, text: text})
			return m, m.advance(text)
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	}
	return m, nil
}

func (m Model) advance(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Advance(m.ctx, m.sessionID, text)
		return ReplyMsg{Result: res, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Interview with "+m.candidate) + " " + mutedStyle.Render("["+string(m.phase)+"]"))
	sb.WriteString("\n\n")

	wrap := lipgloss.NewStyle()
	if m.width > 4 {
		wrap = wrap.Width(m.width - 2)
	}
	for _, l := range m.lines {
		label := interviewerStyle.Render("Interviewer:")
		if l.role == core.RoleCandidate {
			label = candidateStyle.Render("You:")
		}
		sb.WriteString(wrap.Render(label+" "+l.text) + "\n\n")
	}

	if m.err != nil {
		sb.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	switch {
	case m.done:
		sb.WriteString(mutedStyle.Render("Interview complete. Press any key to exit."))
	case m.waiting:
		sb.WriteString(mutedStyle.Render("Interviewer is typing..."))
	default:
		sb.WriteString("> " + string(m.input) + "█\n")
		sb.WriteString(mutedStyle.Render("enter to send, esc to quit"))
	}
	return sb.String()
}
