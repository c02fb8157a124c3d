package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/tutor"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

type replyMsg struct {
	Reply tutor.Reply
	Err   error
}

type remainingMsg struct {
	Remaining int
}

// TutorScreen is a chat with the AI tutor.
type TutorScreen struct {
	svc       *tutor.Service
	topic     string
	history   []tutor.Message
	input     components.TextInput
	waiting   bool
	remaining int
	notice    string
}

var _ screen.Screen = (*TutorScreen)(nil)
var _ screen.KeyHintProvider = (*TutorScreen)(nil)

// New creates a chat screen. A non-empty topic is asked about straight away.
func New(svc *tutor.Service, topic string) *TutorScreen {
	return &TutorScreen{
		svc:       svc,
		topic:     topic,
		input:     components.NewTextInput("Ask about any SSC CGL topic...", 500),
		remaining: -1,
	}
}

func (s *TutorScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Init(), s.loadRemaining()}
	if s.topic != "" {
		cmds = append(cmds, s.send(tutor.ExplainTopic(s.topic)))
	}
	return tea.Batch(cmds...)
}

func (s *TutorScreen) Title() string {
	return "AI Tutor"
}

func (s *TutorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TutorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case remainingMsg:
		s.remaining = msg.Remaining
		return s, nil

	case replyMsg:
		return s.handleReply(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			text := s.input.Value()
			if text == "" || s.waiting {
				return s, nil
			}
			s.input.Reset()
			return s, s.send(text)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// send appends the user's turn and asks the tutor for a reply.
func (s *TutorScreen) send(text string) tea.Cmd {
	prior := append([]tutor.Message(nil), s.history...)
	s.history = append(s.history, tutor.Message{Role: llm.RoleUser, Content: text})
	s.waiting = true
	s.notice = ""
	svc := s.svc
	return func() tea.Msg {
		reply, err := svc.Send(context.Background(), prior, text, false)
		return replyMsg{Reply: reply, Err: err}
	}
}

func (s *TutorScreen) handleReply(msg replyMsg) (screen.Screen, tea.Cmd) {
	s.waiting = false
	switch {
	case errors.Is(msg.Err, tutor.ErrLimitReached):
		s.notice = fmt.Sprintf("You have used today's %d free messages. Upgrade to premium for unlimited chat.", s.svc.Limit())
		s.remaining = 0
		return s, nil
	case errors.Is(msg.Err, tutor.ErrNotConfigured):
		s.notice = "The AI tutor is not configured. Set an LLM API key and restart."
		return s, nil
	}

	if msg.Reply.Message != "" {
		s.history = append(s.history, tutor.Message{Role: llm.RoleAssistant, Content: msg.Reply.Message})
	}
	s.remaining = msg.Reply.Remaining
	return s, nil
}

func (s *TutorScreen) loadRemaining() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		n, err := svc.Remaining(context.Background(), false)
		if err != nil {
			return nil
		}
		return remainingMsg{Remaining: n}
	}
}

func (s *TutorScreen) View(width, height int) string {
	textWidth := min(width-8, 90)

	var lines []string
	lines = append(lines, bubble(tutor.WelcomeMessage, false, textWidth)...)
	for _, m := range s.history {
		lines = append(lines, "")
		lines = append(lines, bubble(m.Content, m.Role == llm.RoleUser, textWidth)...)
	}
	if s.waiting {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("Tutor is typing..."))
	}

	var footer []string
	if s.notice != "" {
		footer = append(footer, lipgloss.NewStyle().Foreground(theme.Accent).Width(textWidth).Render(s.notice))
	}
	if s.remaining >= 0 {
		footer = append(footer, lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("%d free message(s) left today", s.remaining)))
	}
	footer = append(footer, "> "+s.input.View())

	// Keep the latest lines that fit above the input.
	room := height - len(footer) - 2
	if room < 1 {
		room = 1
	}
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}

	body := strings.Join(lines, "\n") + "\n\n" + strings.Join(footer, "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Render(body))
}

// bubble wraps one chat turn and splits it into display lines.
func bubble(text string, user bool, width int) []string {
	who := "Tutor"
	color := theme.Secondary
	if user {
		who = "You"
		color = theme.Primary
	}
	header := lipgloss.NewStyle().Foreground(color).Bold(true).Render(who)
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(text)
	return append([]string{header}, strings.Split(body, "\n")...)
}
