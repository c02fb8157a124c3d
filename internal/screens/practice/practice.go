package practice

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	sessionscreen "github.com/abhisek/examina/internal/screens/session"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

type lastLoadedMsg struct {
	Last map[string]*scoring.Result
}

// PracticeScreen picks one of the per-subject practice sets.
type PracticeScreen struct {
	bank     *questionbank.Bank
	results  *results.Store
	tests    []catalog.Test
	counts   map[questionbank.Subject]int
	last     map[string]*scoring.Result
	selected int
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a new PracticeScreen.
func New(bank *questionbank.Bank, res *results.Store) *PracticeScreen {
	return &PracticeScreen{
		bank:    bank,
		results: res,
		tests:   catalog.Practice(),
		counts:  bank.Count(""),
		last:    map[string]*scoring.Result{},
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	res, tests := s.results, s.tests
	return func() tea.Msg {
		last := make(map[string]*scoring.Result, len(tests))
		for _, t := range tests {
			if r, ok := res.Get(context.Background(), t.ID); ok {
				last[t.ID] = r
			}
		}
		return lastLoadedMsg{Last: last}
	}
}

func (s *PracticeScreen) Title() string {
	return "Practice Tests"
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lastLoadedMsg:
		s.last = msg.Last
		return s, nil

	case screen.ResultSavedMsg:
		return s, s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.tests)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.tests) {
				next := sessionscreen.New(s.tests[s.selected], s.bank, s.results)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("Instant feedback on every answer. Get it right to move on."))
	b.WriteString("\n\n")

	for i, t := range s.tests {
		var card strings.Builder
		card.WriteString(lipgloss.NewStyle().
			Foreground(theme.SubjectColor(string(t.Subject))).Bold(true).
			Render(t.Title))
		card.WriteString("\n")

		n := min(s.counts[t.Subject], t.QuestionCount)
		card.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("%d questions  ·  %d min", n, t.Minutes)))

		if r := s.last[t.ID]; r != nil {
			card.WriteString("\n")
			card.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).
				Render(fmt.Sprintf("Last score %d/%d (%d%%)", r.Score, r.Total, r.Percent())))
		}

		border := theme.Border
		if i == s.selected {
			border = theme.ArcadeYellow
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(cw - 2).
			Padding(0, 2).
			Render(card.String())
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, box))
		b.WriteString("\n")
	}
	return b.String()
}
