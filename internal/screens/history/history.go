package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/screens/summary"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

type entry struct {
	Test   catalog.Test
	Result *scoring.Result
}

type historyLoadedMsg struct {
	Entries   []entry
	Readiness results.Readiness
}

// HistoryScreen lists the catalog with each test's stored result.
type HistoryScreen struct {
	results   *results.Store
	explain   summary.ExplainFunc
	entries   []entry
	readiness results.Readiness
	selected  int
	loaded    bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. explain may be nil.
func New(res *results.Store, explain summary.ExplainFunc) *HistoryScreen {
	return &HistoryScreen{results: res, explain: explain}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var entries []entry
		for _, t := range catalog.All() {
			r, _ := s.results.Get(ctx, t.ID)
			entries = append(entries, entry{Test: t, Result: r})
		}
		return historyLoadedMsg{Entries: entries, Readiness: s.results.Rollup(ctx)}
	}
}

func (s *HistoryScreen) Title() string {
	return "Results"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.entries = msg.Entries
		s.readiness = msg.Readiness
		s.loaded = true
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
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.entries) && s.entries[s.selected].Result != nil {
				e := s.entries[s.selected]
				detail := summary.New(e.Test.Title, e.Result).WithExplain(s.explain)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading results...")
	}

	var b strings.Builder
	b.WriteString("\n")

	rd := s.readiness
	if rd.TestsTaken == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No tests taken yet. Start with the diagnostic!"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Accent).Bold(true).
			Render(fmt.Sprintf("Exam readiness %d%%  ·  %d/%d across %d test(s)  ·  percentile ~%d",
				rd.Percent, rd.Score, rd.Total, rd.TestsTaken, rd.Percentile)))
	}
	b.WriteString("\n\n")

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		status := "not attempted"
		if e.Result != nil {
			status = fmt.Sprintf("%d/%d (%d%%)  %s  %s",
				e.Result.Score, e.Result.Total, e.Result.Percent(),
				scoring.FormatTime(e.Result.TimeTaken),
				e.Result.CompletedAt.Local().Format("Jan 02, 2006"))
		}
		line := fmt.Sprintf("%s%-28s %s", prefix, e.Test.Title, status)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if e.Result == nil {
			style = style.Foreground(theme.TextDim)
		}
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
