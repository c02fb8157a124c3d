package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	sheetEnd     = 400 * time.Millisecond
	marksEnd     = 1200 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

// answerSheet rows are revealed one bubble at a time while marks are drawn.
var answerSheet = []string{
	"Q1  (A) (B) (C) (D)",
	"Q2  (A) (B) (C) (D)",
	"Q3  (A) (B) (C) (D)",
	"Q4  (A) (B) (C) (D)",
}

// marked is the option filled in on each row of the sheet.
var marked = []int{1, 3, 0, 2}

type tickMsg time.Time

// WelcomeScreen is the startup splash. Any key replaces it with the screen
// built by next.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that hands off to the screen produced by next.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Any key", Description: "Continue"}}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned || w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	s := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: s}
	}
}

// marksShown is how many rows of the answer sheet are filled in.
func (w *WelcomeScreen) marksShown() int {
	if w.elapsed < sheetEnd {
		return 0
	}
	step := (marksEnd - sheetEnd) / time.Duration(len(answerSheet))
	n := int((w.elapsed-sheetEnd)/step) + 1
	return min(n, len(answerSheet))
}

func (w *WelcomeScreen) renderSheet() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	fill := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	shown := w.marksShown()

	rows := make([]string, len(answerSheet))
	for i, row := range answerSheet {
		if i >= shown {
			rows[i] = dim.Render(row)
			continue
		}
		opts := strings.Fields(row)[1:]
		opts[marked[i]] = fill.Render("(●)")
		for j := range opts {
			if j != marked[i] {
				opts[j] = dim.Render(opts[j])
			}
		}
		rows[i] = dim.Render(strings.Fields(row)[0]) + "  " + strings.Join(opts, " ")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 2).
		Render(strings.Join(rows, "\n"))
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{w.renderSheet()}

	if w.elapsed >= marksEnd {
		compact := height < 20
		sections = append(sections,
			"",
			components.Banner(width, compact, theme.ArcadeYellow),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
				Render("Crack SSC CGL, one test at a time."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
