package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	flashcardsscreen "github.com/abhisek/examina/internal/screens/flashcards"
	"github.com/abhisek/examina/internal/screens/history"
	"github.com/abhisek/examina/internal/screens/placeholder"
	"github.com/abhisek/examina/internal/screens/practice"
	sessionscreen "github.com/abhisek/examina/internal/screens/session"
	studyplanscreen "github.com/abhisek/examina/internal/screens/studyplan"
	"github.com/abhisek/examina/internal/screens/summary"
	tutorscreen "github.com/abhisek/examina/internal/screens/tutor"
	"github.com/abhisek/examina/internal/studyplan"
	"github.com/abhisek/examina/internal/tutor"
	"github.com/abhisek/examina/internal/ui/components"
)

// Deps are the services the home menu hands to the screens it opens.
type Deps struct {
	Bank       *questionbank.Bank
	Results    *results.Store
	Flashcards *flashcards.Store
	Tutor      *tutor.Service
	Plans      *studyplan.Progress
	Coach      *studyplan.Coach
}

type statsLoadedMsg struct {
	Readiness results.Readiness
	Diagnosed bool
	Mastered  int
}

// Menu positions.
const (
	itemDiagnostic = iota
	itemPractice
	itemMock
	itemResults
	itemFlashcards
	itemTutor
	itemPlan
	itemExit
)

var menuLabels = []string{
	"DIAGNOSTIC TEST", "PRACTICE TESTS", "FULL MOCK", "RESULTS",
	"FLASHCARDS", "AI TUTOR", "STUDY PLAN", "EXIT",
}

// menuHotkeys open an item directly.
var menuHotkeys = []string{"d", "p", "m", "r", "f", "t", "s", "x"}

// HomeScreen is the dashboard and main menu.
type HomeScreen struct {
	deps      Deps
	menu      components.Menu
	disabled  map[int]bool
	readiness results.Readiness
	diagnosed bool
	mastered  int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, disabled: map[int]bool{}}

	if deps.Bank == nil || deps.Results == nil {
		for _, i := range []int{itemDiagnostic, itemPractice, itemMock, itemResults, itemPlan} {
			h.disabled[i] = true
		}
	}
	if deps.Flashcards == nil {
		h.disabled[itemFlashcards] = true
	}
	if deps.Tutor == nil || !deps.Tutor.Configured() {
		h.disabled[itemTutor] = true
	}

	items := make([]components.MenuItem, len(menuLabels))
	for i, label := range menuLabels {
		items[i] = components.MenuItem{
			Label:    label,
			Hotkey:   menuHotkeys[i],
			Action:   h.action(i),
			Disabled: h.disabled[i],
		}
	}
	h.menu = components.NewMenu(items)
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// action returns the menu callback for item i. Screens are built when
// chosen so each visit starts fresh.
func (h *HomeScreen) action(i int) func() tea.Cmd {
	d := h.deps
	return func() tea.Cmd {
		switch i {
		case itemDiagnostic:
			return h.startTest(catalog.Diagnostic)
		case itemPractice:
			return push(practice.New(d.Bank, d.Results))
		case itemMock:
			return h.startTest(catalog.FullMock1)
		case itemResults:
			return push(history.New(d.Results, h.explain()))
		case itemFlashcards:
			return push(flashcardsscreen.New(d.Flashcards))
		case itemTutor:
			return push(tutorscreen.New(d.Tutor, ""))
		case itemPlan:
			return push(studyplanscreen.New(d.Results, d.Plans, d.Coach))
		case itemExit:
			return tea.Quit
		}
		return nil
	}
}

func (h *HomeScreen) startTest(id string) tea.Cmd {
	t, ok := catalog.Get(id)
	if !ok {
		return push(placeholder.New(id, "This test is not available."))
	}
	return push(sessionscreen.New(t, h.deps.Bank, h.deps.Results))
}

// explain opens the tutor on a topic, or is nil when the tutor is off.
func (h *HomeScreen) explain() summary.ExplainFunc {
	if h.disabled[itemTutor] {
		return nil
	}
	svc := h.deps.Tutor
	return func(topic string) tea.Cmd {
		return push(tutorscreen.New(svc, topic))
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	d := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		var msg statsLoadedMsg
		if d.Results != nil {
			msg.Readiness = d.Results.Rollup(ctx)
			_, msg.Diagnosed = d.Results.GetDiagnostic(ctx)
		}
		if d.Flashcards != nil {
			if m, err := d.Flashcards.Load(ctx); err == nil {
				msg.Mastered = m.Mastered()
			}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.readiness = msg.Readiness
		h.diagnosed = msg.Diagnosed
		h.mastered = msg.Mastered
		return h, nil
	case screen.ResultSavedMsg:
		return h, h.Init()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and gaps.
	termHeight := height + 8
	compact := termHeight < 44 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderStatsBar(h.readiness, h.diagnosed, h.mastered, cw, compact))
	if h.disabled[itemTutor] {
		sections = append(sections, renderLLMBanner(cw))
	}
	if compact {
		sections = append(sections, renderArcadeMenuCompact(menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(menuLabels, h.menu.Selected, cw, h.disabled))
	}

	sections = append(sections, renderHotkeyHint(cw, h.disabled))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
