package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/screens/home"
	"github.com/abhisek/examina/internal/screens/welcome"
	"github.com/abhisek/examina/internal/store"
	"github.com/abhisek/examina/internal/studyplan"
	"github.com/abhisek/examina/internal/tutor"
	"github.com/abhisek/examina/internal/ui/layout"
)

// Options holds dependencies for the app.
type Options struct {
	Store    *store.Store
	Bank     *questionbank.Bank
	Provider llm.Provider // nil disables the tutor and the plan coach

	// Initial, when set, is pushed over the home screen at startup and
	// the splash is skipped.
	Initial func(home.Deps) screen.Screen
}

type takenMsg struct {
	Taken int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	results *results.Store
	initial screen.Screen
	taken   int
	width   int
	height  int
}

// newAppModel wires the services over the local namespace and starts on
// the splash, or on home when an initial screen is given.
func newAppModel(opts Options) AppModel {
	kv := opts.Store.KV(store.LocalNamespace)
	deps := home.Deps{
		Bank:       opts.Bank,
		Results:    results.New(kv, nil),
		Flashcards: flashcards.NewStore(kv),
		Tutor:      tutor.NewService(opts.Provider, tutor.NewUsageStore(kv)),
		Plans:      studyplan.NewProgress(kv),
		Coach:      studyplan.NewCoach(opts.Provider),
	}

	m := AppModel{results: deps.Results}
	if opts.Initial != nil {
		m.router = router.New(home.New(deps))
		m.initial = opts.Initial(deps)
		return m
	}
	m.router = router.New(welcome.New(func() screen.Screen { return home.New(deps) }))
	return m
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init(), m.countTaken()}
	if m.initial != nil {
		initial := m.initial
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: initial} })
	}
	return tea.Batch(cmds...)
}

// countTaken counts catalog tests with a readable result.
func (m AppModel) countTaken() tea.Cmd {
	res := m.results
	return func() tea.Msg {
		n := 0
		for _, t := range catalog.All() {
			if _, ok := res.Get(context.Background(), t.ID); ok {
				n++
			}
		}
		return takenMsg{Taken: n}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case takenMsg:
		m.taken = msg.Taken
		return m, nil

	case screen.ResultSavedMsg:
		return m, tea.Batch(m.router.Broadcast(msg), m.countTaken())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.CapturesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.taken, len(catalog.All()), m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m)
	_, err := p.Run()
	m.router.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
