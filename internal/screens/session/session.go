package session

import (
	"context"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/sampler"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/screens/summary"
	"github.com/abhisek/examina/internal/scoring"
	sess "github.com/abhisek/examina/internal/session"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmQuit
	confirmSubmit
)

// SessionScreen runs one test from the catalog.
type SessionScreen struct {
	test    catalog.Test
	bank    *questionbank.Bank
	results *results.Store
	clock   sess.Clock
	rng     *rand.Rand

	state      *sess.Session
	options    components.OptionList
	optionsFor int
	confirm    confirmKind
	saving     bool
	errMsg     string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// New creates a screen for test. The result is saved to res on submit.
func New(test catalog.Test, bank *questionbank.Bank, res *results.Store) *SessionScreen {
	return &SessionScreen{
		test:       test,
		bank:       bank,
		results:    res,
		clock:      sess.RealClock{},
		optionsFor: -1,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return func() tea.Msg {
		rng := s.rng
		if rng == nil {
			rng = sampler.NewEntropyRand()
		}
		return questionsReadyMsg{Questions: sampler.ForTest(s.bank, s.test, rng)}
	}
}

func (s *SessionScreen) Title() string {
	return s.test.Title
}

// Close stops the session timer.
func (s *SessionScreen) Close() {
	if s.state != nil {
		s.state.Close()
	}
}

// CapturesBack keeps Esc inside the screen while the test is running.
func (s *SessionScreen) CapturesBack() bool {
	return s.state != nil && s.state.Phase() == sess.PhaseActive
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.state == nil {
		return nil
	}
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	}
	if s.state.Phase() != sess.PhaseActive {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}

	v := s.state.View()
	hints := []layout.KeyHint{{Key: "A-D", Description: "Answer"}}
	if v.CanNext {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "Next"})
	}
	if v.CanPrev {
		hints = append(hints, layout.KeyHint{Key: "P", Description: "Prev"})
	}
	if v.Mode == sess.ModeMock {
		hints = append(hints,
			layout.KeyHint{Key: "M", Description: "Mark"},
			layout.KeyHint{Key: "U", Description: "Unanswered"})
	}
	if v.CanSubmit {
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Submit"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsReadyMsg:
		return s.handleQuestions(msg)

	case timerTickMsg:
		return s.handleTimerTick()

	case resultSavedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleQuestions(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	s.state = sess.New(s.test.SessionConfig(), msg.Questions, s.clock)
	if s.state.Phase() != sess.PhaseActive {
		return s, nil
	}
	s.state.Start()
	s.syncOptions()
	return s, tickCmd()
}

func (s *SessionScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.state == nil {
		return s, nil
	}
	switch s.state.Phase() {
	case sess.PhaseActive:
		return s, tickCmd()
	case sess.PhaseSubmitted:
		// The countdown ran out.
		s.confirm = confirmNone
		return s, s.save()
	}
	return s, nil
}

func (s *SessionScreen) handleSaved(msg resultSavedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
	}
	detail := summary.New(s.test.Title, msg.Result)
	return s, tea.Sequence(
		func() tea.Msg { return screen.ResultSavedMsg{TestID: s.test.ID} },
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: detail} },
	)
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	pop := func() tea.Msg { return router.PopScreenMsg{} }

	if s.state == nil {
		return s, nil
	}

	switch s.state.Phase() {
	case sess.PhaseEmpty:
		return s, pop
	case sess.PhaseActive:
	default:
		return s, nil
	}

	if s.confirm != confirmNone {
		switch key {
		case "y", "Y":
			kind := s.confirm
			s.confirm = confirmNone
			if kind == confirmQuit {
				return s, pop
			}
			if s.state.Submit() != nil {
				return s, s.save()
			}
		case "n", "N", "esc":
			s.confirm = confirmNone
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirm = confirmQuit
		return s, nil
	case "n", "right", "tab":
		s.state.Next()
	case "p", "left":
		s.state.Prev()
	case "m":
		s.state.ToggleReview()
	case "u":
		if i, ok := s.nextUnanswered(); ok {
			s.state.GoTo(i)
		}
	case "s":
		if s.state.View().CanSubmit {
			s.confirm = confirmSubmit
		}
		return s, nil
	default:
		var picked int
		s.options, picked = s.options.Update(msg)
		if picked != components.Unchosen {
			s.state.SelectOption(picked)
		}
	}
	s.syncOptions()
	return s, nil
}

// syncOptions rebuilds the option list when the pointer moved and keeps
// the chosen mark in step with the session.
func (s *SessionScreen) syncOptions() {
	q, ok := s.state.Current()
	if !ok {
		return
	}
	v := s.state.View()
	if s.optionsFor != v.Index {
		s.options = components.NewOptionList(q.Options, v.Selected, q.CorrectAnswer)
		s.optionsFor = v.Index
	}
	s.options.Chosen = v.Selected
	s.options.Reveal = v.Mode == sess.ModePractice && v.Selected != scoring.NoAnswer && !v.Feedback
}

// nextUnanswered finds the first unanswered question after the pointer,
// wrapping around.
func (s *SessionScreen) nextUnanswered() (int, bool) {
	v := s.state.View()
	for step := 1; step < v.Total; step++ {
		i := (v.Index + step) % v.Total
		if s.state.AnswerAt(i) == scoring.NoAnswer {
			return i, true
		}
	}
	return 0, false
}

// save persists the submitted result. A diagnostic also stores its
// subject summary for the study plan.
func (s *SessionScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	s.saving = true
	r := s.state.Result()
	testID := s.test.ID
	isDiagnostic := s.test.ID == catalog.Diagnostic
	store := s.results

	return func() tea.Msg {
		if store == nil {
			return resultSavedMsg{Result: r}
		}
		ctx := context.Background()
		if err := store.Put(ctx, testID, r); err != nil {
			return resultSavedMsg{Result: r, Err: err}
		}
		if isDiagnostic {
			if err := store.PutDiagnostic(ctx, scoring.DiagnosticFrom(r)); err != nil {
				return resultSavedMsg{Result: r, Err: err}
			}
		}
		return resultSavedMsg{Result: r}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
