package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/sampler"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/scoring"
	sess "github.com/abhisek/examina/internal/session"
	"github.com/abhisek/examina/internal/store"
)

// manualClock fires registered tickers only when told to.
type manualClock struct {
	now       time.Time
	fns       []func()
	cancelled int
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Every(_ time.Duration, fn func()) func() {
	c.fns = append(c.fns, fn)
	done := false
	return func() {
		if !done {
			done = true
			c.cancelled++
		}
	}
}

func (c *manualClock) tick(n int) {
	for range n {
		c.now = c.now.Add(time.Second)
		for _, fn := range c.fns {
			fn()
		}
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testBank(t *testing.T) *questionbank.Bank {
	t.Helper()
	var qs []questionbank.Question
	for _, subj := range questionbank.AllSubjects {
		for i := range 4 {
			qs = append(qs, questionbank.Question{
				ID:            fmt.Sprintf("%s-%d", subj, i),
				Subject:       subj,
				Topic:         "Basics",
				Text:          fmt.Sprintf("%s question %d", subj, i),
				Options:       []string{"w", "x", "y", "z"},
				CorrectAnswer: 1,
				Difficulty:    1,
				Type:          questionbank.TypeDiagnostic,
			})
		}
	}
	bank, err := questionbank.New(qs)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return bank
}

func testResults(t *testing.T) *results.Store {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return results.New(st.KV("local"), nil)
}

// startScreen builds a screen for testID and delivers its question set.
func startScreen(t *testing.T, testID string) (*SessionScreen, *manualClock, *results.Store) {
	t.Helper()
	test, ok := catalog.Get(testID)
	if !ok {
		t.Fatalf("unknown test %q", testID)
	}
	res := testResults(t)
	s := New(test, testBank(t), res)
	clock := &manualClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	s.clock = clock
	s.rng = sampler.NewRand(7)

	msg := s.Init()()
	_, cmd := s.Update(msg)
	if s.state.Phase() == sess.PhaseActive && cmd == nil {
		t.Fatal("expected a tick command once the test is active")
	}
	return s, clock, res
}

func TestSessionScreen_StartsActive(t *testing.T) {
	s, clock, _ := startScreen(t, catalog.MathsPractice)

	if s.state.Phase() != sess.PhaseActive {
		t.Fatalf("phase = %v, want active", s.state.Phase())
	}
	if s.state.View().Total != 4 {
		t.Errorf("total = %d, want 4", s.state.View().Total)
	}
	if len(clock.fns) != 1 {
		t.Errorf("timer registrations = %d, want 1", len(clock.fns))
	}
	if !s.CapturesBack() {
		t.Error("expected Esc to be captured during the test")
	}
	if s.View(100, 30) == "" {
		t.Error("expected a question view")
	}
}

func TestSessionScreen_EmptyBankPops(t *testing.T) {
	test, _ := catalog.Get(catalog.GKPractice)
	bank, err := questionbank.New(nil)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	s := New(test, bank, nil)
	s.clock = &manualClock{}
	s.Update(s.Init()())

	if s.state.Phase() != sess.PhaseEmpty {
		t.Fatalf("phase = %v, want empty", s.state.Phase())
	}
	if s.CapturesBack() {
		t.Error("empty test should not capture Esc")
	}
	_, cmd := s.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("expected pop on any key")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSessionScreen_PracticeRetry(t *testing.T) {
	s, _, _ := startScreen(t, catalog.EnglishPractice)

	s.Update(keyPress('a')) // wrong
	if s.state.AnswerAt(0) != 0 {
		t.Fatalf("answer = %d, want 0", s.state.AnswerAt(0))
	}
	s.Update(keyPress('n'))
	if s.state.View().Index != 0 {
		t.Fatal("advanced past a wrong practice answer")
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter)) // cursor on b, correct
	if s.state.AnswerAt(0) != 1 {
		t.Fatalf("answer = %d, want 1", s.state.AnswerAt(0))
	}
	if !s.options.Reveal {
		t.Error("expected the correct answer to be revealed")
	}
	s.Update(keyPress('n'))
	if s.state.View().Index != 1 {
		t.Errorf("index = %d, want 1", s.state.View().Index)
	}
	if s.options.Chosen != scoring.NoAnswer {
		t.Error("option list not rebuilt for the next question")
	}
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	s, clock, _ := startScreen(t, catalog.MathsPractice)

	s.Update(specialKey(tea.KeyEscape))
	if s.confirm != confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	s.Update(keyPress('n'))
	if s.confirm != confirmNone {
		t.Fatal("expected confirmation dismissed")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	s.Close()
	if clock.cancelled != 1 {
		t.Errorf("timer cancelled %d times, want 1", clock.cancelled)
	}
}

func TestSessionScreen_MockSubmitSavesResult(t *testing.T) {
	s, _, res := startScreen(t, catalog.FullMock1)

	s.Update(keyPress('b'))
	s.Update(keyPress('m'))
	s.Update(keyPress('u')) // jump to the next unanswered question
	if s.state.View().Index != 1 {
		t.Fatalf("index = %d, want 1", s.state.View().Index)
	}

	s.Update(keyPress('s'))
	if s.confirm != confirmSubmit {
		t.Fatal("expected submit confirmation")
	}
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected save command")
	}
	saved, ok := cmd().(resultSavedMsg)
	if !ok || saved.Err != nil {
		t.Fatalf("save failed: %+v", saved)
	}

	got, ok := res.Get(context.Background(), catalog.FullMock1)
	if !ok {
		t.Fatal("result not stored")
	}
	if got.Score != 1 || got.Total != 16 {
		t.Errorf("score = %d/%d, want 1/16", got.Score, got.Total)
	}
	if len(got.MarkedForReview) != 1 || got.MarkedForReview[0] != 0 {
		t.Errorf("marked = %v, want [0]", got.MarkedForReview)
	}

	_, next := s.Update(saved)
	if next == nil {
		t.Fatal("expected navigation to the result")
	}
}

func TestSessionScreen_CountdownAutoSubmit(t *testing.T) {
	s, clock, res := startScreen(t, catalog.GKPractice)

	clock.tick(10*60 - 1)
	if _, cmd := s.Update(timerTickMsg(clock.now)); cmd == nil {
		t.Fatal("expected the tick loop to continue")
	}

	clock.tick(1)
	if s.state.Phase() != sess.PhaseSubmitted {
		t.Fatalf("phase = %v, want submitted", s.state.Phase())
	}
	_, cmd := s.Update(timerTickMsg(clock.now))
	if cmd == nil {
		t.Fatal("expected save after auto-submit")
	}
	if _, ok := cmd().(resultSavedMsg); !ok {
		t.Fatal("expected resultSavedMsg")
	}
	got, ok := res.Get(context.Background(), catalog.GKPractice)
	if !ok || got.TimeTaken != 600 {
		t.Errorf("stored result = %+v, want 600s", got)
	}
}

func TestSessionScreen_DiagnosticStoresSummary(t *testing.T) {
	s, _, res := startScreen(t, catalog.Diagnostic)

	total := s.state.View().Total
	if total == 0 {
		t.Fatal("no diagnostic questions sampled")
	}
	for i := range total {
		s.Update(keyPress('b'))
		if i < total-1 {
			s.Update(keyPress('n'))
		}
	}
	s.Update(keyPress('s'))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected save command")
	}
	saved := cmd().(resultSavedMsg)

	d, ok := res.GetDiagnostic(context.Background())
	if !ok {
		t.Fatal("diagnostic summary not stored")
	}
	if d.TotalScore != total || d.TotalQuestions != total {
		t.Errorf("diagnostic = %d/%d, want %d/%d", d.TotalScore, d.TotalQuestions, total, total)
	}

	_, next := s.Update(saved)
	msgs := collect(next)
	if len(msgs) == 0 {
		t.Fatal("expected follow-up messages")
	}
}

// collect runs a command and flattens sequence and batch messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	default:
		out = append(out, msg)
	}
	return out
}

var _ screen.Screen = (*SessionScreen)(nil)
