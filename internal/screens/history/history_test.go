package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/store"
)

func seededResults(t *testing.T) *results.Store {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	res := results.New(st.KV("local"), nil)

	qs := []questionbank.Question{
		{ID: "e1", Subject: questionbank.English, Topic: "Voice", Text: "Q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
		{ID: "e2", Subject: questionbank.English, Topic: "Voice", Text: "Q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
	}
	r := scoring.Score(scoring.Attempt{
		TestID:    catalog.EnglishPractice,
		Questions: qs,
		Answers:   []int{0, 1},
		Elapsed:   90,
	}, time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	if err := res.Put(context.Background(), catalog.EnglishPractice, r); err != nil {
		t.Fatalf("put: %v", err)
	}
	return res
}

func loaded(t *testing.T, res *results.Store) *HistoryScreen {
	t.Helper()
	s := New(res, nil)
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("expected screen loaded")
	}
	return s
}

func TestHistoryScreen_ListsCatalog(t *testing.T) {
	s := loaded(t, seededResults(t))

	if len(s.entries) != len(catalog.All()) {
		t.Fatalf("entries = %d, want %d", len(s.entries), len(catalog.All()))
	}
	view := s.View(120, 30)
	if !strings.Contains(view, "1/2 (50%)") {
		t.Errorf("expected English result in view:\n%s", view)
	}
	if !strings.Contains(view, "not attempted") {
		t.Error("expected unattempted tests in view")
	}
}

func TestHistoryScreen_EnterOpensAttemptedOnly(t *testing.T) {
	s := loaded(t, seededResults(t))

	// Diagnostic is first and has no result.
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("unattempted test should not open")
	}

	for i, e := range s.entries {
		if e.Test.ID == catalog.EnglishPractice {
			s.selected = i
		}
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected PushScreenMsg")
	}
}

func TestHistoryScreen_EmptyStore(t *testing.T) {
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := loaded(t, results.New(st.KV("local"), nil))
	if !strings.Contains(s.View(120, 30), "No tests taken yet") {
		t.Error("expected empty-state message")
	}
}
