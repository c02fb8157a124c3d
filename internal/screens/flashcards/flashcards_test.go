package flashcards

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/store"
)

func newScreen(t *testing.T) (*FlashcardsScreen, *flashcards.Store) {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	fs := flashcards.NewStore(st.KV("local"))
	s := New(fs)
	s.now = func() time.Time { return time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC) }
	s.Update(s.Init()())
	return s, fs
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestFlashcardsScreen_FlipAndNavigate(t *testing.T) {
	s, _ := newScreen(t)

	front := s.cards[0].FrontText
	if !strings.Contains(s.View(100, 30), front) {
		t.Fatal("expected the front of the first card")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if !s.flipped {
		t.Fatal("expected card flipped")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if s.index != 1 || s.flipped {
		t.Errorf("index = %d flipped = %v, want 1 false", s.index, s.flipped)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	s.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if s.index != 0 {
		t.Errorf("index = %d, want 0", s.index)
	}
}

func TestFlashcardsScreen_SubjectFilter(t *testing.T) {
	s, _ := newScreen(t)

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if len(s.cards) == 0 || len(s.cards) >= len(s.deck) {
		t.Fatalf("filtered %d of %d cards", len(s.cards), len(s.deck))
	}
	for _, c := range s.cards {
		if c.Subject != filters[1] {
			t.Errorf("card %s has subject %s, want %s", c.ID, c.Subject, filters[1])
		}
	}

	for range len(filters) - 1 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	}
	if len(s.cards) != len(s.deck) {
		t.Error("expected the filter to wrap back to all cards")
	}
}

func TestFlashcardsScreen_KnowAndReset(t *testing.T) {
	s, fs := newScreen(t)
	id := s.cards[0].ID

	_, cmd := s.Update(key('y'))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	s.Update(cmd())
	if s.mastery.Level(id) != 1 {
		t.Fatalf("level = %d, want 1", s.mastery.Level(id))
	}

	m, err := fs.Load(context.Background())
	if err != nil || m.Level(id) != 1 {
		t.Fatalf("stored level = %d (%v), want 1", m.Level(id), err)
	}

	_, cmd = s.Update(key('r'))
	s.Update(cmd())
	if s.mastery.Level(id) != 0 {
		t.Errorf("level after reset = %d, want 0", s.mastery.Level(id))
	}
}
