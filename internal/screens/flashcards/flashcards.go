package flashcards

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

type masteryLoadedMsg struct {
	Mastery flashcards.Mastery
	Err     error
}

// filters cycles through every subject, starting with the whole deck.
var filters = append([]questionbank.Subject{""}, questionbank.AllSubjects...)

// FlashcardsScreen flips through the deck and records what the
// candidate knows.
type FlashcardsScreen struct {
	store   *flashcards.Store
	deck    []flashcards.Card
	cards   []flashcards.Card
	mastery flashcards.Mastery
	filter  int
	index   int
	flipped bool
	errMsg  string
	now     func() time.Time
}

var _ screen.Screen = (*FlashcardsScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardsScreen)(nil)

// New creates a new FlashcardsScreen over the embedded deck.
func New(st *flashcards.Store) *FlashcardsScreen {
	deck := flashcards.Deck()
	return &FlashcardsScreen{
		store:   st,
		deck:    deck,
		cards:   deck,
		mastery: flashcards.Mastery{},
		now:     time.Now,
	}
}

func (s *FlashcardsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		m, err := s.store.Load(context.Background())
		return masteryLoadedMsg{Mastery: m, Err: err}
	}
}

func (s *FlashcardsScreen) Title() string {
	return "Flashcards"
}

func (s *FlashcardsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Flip"},
		{Key: "←→", Description: "Card"},
		{Key: "Y", Description: "I know it"},
		{Key: "R", Description: "Reset"},
		{Key: "Tab", Description: "Subject"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FlashcardsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case masteryLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.mastery = msg.Mastery
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "space", "enter":
			s.flipped = !s.flipped
		case "right", "l", "n":
			if s.index < len(s.cards)-1 {
				s.index++
				s.flipped = false
			}
		case "left", "h", "p":
			if s.index > 0 {
				s.index--
				s.flipped = false
			}
		case "tab":
			s.filter = (s.filter + 1) % len(filters)
			s.cards = flashcards.BySubject(s.deck, filters[s.filter])
			s.index = 0
			s.flipped = false
		case "y":
			return s, s.record(s.store.Know)
		case "r":
			return s, s.record(s.store.Reset)
		}
	}
	return s, nil
}

// record applies op to the current card and reloads the mastery map.
func (s *FlashcardsScreen) record(op func(context.Context, string, time.Time) (flashcards.Mastery, error)) tea.Cmd {
	if len(s.cards) == 0 {
		return nil
	}
	id := s.cards[s.index].ID
	now := s.now()
	return func() tea.Msg {
		m, err := op(context.Background(), id, now)
		return masteryLoadedMsg{Mastery: m, Err: err}
	}
}

func (s *FlashcardsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	label := "All subjects"
	if f := filters[s.filter]; f != "" {
		label = f.Label()
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s  ·  %d/%d mastered", label, s.mastery.Mastered(), len(s.deck))))
	b.WriteString("\n\n")

	if len(s.cards) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No cards for this subject."))
		return b.String()
	}

	card := s.cards[s.index]
	cw := components.ContentWidth(width)

	var face strings.Builder
	face.WriteString(lipgloss.NewStyle().
		Foreground(theme.SubjectColor(string(card.Subject))).Bold(true).
		Render(card.Subject.Label() + " · " + card.Topic))
	face.WriteString("\n\n")
	if s.flipped {
		face.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(card.BackText))
	} else {
		face.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(card.FrontText))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(face.String(), cw)))
	b.WriteString("\n\n")

	level := s.mastery.Level(card.ID)
	stars := strings.Repeat("★", level) + strings.Repeat("☆", flashcards.MaxLevel-level)
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.ArcadeYellow).
		Render(fmt.Sprintf("%s   card %d/%d", stars, s.index+1, len(s.cards))))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Error: " + s.errMsg))
	}
	return b.String()
}
