// Package flashcards holds the revision deck and per-card mastery.
package flashcards

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/records"
	"github.com/abhisek/examina/internal/store"
)

// MaxLevel is the mastery level at which a card counts as mastered.
const MaxLevel = 3

const masteryKey = "flashcard-mastery"

// Card is one flashcard.
type Card struct {
	ID         string               `json:"id"`
	Subject    questionbank.Subject `json:"subject"`
	Topic      string               `json:"topic"`
	FrontText  string               `json:"front_text"`
	BackText   string               `json:"back_text"`
	Difficulty int                  `json:"difficulty"`
}

//go:embed data/flashcards.json
var deckJSON []byte

var (
	deckOnce sync.Once
	deck     []Card
)

// Deck returns the embedded cards in file order.
func Deck() []Card {
	deckOnce.Do(func() {
		if err := json.Unmarshal(deckJSON, &deck); err != nil {
			panic(fmt.Sprintf("embedded flashcards: %v", err))
		}
	})
	return append([]Card(nil), deck...)
}

// BySubject filters cards by subject. An empty subject returns all cards.
func BySubject(cards []Card, subject questionbank.Subject) []Card {
	if subject == "" {
		return cards
	}
	var out []Card
	for _, c := range cards {
		if c.Subject == subject {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the card with id.
func Find(cards []Card, id string) (Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Entry is the mastery state of one card.
type Entry struct {
	Level        int       `json:"level"`
	LastReviewed time.Time `json:"lastReviewed"`
}

// Mastery maps card ids to their mastery.
type Mastery map[string]Entry

// Level returns the card's level, 0 when it has never been reviewed.
func (m Mastery) Level(id string) int {
	return m[id].Level
}

// Know raises the card one level, capped at MaxLevel.
func (m Mastery) Know(id string, now time.Time) Entry {
	e := Entry{Level: min(m[id].Level+1, MaxLevel), LastReviewed: now.UTC()}
	m[id] = e
	return e
}

// Reset drops the card back to level 0.
func (m Mastery) Reset(id string, now time.Time) Entry {
	e := Entry{Level: 0, LastReviewed: now.UTC()}
	m[id] = e
	return e
}

// Mastered counts cards at MaxLevel.
func (m Mastery) Mastered() int {
	n := 0
	for _, e := range m {
		if e.Level >= MaxLevel {
			n++
		}
	}
	return n
}

var masterySchema = records.MustCompile("flashcard-mastery", `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["level", "lastReviewed"],
		"properties": {
			"level": {"type": "integer", "minimum": 0, "maximum": 3},
			"lastReviewed": {"type": "string"}
		}
	}
}`)

// Store persists Mastery in a key-value namespace.
type Store struct {
	kv store.KeyValueStore
}

// NewStore returns a Store over kv.
func NewStore(kv store.KeyValueStore) *Store {
	return &Store{kv: kv}
}

// Load returns the saved mastery. A missing or invalid record yields an
// empty map.
func (s *Store) Load(ctx context.Context) (Mastery, error) {
	m := Mastery{}
	_, err := records.Read(ctx, s.kv, masteryKey, masterySchema, &m)
	if errors.Is(err, records.ErrInvalid) {
		return Mastery{}, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes m.
func (s *Store) Save(ctx context.Context, m Mastery) error {
	return records.Write(ctx, s.kv, masteryKey, m)
}

// Know loads, updates and saves the mastery of one card.
func (s *Store) Know(ctx context.Context, id string, now time.Time) (Mastery, error) {
	return s.update(ctx, func(m Mastery) { m.Know(id, now) })
}

// Reset loads, resets and saves the mastery of one card.
func (s *Store) Reset(ctx context.Context, id string, now time.Time) (Mastery, error) {
	return s.update(ctx, func(m Mastery) { m.Reset(id, now) })
}

func (s *Store) update(ctx context.Context, fn func(Mastery)) (Mastery, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	fn(m)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
