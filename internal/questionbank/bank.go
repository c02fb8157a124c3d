package questionbank

import (
	"encoding/json"
	"fmt"
	"os"
)

// Bank is an immutable collection of questions with precomputed indices.
type Bank struct {
	questions []Question
	byID      map[string]int
	bySubject map[Subject][]int
}

// New validates the questions and builds a Bank from them.
// The input slice is copied; later changes to it do not affect the bank.
func New(questions []Question) (*Bank, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	b := &Bank{
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
		bySubject: make(map[Subject][]int),
	}
	for i, q := range questions {
		b.questions[i] = q.clone()
		b.byID[q.ID] = i
		b.bySubject[q.Subject] = append(b.bySubject[q.Subject], i)
	}
	return b, nil
}

// Load reads a JSON array of questions from path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON array of questions into a Bank.
func Parse(data []byte) (*Bank, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(qs)
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// All returns every question in repository order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// ByID looks up a question by its identifier.
func (b *Bank) ByID(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i].clone(), true
}

// Filter returns questions matching subject and type, in repository order.
// An empty subject or type matches everything.
func (b *Bank) Filter(subject Subject, typ QuestionType) []Question {
	var idx []int
	if subject != "" {
		idx = b.bySubject[subject]
	} else {
		idx = make([]int, len(b.questions))
		for i := range idx {
			idx[i] = i
		}
	}

	var out []Question
	for _, i := range idx {
		q := b.questions[i]
		if typ != "" && q.Type != typ {
			continue
		}
		out = append(out, q.clone())
	}
	return out
}

// Subjects returns the subjects present in the bank in canonical order.
func (b *Bank) Subjects() []Subject {
	var out []Subject
	for _, s := range AllSubjects {
		if len(b.bySubject[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of questions per subject for the given type.
func (b *Bank) Count(typ QuestionType) map[Subject]int {
	counts := make(map[Subject]int)
	for _, q := range b.questions {
		if typ == "" || q.Type == typ {
			counts[q.Subject]++
		}
	}
	return counts
}
