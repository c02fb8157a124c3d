// Package sampler picks the question sets for each test.
package sampler

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
)

// Quota asks for Count diagnostic questions of one subject.
type Quota struct {
	Subject questionbank.Subject
	Count   int
}

// DefaultQuotas is the 15-question diagnostic mix.
var DefaultQuotas = []Quota{
	{Subject: questionbank.English, Count: 4},
	{Subject: questionbank.Maths, Count: 4},
	{Subject: questionbank.Reasoning, Count: 4},
	{Subject: questionbank.GK, Count: 3},
}

// NewRand returns a reproducible generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewEntropyRand returns a generator seeded from the clock and the runtime.
func NewEntropyRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

// SelectQuestions draws diagnostic questions according to quotas. Short
// quotas are backfilled from the unused diagnostic pool. The result is
// shuffled, has no duplicate IDs, and holds at most the quota total.
func SelectQuestions(bank *questionbank.Bank, quotas []Quota, rng *rand.Rand) []questionbank.Question {
	want := 0
	for _, q := range quotas {
		want += max(q.Count, 0)
	}
	if want == 0 {
		return nil
	}

	used := make(map[string]bool)
	var picked []questionbank.Question
	for _, quota := range quotas {
		pool := bank.Filter(quota.Subject, questionbank.TypeDiagnostic)
		shuffle(pool, rng)
		n := 0
		for _, q := range pool {
			if n >= quota.Count {
				break
			}
			if used[q.ID] {
				continue
			}
			used[q.ID] = true
			picked = append(picked, q)
			n++
		}
	}

	if len(picked) < want {
		var rest []questionbank.Question
		for _, q := range bank.Filter("", questionbank.TypeDiagnostic) {
			if !used[q.ID] {
				rest = append(rest, q)
			}
		}
		shuffle(rest, rng)
		for _, q := range rest {
			if len(picked) >= want {
				break
			}
			used[q.ID] = true
			picked = append(picked, q)
		}
	}

	shuffle(picked, rng)
	if len(picked) > want {
		picked = picked[:want]
	}
	return picked
}

// ForTest builds the question set for a catalog test. The diagnostic is
// sampled with DefaultQuotas; practice sets take the subject's questions
// and the full mock takes the whole bank, both in repository order.
func ForTest(bank *questionbank.Bank, t catalog.Test, rng *rand.Rand) []questionbank.Question {
	if t.ID == catalog.Diagnostic {
		return SelectQuestions(bank, DefaultQuotas, rng)
	}
	qs := bank.Filter(t.Subject, "")
	if len(qs) > t.QuestionCount {
		qs = qs[:t.QuestionCount]
	}
	return qs
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(qs []questionbank.Question, rng *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
