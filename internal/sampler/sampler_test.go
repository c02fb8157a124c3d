package sampler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
)

func bankWith(t *testing.T, diag map[questionbank.Subject]int) *questionbank.Bank {
	t.Helper()
	var qs []questionbank.Question
	for _, s := range questionbank.AllSubjects {
		for i := range diag[s] {
			qs = append(qs, questionbank.Question{
				ID:      fmt.Sprintf("%s-%d", s, i),
				Subject: s,
				Text:    "q",
				Options: []string{"a", "b", "c", "d"},
				Type:    questionbank.TypeDiagnostic,
			})
		}
		qs = append(qs, questionbank.Question{
			ID:      fmt.Sprintf("%s-practice", s),
			Subject: s,
			Text:    "q",
			Options: []string{"a", "b", "c", "d"},
			Type:    questionbank.TypePractice,
		})
	}
	b, err := questionbank.New(qs)
	require.NoError(t, err)
	return b
}

func countBySubject(qs []questionbank.Question) map[questionbank.Subject]int {
	out := map[questionbank.Subject]int{}
	for _, q := range qs {
		out[q.Subject]++
	}
	return out
}

func assertUnique(t *testing.T, qs []questionbank.Question) {
	t.Helper()
	seen := map[string]bool{}
	for _, q := range qs {
		assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
	}
}

func TestSelectQuestionsHonorsQuotas(t *testing.T) {
	bank := bankWith(t, map[questionbank.Subject]int{
		questionbank.English: 6, questionbank.Maths: 6, questionbank.Reasoning: 6, questionbank.GK: 5,
	})

	qs := SelectQuestions(bank, DefaultQuotas, NewRand(1))
	require.Len(t, qs, 15)
	assertUnique(t, qs)

	counts := countBySubject(qs)
	assert.Equal(t, 4, counts[questionbank.English])
	assert.Equal(t, 4, counts[questionbank.Maths])
	assert.Equal(t, 4, counts[questionbank.Reasoning])
	assert.Equal(t, 3, counts[questionbank.GK])
	for _, q := range qs {
		assert.Equal(t, questionbank.TypeDiagnostic, q.Type)
	}
}

func TestSelectQuestionsBackfills(t *testing.T) {
	bank := bankWith(t, map[questionbank.Subject]int{
		questionbank.English: 8, questionbank.Maths: 2, questionbank.Reasoning: 4, questionbank.GK: 3,
	})

	qs := SelectQuestions(bank, DefaultQuotas, NewRand(7))
	require.Len(t, qs, 15)
	assertUnique(t, qs)

	counts := countBySubject(qs)
	assert.Equal(t, 2, counts[questionbank.Maths])
	assert.Equal(t, 6, counts[questionbank.English])
}

func TestSelectQuestionsShortPool(t *testing.T) {
	bank := bankWith(t, map[questionbank.Subject]int{questionbank.English: 3})
	qs := SelectQuestions(bank, DefaultQuotas, NewRand(3))
	assert.Len(t, qs, 3)
}

func TestSelectQuestionsReproducible(t *testing.T) {
	bank := questionbank.Default()
	a := SelectQuestions(bank, DefaultQuotas, NewRand(42))
	b := SelectQuestions(bank, DefaultQuotas, NewRand(42))
	require.Equal(t, a, b)

	c := SelectQuestions(bank, DefaultQuotas, NewRand(43))
	assert.NotEqual(t, ids(a), ids(c))
}

func TestSelectQuestionsZeroQuota(t *testing.T) {
	assert.Empty(t, SelectQuestions(questionbank.Default(), nil, NewRand(1)))
}

func TestForTestPractice(t *testing.T) {
	bank := questionbank.Default()
	test, _ := catalog.Get(catalog.GKPractice)

	qs := ForTest(bank, test, NewRand(1))
	require.NotEmpty(t, qs)
	assert.LessOrEqual(t, len(qs), test.QuestionCount)
	for _, q := range qs {
		assert.Equal(t, questionbank.GK, q.Subject)
	}
	assert.Equal(t, ids(bank.Filter(questionbank.GK, ""))[:len(qs)], ids(qs))
}

func TestForTestMockTakesRepositoryOrder(t *testing.T) {
	bank := questionbank.Default()
	test, _ := catalog.Get(catalog.FullMock1)

	qs := ForTest(bank, test, NewRand(1))
	assert.Len(t, qs, min(bank.Len(), test.QuestionCount))
	assert.Equal(t, ids(bank.All())[:len(qs)], ids(qs))
}

func TestForTestDiagnosticSamples(t *testing.T) {
	test, _ := catalog.Get(catalog.Diagnostic)
	qs := ForTest(questionbank.Default(), test, NewRand(5))
	assert.Len(t, qs, 15)
}

func ids(qs []questionbank.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
