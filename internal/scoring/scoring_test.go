package scoring

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/abhisek/examina/internal/questionbank"
)

var completedAt = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func makeQuestions(counts map[questionbank.Subject]int) []questionbank.Question {
	var qs []questionbank.Question
	for _, s := range questionbank.AllSubjects {
		for i := range counts[s] {
			qs = append(qs, questionbank.Question{
				ID:            fmt.Sprintf("%s-%d", s, i),
				Subject:       s,
				Topic:         "Topic",
				Text:          "Q",
				Options:       []string{"a", "b", "c", "d"},
				CorrectAnswer: 2,
				Type:          questionbank.TypeDiagnostic,
			})
		}
	}
	return qs
}

// scenarioAttempt builds 15 questions answered correctly on
// english 4/4, maths 1/4, reasoning 3/4 and gk 1/3.
func scenarioAttempt() Attempt {
	qs := makeQuestions(map[questionbank.Subject]int{
		questionbank.English:   4,
		questionbank.Maths:     4,
		questionbank.Reasoning: 4,
		questionbank.GK:        3,
	})
	correctPerSubject := map[questionbank.Subject]int{
		questionbank.English:   4,
		questionbank.Maths:     1,
		questionbank.Reasoning: 3,
		questionbank.GK:        1,
	}

	answers := make([]int, len(qs))
	times := make([]int, len(qs))
	seen := map[questionbank.Subject]int{}
	for i, q := range qs {
		times[i] = 10 + i
		if seen[q.Subject] < correctPerSubject[q.Subject] {
			answers[i] = q.CorrectAnswer
		} else if i%2 == 0 {
			answers[i] = NoAnswer
		} else {
			answers[i] = 0
		}
		seen[q.Subject]++
	}

	return Attempt{
		TestID:       "diagnostic",
		Questions:    qs,
		Answers:      answers,
		QuestionTime: times,
		Elapsed:      600,
	}
}

func TestScoreScenario(t *testing.T) {
	r := Score(scenarioAttempt(), completedAt)

	if r.Score != 9 || r.Total != 15 {
		t.Fatalf("score = %d/%d, want 9/15", r.Score, r.Total)
	}

	want := map[questionbank.Subject][2]int{
		questionbank.English:   {4, 4},
		questionbank.Maths:     {1, 4},
		questionbank.Reasoning: {3, 4},
		questionbank.GK:        {1, 3},
	}
	for s, w := range want {
		got := r.SectionScores[s]
		if got.Score != w[0] || got.Total != w[1] {
			t.Errorf("%s = %d/%d, want %d/%d", s, got.Score, got.Total, w[0], w[1])
		}
	}

	if !HasWeakSection(r.SectionScores) {
		t.Error("expected a weak section")
	}

	p := r.Prediction()
	if p.Likelihood != LikelihoodLow {
		t.Errorf("likelihood = %q, want %q", p.Likelihood, LikelihoodLow)
	}
	if p.Percentage != 35 || p.Color != ColorOrange {
		t.Errorf("prediction = %+v, want 35%% orange", p)
	}
}

func TestScoreSectionTimeAndTotals(t *testing.T) {
	a := scenarioAttempt()
	r := Score(a, completedAt)

	var sumTotal, sumTime, wantTime int
	for _, sec := range r.SectionScores {
		if sec.Score < 0 || sec.Score > sec.Total {
			t.Errorf("section score %d out of bounds for total %d", sec.Score, sec.Total)
		}
		sumTotal += sec.Total
		sumTime += sec.Time
	}
	for _, secs := range a.QuestionTime {
		wantTime += secs
	}

	if sumTotal != r.Total {
		t.Errorf("sum of section totals = %d, want %d", sumTotal, r.Total)
	}
	if sumTime != wantTime {
		t.Errorf("sum of section time = %d, want %d", sumTime, wantTime)
	}
	if r.TimeTaken != 600 {
		t.Errorf("TimeTaken = %d, want 600", r.TimeTaken)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	a := scenarioAttempt()
	r1 := Score(a, completedAt)
	r2 := Score(a, completedAt)
	if !reflect.DeepEqual(r1, r2) {
		t.Error("identical attempts produced different results")
	}
}

func TestScoreUnansweredNeverCorrect(t *testing.T) {
	qs := makeQuestions(map[questionbank.Subject]int{questionbank.Maths: 3})
	r := Score(Attempt{Questions: qs, Answers: []int{NoAnswer}}, completedAt)

	if r.Score != 0 {
		t.Errorf("score = %d, want 0", r.Score)
	}
	for i, a := range r.Answers {
		if a != NoAnswer {
			t.Errorf("answer %d = %d, want NoAnswer", i, a)
		}
	}
}

func TestScoreSnapshotsQuestions(t *testing.T) {
	qs := makeQuestions(map[questionbank.Subject]int{questionbank.GK: 1})
	r := Score(Attempt{Questions: qs, Answers: []int{2}}, completedAt)

	qs[0].Options[0] = "changed"
	if r.Questions[0].Options[0] != "a" {
		t.Error("result snapshot shares options with the question bank")
	}
	if r.CompletedAt != completedAt {
		t.Errorf("CompletedAt = %v", r.CompletedAt)
	}
}

func TestScoreEmpty(t *testing.T) {
	r := Score(Attempt{}, completedAt)
	if r.Score != 0 || r.Total != 0 || len(r.SectionScores) != 0 {
		t.Errorf("unexpected result for empty attempt: %+v", r)
	}
}

func TestPercentileTable(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{15, 15, 95},
		{9, 10, 95},
		{8, 10, 85},
		{7, 10, 70},
		{6, 10, 55},
		{5, 10, 40},
		{4, 10, 25},
		{0, 10, 25},
		{0, 0, 25},
	}
	for _, tt := range tests {
		if got := Percentile(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentile(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestPercentileMonotonic(t *testing.T) {
	for total := 1; total <= 60; total++ {
		prev := Percentile(0, total)
		for score := 1; score <= total; score++ {
			got := Percentile(score, total)
			if got < prev {
				t.Fatalf("Percentile(%d, %d) = %d < Percentile(%d, %d) = %d", score, total, got, score-1, total, prev)
			}
			prev = got
		}
	}
}

func TestPredictSuccessTiers(t *testing.T) {
	strong := map[questionbank.Subject]SectionScore{
		questionbank.English: {Score: 4, Total: 5},
		questionbank.Maths:   {Score: 5, Total: 5},
	}
	weak := map[questionbank.Subject]SectionScore{
		questionbank.English: {Score: 5, Total: 5},
		questionbank.Maths:   {Score: 1, Total: 5},
	}

	tests := []struct {
		name     string
		score    int
		total    int
		sections map[questionbank.Subject]SectionScore
		want     Likelihood
	}{
		{"high", 9, 10, strong, LikelihoodHigh},
		{"high blocked by weak section", 9, 10, weak, LikelihoodModerate},
		{"moderate", 13, 20, strong, LikelihoodModerate},
		{"low", 9, 20, strong, LikelihoodLow},
		{"needs work", 8, 20, strong, LikelihoodNeedsWork},
		{"no questions", 0, 0, nil, LikelihoodNeedsWork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictSuccess(tt.score, tt.total, tt.sections)
			if got.Likelihood != tt.want {
				t.Errorf("likelihood = %q, want %q", got.Likelihood, tt.want)
			}
			if got.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestWeakSectionIgnoresEmptySections(t *testing.T) {
	sections := map[questionbank.Subject]SectionScore{
		questionbank.English: {Score: 3, Total: 3},
		questionbank.GK:      {Score: 0, Total: 0},
	}
	if HasWeakSection(sections) {
		t.Error("empty section should not count as weak")
	}
}

func TestBand(t *testing.T) {
	for pct, want := range map[int]string{100: "Strong", 70: "Strong", 69: "Average", 40: "Average", 39: "Weak", 0: "Weak"} {
		if got := Band(pct); got != want {
			t.Errorf("Band(%d) = %q, want %q", pct, got, want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	for secs, want := range map[int]string{0: "0:00", 9: "0:09", 65: "1:05", 3600: "60:00", -3: "0:00"} {
		if got := FormatTime(secs); got != want {
			t.Errorf("FormatTime(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestDiagnosticFrom(t *testing.T) {
	r := Score(scenarioAttempt(), completedAt)
	d := DiagnosticFrom(r)

	if d.TotalScore != 9 || d.TotalQuestions != 15 || d.TimeSpent != 600 {
		t.Errorf("unexpected summary: %+v", d)
	}

	wantStrengths := []questionbank.Subject{questionbank.English, questionbank.Reasoning}
	wantWeak := []questionbank.Subject{questionbank.Maths, questionbank.GK}
	if !reflect.DeepEqual(d.Strengths(), wantStrengths) {
		t.Errorf("Strengths() = %v, want %v", d.Strengths(), wantStrengths)
	}
	if !reflect.DeepEqual(d.Weaknesses(), wantWeak) {
		t.Errorf("Weaknesses() = %v, want %v", d.Weaknesses(), wantWeak)
	}
}

func TestReview(t *testing.T) {
	qs := makeQuestions(map[questionbank.Subject]int{questionbank.English: 3})
	r := Score(Attempt{Questions: qs, Answers: []int{2, 1, NoAnswer}, Marked: []int{1}}, completedAt)

	items := r.Review()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if !items[0].Correct || !items[0].Answered {
		t.Errorf("item 0 = %+v, want answered and correct", items[0])
	}
	if items[1].Correct || !items[1].Marked {
		t.Errorf("item 1 = %+v, want wrong and marked", items[1])
	}
	if items[2].Answered {
		t.Errorf("item 2 = %+v, want unanswered", items[2])
	}
}
