package scoring

import (
	"time"

	"github.com/abhisek/examina/internal/questionbank"
)

// NoAnswer marks a question the candidate did not answer.
const NoAnswer = -1

// SectionScore aggregates one subject's results.
type SectionScore struct {
	Score int `json:"score"`
	Total int `json:"total"`
	Time  int `json:"time"` // seconds
}

// Percent returns the rounded percentage of correct answers in the section.
func (s SectionScore) Percent() int {
	return Percent(s.Score, s.Total)
}

// QuestionSnapshot is the copy of a question stored inside a Result, so a
// result stays reviewable after the question bank changes.
type QuestionSnapshot struct {
	ID            string               `json:"id"`
	Subject       questionbank.Subject `json:"subject"`
	Topic         string               `json:"topic"`
	Text          string               `json:"question_text"`
	Options       []string             `json:"options"`
	CorrectAnswer int                  `json:"correct_answer"`
	Explanation   string               `json:"explanation"`
}

// Result is the immutable outcome of a submitted test.
type Result struct {
	TestID          string                                `json:"testId"`
	Score           int                                   `json:"score"`
	Total           int                                   `json:"total"`
	TimeTaken       int                                   `json:"timeTaken"`
	SectionScores   map[questionbank.Subject]SectionScore `json:"sectionScores"`
	Answers         []int                                 `json:"answers"`
	MarkedForReview []int                                 `json:"markedForReview,omitempty"`
	Questions       []QuestionSnapshot                    `json:"questions"`
	CompletedAt     time.Time                             `json:"completedAt"`
}

// Percent returns the overall rounded percentage.
func (r *Result) Percent() int {
	return Percent(r.Score, r.Total)
}

// Percentile returns the estimated percentile for this result.
func (r *Result) Percentile() int {
	return Percentile(r.Score, r.Total)
}

// Prediction returns the success prediction for this result.
func (r *Result) Prediction() SuccessPrediction {
	return PredictSuccess(r.Score, r.Total, r.SectionScores)
}

// Attempt is the raw material of a finished session.
type Attempt struct {
	TestID       string
	Questions    []questionbank.Question
	Answers      []int // selected option per question index, NoAnswer when unanswered
	QuestionTime []int // seconds spent per question index
	Elapsed      int   // overall seconds
	Marked       []int // indices marked for review
}

// Score turns an attempt into a Result. It is deterministic: identical
// attempts produce identical results apart from completedAt.
func Score(a Attempt, completedAt time.Time) *Result {
	r := &Result{
		TestID:        a.TestID,
		Total:         len(a.Questions),
		TimeTaken:     a.Elapsed,
		SectionScores: make(map[questionbank.Subject]SectionScore),
		Answers:       make([]int, len(a.Questions)),
		Questions:     make([]QuestionSnapshot, len(a.Questions)),
		CompletedAt:   completedAt.Round(0).UTC(),
	}
	if len(a.Marked) > 0 {
		r.MarkedForReview = append([]int(nil), a.Marked...)
	}

	for i, q := range a.Questions {
		answer := NoAnswer
		if i < len(a.Answers) {
			answer = a.Answers[i]
		}
		r.Answers[i] = answer

		sec := r.SectionScores[q.Subject]
		sec.Total++
		if answer != NoAnswer && q.IsCorrect(answer) {
			sec.Score++
			r.Score++
		}
		if i < len(a.QuestionTime) {
			sec.Time += a.QuestionTime[i]
		}
		r.SectionScores[q.Subject] = sec

		r.Questions[i] = snapshot(q)
	}

	return r
}

func snapshot(q questionbank.Question) QuestionSnapshot {
	return QuestionSnapshot{
		ID:            q.ID,
		Subject:       q.Subject,
		Topic:         q.Topic,
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

// Percent returns round(score/total*100), or 0 when total is not positive.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*200 + total) / (2 * total)
}
