package scoring

import (
	"fmt"
	"time"

	"github.com/abhisek/examina/internal/questionbank"
)

// StrengthThreshold is the percentage at or above which a subject counts
// as a strength.
const StrengthThreshold = 60

// DiagnosticResult is the summary stored after the one-time diagnostic.
type DiagnosticResult struct {
	TotalScore     int                                   `json:"totalScore"`
	TotalQuestions int                                   `json:"totalQuestions"`
	TimeSpent      int                                   `json:"timeSpent"`
	SubjectScores  map[questionbank.Subject]SectionScore `json:"subjectScores"`
	CompletedAt    time.Time                             `json:"completedAt"`
}

// DiagnosticFrom summarises a diagnostic Result.
func DiagnosticFrom(r *Result) *DiagnosticResult {
	scores := make(map[questionbank.Subject]SectionScore, len(r.SectionScores))
	for s, sec := range r.SectionScores {
		scores[s] = sec
	}
	return &DiagnosticResult{
		TotalScore:     r.Score,
		TotalQuestions: r.Total,
		TimeSpent:      r.TimeTaken,
		SubjectScores:  scores,
		CompletedAt:    r.CompletedAt,
	}
}

// Strengths returns subjects at or above StrengthThreshold, in canonical order.
func (d *DiagnosticResult) Strengths() []questionbank.Subject {
	return partition(d.SubjectScores, true)
}

// Weaknesses returns subjects below StrengthThreshold, in canonical order.
func (d *DiagnosticResult) Weaknesses() []questionbank.Subject {
	return partition(d.SubjectScores, false)
}

func partition(scores map[questionbank.Subject]SectionScore, strong bool) []questionbank.Subject {
	var out []questionbank.Subject
	for _, s := range questionbank.AllSubjects {
		sec, ok := scores[s]
		if !ok || sec.Total == 0 {
			continue
		}
		if atLeast(sec.Score, sec.Total, StrengthThreshold) == strong {
			out = append(out, s)
		}
	}
	return out
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ReviewItem is one row of a result review.
type ReviewItem struct {
	Index    int
	Question QuestionSnapshot
	Chosen   int
	Answered bool
	Correct  bool
	Marked   bool
}

// Review lists every question with the candidate's answer.
func (r *Result) Review() []ReviewItem {
	marked := make(map[int]bool, len(r.MarkedForReview))
	for _, i := range r.MarkedForReview {
		marked[i] = true
	}

	items := make([]ReviewItem, len(r.Questions))
	for i, q := range r.Questions {
		chosen := NoAnswer
		if i < len(r.Answers) {
			chosen = r.Answers[i]
		}
		items[i] = ReviewItem{
			Index:    i,
			Question: q,
			Chosen:   chosen,
			Answered: chosen != NoAnswer,
			Correct:  chosen != NoAnswer && chosen == q.CorrectAnswer,
			Marked:   marked[i],
		}
	}
	return items
}
