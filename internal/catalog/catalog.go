package catalog

import (
	"time"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/session"
)

// Test IDs. Results are stored under these.
const (
	Diagnostic        = "diagnostic"
	FullMock1         = "full-mock-1"
	EnglishPractice   = "english-practice"
	MathsPractice     = "maths-practice"
	ReasoningPractice = "reasoning-practice"
	GKPractice        = "gk-practice"
)

// Test describes one entry in the test catalog.
type Test struct {
	ID            string
	Title         string
	Minutes       int // 0 means count-up only
	Subject       questionbank.Subject
	QuestionCount int
	Mode          session.Mode
}

// TimeLimit returns the countdown for the test, or zero when untimed.
func (t Test) TimeLimit() time.Duration {
	return time.Duration(t.Minutes) * time.Minute
}

// SessionConfig returns the session configuration for taking t.
func (t Test) SessionConfig() session.Config {
	return session.Config{
		TestID:    t.ID,
		Mode:      t.Mode,
		TimeLimit: t.TimeLimit(),
	}
}

// Mixed reports whether the test draws from every subject.
func (t Test) Mixed() bool {
	return t.Subject == ""
}

var tests = []Test{
	{ID: Diagnostic, Title: "Diagnostic Test", QuestionCount: 15, Mode: session.ModeDiagnostic},
	{ID: FullMock1, Title: "SSC CGL Full Mock Test 1", Minutes: 60, QuestionCount: 60, Mode: session.ModeMock},
	{ID: EnglishPractice, Title: "English Practice Set", Minutes: 15, Subject: questionbank.English, QuestionCount: 15, Mode: session.ModePractice},
	{ID: MathsPractice, Title: "Maths Practice Set", Minutes: 20, Subject: questionbank.Maths, QuestionCount: 15, Mode: session.ModePractice},
	{ID: ReasoningPractice, Title: "Reasoning Practice Set", Minutes: 15, Subject: questionbank.Reasoning, QuestionCount: 15, Mode: session.ModePractice},
	{ID: GKPractice, Title: "GK Practice Set", Minutes: 10, Subject: questionbank.GK, QuestionCount: 15, Mode: session.ModePractice},
}

// All returns every test in display order.
func All() []Test {
	return append([]Test(nil), tests...)
}

// Get looks up a test by ID.
func Get(id string) (Test, bool) {
	for _, t := range tests {
		if t.ID == id {
			return t, true
		}
	}
	return Test{}, false
}

// Practice returns the per-subject practice sets.
func Practice() []Test {
	var out []Test
	for _, t := range tests {
		if t.Mode == session.ModePractice {
			out = append(out, t)
		}
	}
	return out
}

// RollupIDs lists the tests that count towards overall readiness.
func RollupIDs() []string {
	return []string{FullMock1, EnglishPractice, MathsPractice, ReasoningPractice, GKPractice}
}
