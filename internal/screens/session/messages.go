package session

import (
	"time"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/scoring"
)

// questionsReadyMsg carries the sampled question set.
type questionsReadyMsg struct {
	Questions []questionbank.Question
}

// timerTickMsg is sent every second to refresh the timer display and to
// notice a countdown auto-submit.
type timerTickMsg time.Time

// resultSavedMsg reports that the submitted result was persisted.
type resultSavedMsg struct {
	Result *scoring.Result
	Err    error
}
