package session

import "time"

// Phase represents the lifecycle stage of a test session.
type Phase int

const (
	PhaseInitializing Phase = iota // Loading questions and resetting buckets
	PhaseActive                    // Accepting answers and navigation
	PhaseSubmitting                // Finalizing time and scoring
	PhaseSubmitted                 // Terminal; the Result is available
	PhaseEmpty                     // No questions were available; terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Mode selects the navigation rules for a session.
type Mode int

const (
	// ModeDiagnostic moves strictly forward and needs an answer before Next.
	ModeDiagnostic Mode = iota

	// ModePractice needs a correct answer before moving forward.
	ModePractice

	// ModeMock allows skipping, free navigation and early submission.
	ModeMock
)

func (m Mode) String() string {
	switch m {
	case ModeDiagnostic:
		return "diagnostic"
	case ModePractice:
		return "practice"
	case ModeMock:
		return "mock"
	default:
		return "unknown"
	}
}

// Config describes the test being taken.
type Config struct {
	// TestID keys the stored result, e.g. "english-practice".
	TestID string

	// Mode selects navigation and retry rules.
	Mode Mode

	// TimeLimit, when positive, is a countdown that auto-submits at zero.
	TimeLimit time.Duration
}

// View is a consistent read of the session for rendering.
type View struct {
	Phase     Phase
	Mode      Mode
	Index     int
	Total     int
	Selected  int // scoring.NoAnswer when unanswered
	Marked    bool
	Elapsed   int // seconds
	Remaining int // seconds; -1 when there is no countdown
	Answered  int
	Feedback  bool // practice mode: the current answer is wrong
	CanNext   bool
	CanPrev   bool
	CanSubmit bool
	IsLast    bool
}
