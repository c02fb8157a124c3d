package session

import (
	"sync"
	"time"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/scoring"
)

// Session drives one test attempt. Calls that are not valid in the current
// phase are ignored and leave the state untouched. All methods are safe for
// concurrent use, so the ticker goroutine and the UI can share a Session.
type Session struct {
	mu sync.Mutex

	cfg   Config
	clock Clock

	questions    []questionbank.Question
	answers      []int
	questionTime []int
	marked       map[int]bool

	pointer   int
	phase     Phase
	elapsed   int
	enteredAt time.Time

	cancelTick func()
	result     *scoring.Result
	onSubmit   func(*scoring.Result)
}

// New creates a session over questions. It moves straight to PhaseActive,
// or to PhaseEmpty when there are no questions.
func New(cfg Config, questions []questionbank.Question, clock Clock) *Session {
	if clock == nil {
		clock = RealClock{}
	}
	s := &Session{
		cfg:   cfg,
		clock: clock,
		phase: PhaseInitializing,
	}

	// Initializing: copy the question set and reset every bucket.
	s.questions = append([]questionbank.Question(nil), questions...)
	s.answers = make([]int, len(questions))
	for i := range s.answers {
		s.answers[i] = scoring.NoAnswer
	}
	s.questionTime = make([]int, len(questions))
	s.marked = make(map[int]bool)

	if len(s.questions) == 0 {
		s.phase = PhaseEmpty
		return s
	}
	s.phase = PhaseActive
	s.enteredAt = clock.Now()
	return s
}

// Start begins the one-second overall timer. It is a no-op unless the
// session is active and not already started.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.cancelTick != nil {
		return
	}
	s.cancelTick = s.clock.Every(time.Second, s.tick)
}

// Close stops the timer. Safe to call any number of times; callers should
// defer it when the session view is torn down.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// OnSubmit registers fn to run once when the session is submitted, either
// explicitly or by the countdown expiring. fn runs without the session lock.
func (s *Session) OnSubmit(fn func(*scoring.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmit = fn
}

func (s *Session) tick() {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return
	}
	s.elapsed++

	var submitted *scoring.Result
	if limit := s.limitSeconds(); limit > 0 && s.elapsed >= limit {
		submitted = s.submitLocked()
	}
	hook := s.onSubmit
	s.mu.Unlock()

	if submitted != nil && hook != nil {
		hook(submitted)
	}
}

// SelectOption records option as the answer to the current question,
// replacing any earlier choice.
func (s *Session) SelectOption(option int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return false
	}
	if option < 0 || option >= len(s.questions[s.pointer].Options) {
		return false
	}
	s.answers[s.pointer] = option
	return true
}

// Next moves to the following question, charging the time spent to the
// current one. It reports whether the pointer moved.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canNextLocked() {
		return false
	}
	s.finalizeLocked()
	s.pointer++
	return true
}

// Prev moves back one question. Not available in diagnostic mode.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.cfg.Mode == ModeDiagnostic || s.pointer == 0 {
		return false
	}
	s.finalizeLocked()
	s.pointer--
	return true
}

// GoTo jumps to question i. Only mock tests allow free navigation.
func (s *Session) GoTo(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.cfg.Mode != ModeMock {
		return false
	}
	if i < 0 || i >= len(s.questions) || i == s.pointer {
		return false
	}
	s.finalizeLocked()
	s.pointer = i
	return true
}

// ToggleReview flips the review mark on the current question and returns
// the new mark.
func (s *Session) ToggleReview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return false
	}
	if s.marked[s.pointer] {
		delete(s.marked, s.pointer)
		return false
	}
	s.marked[s.pointer] = true
	return true
}

// Submit finalizes the attempt and returns its Result. Repeated calls
// return the same Result. It returns nil when submission is not allowed
// yet: before the last question (except in mock mode) or, in practice
// mode, while the current answer is wrong.
func (s *Session) Submit() *scoring.Result {
	s.mu.Lock()
	if s.phase == PhaseSubmitted {
		r := s.result
		s.mu.Unlock()
		return r
	}
	if !s.canSubmitLocked() {
		s.mu.Unlock()
		return nil
	}
	r := s.submitLocked()
	hook := s.onSubmit
	s.mu.Unlock()

	if hook != nil {
		hook(r)
	}
	return r
}

// submitLocked scores the attempt unconditionally.
func (s *Session) submitLocked() *scoring.Result {
	s.finalizeLocked()
	s.phase = PhaseSubmitting
	s.stopTimerLocked()

	attempt := scoring.Attempt{
		TestID:       s.cfg.TestID,
		Questions:    s.questions,
		Answers:      append([]int(nil), s.answers...),
		QuestionTime: append([]int(nil), s.questionTime...),
		Elapsed:      s.elapsed,
		Marked:       s.markedLocked(),
	}
	s.result = scoring.Score(attempt, s.clock.Now())
	s.phase = PhaseSubmitted
	return s.result
}

// finalizeLocked charges the whole seconds since the current question was
// entered to its bucket and restarts the per-question timer.
func (s *Session) finalizeLocked() {
	now := s.clock.Now()
	spent := now.Sub(s.enteredAt).Round(time.Second)
	if spent > 0 {
		s.questionTime[s.pointer] += int(spent / time.Second)
	}
	s.enteredAt = now
}

func (s *Session) stopTimerLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}

func (s *Session) canNextLocked() bool {
	if s.phase != PhaseActive || s.pointer >= len(s.questions)-1 {
		return false
	}
	switch s.cfg.Mode {
	case ModeMock:
		return true
	case ModePractice:
		return s.answers[s.pointer] != scoring.NoAnswer && !s.wrongLocked()
	default:
		return s.answers[s.pointer] != scoring.NoAnswer
	}
}

func (s *Session) canSubmitLocked() bool {
	if s.phase != PhaseActive {
		return false
	}
	if s.cfg.Mode == ModeMock {
		return true
	}
	if s.pointer != len(s.questions)-1 || s.answers[s.pointer] == scoring.NoAnswer {
		return false
	}
	return !(s.cfg.Mode == ModePractice && s.wrongLocked())
}

// wrongLocked reports whether the current question has a wrong answer.
func (s *Session) wrongLocked() bool {
	a := s.answers[s.pointer]
	return a != scoring.NoAnswer && !s.questions[s.pointer].IsCorrect(a)
}

func (s *Session) markedLocked() []int {
	var out []int
	for i := range s.questions {
		if s.marked[i] {
			out = append(out, i)
		}
	}
	return out
}

func (s *Session) limitSeconds() int {
	return int(s.cfg.TimeLimit / time.Second)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Current returns the question under the pointer. ok is false for an
// empty session.
func (s *Session) Current() (q questionbank.Question, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return questionbank.Question{}, false
	}
	return s.questions[s.pointer], true
}

// Result returns the submitted Result, or nil before submission.
func (s *Session) Result() *scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// QuestionTime returns the seconds charged to question i so far.
func (s *Session) QuestionTime(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.questionTime) {
		return 0
	}
	return s.questionTime[i]
}

// AnswerAt returns the answer recorded for question i.
func (s *Session) AnswerAt(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.answers) {
		return scoring.NoAnswer
	}
	return s.answers[i]
}

// MarkedAt reports whether question i is marked for review.
func (s *Session) MarkedAt(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[i]
}

// Feedback reports whether the current practice answer is wrong.
func (s *Session) Feedback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions) > 0 && s.cfg.Mode == ModePractice && s.wrongLocked()
}

// Remaining returns the countdown seconds left, or -1 without a time limit.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *Session) remainingLocked() int {
	limit := s.limitSeconds()
	if limit <= 0 {
		return -1
	}
	return max(limit-s.elapsed, 0)
}

// View returns a consistent snapshot for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:     s.phase,
		Mode:      s.cfg.Mode,
		Index:     s.pointer,
		Total:     len(s.questions),
		Selected:  scoring.NoAnswer,
		Elapsed:   s.elapsed,
		Remaining: s.remainingLocked(),
	}
	for _, a := range s.answers {
		if a != scoring.NoAnswer {
			v.Answered++
		}
	}
	if len(s.questions) == 0 {
		return v
	}

	v.Selected = s.answers[s.pointer]
	v.Marked = s.marked[s.pointer]
	v.IsLast = s.pointer == len(s.questions)-1
	v.Feedback = s.cfg.Mode == ModePractice && s.wrongLocked()
	v.CanNext = s.canNextLocked()
	v.CanPrev = s.phase == PhaseActive && s.cfg.Mode != ModeDiagnostic && s.pointer > 0
	v.CanSubmit = s.canSubmitLocked()
	return v
}
