// Package results persists scored tests and rolls them up into an overall
// readiness figure.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/records"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/store"
)

const (
	resultPrefix  = "result:"
	diagnosticKey = "diagnostic-result"
)

// ErrInconsistent is returned by Validate for a result whose counts do not
// add up.
var ErrInconsistent = errors.New("inconsistent result")

// Readiness is the rollup over every attempted rollup test.
type Readiness struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percent    int `json:"percent"`
	Percentile int `json:"percentile"`
	TestsTaken int `json:"testsTaken"`
}

// Store reads and writes results in one namespace. Reads never fail: a
// missing, malformed or invalid record is reported as absent.
type Store struct {
	kv  store.KeyValueStore
	log *zap.Logger
}

// New returns a Store over kv. A nil logger discards output.
func New(kv store.KeyValueStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Key returns the storage key for a test's result.
func Key(testID string) string {
	return resultPrefix + testID
}

// Validate checks an encoded Result and decodes it.
func Validate(raw []byte) (*scoring.Result, error) {
	var r scoring.Result
	if err := records.Decode(resultSchema, raw, &r); err != nil {
		return nil, err
	}
	if err := consistent(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// consistent checks that the counts in r agree with its questions and
// answers: every answer is in range, each section matches the questions of
// its subject, and the overall score and total are the section sums.
func consistent(r *scoring.Result) error {
	if len(r.Answers) != len(r.Questions) {
		return fmt.Errorf("%w: %d answers for %d questions", ErrInconsistent, len(r.Answers), len(r.Questions))
	}
	if r.Total != len(r.Questions) {
		return fmt.Errorf("%w: total %d for %d questions", ErrInconsistent, r.Total, len(r.Questions))
	}

	tally := make(map[questionbank.Subject]scoring.SectionScore)
	for i, q := range r.Questions {
		a := r.Answers[i]
		if a != scoring.NoAnswer && (a < 0 || a >= len(q.Options)) {
			return fmt.Errorf("%w: answer %d out of range for question %s", ErrInconsistent, a, q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("%w: correct answer %d out of range for question %s", ErrInconsistent, q.CorrectAnswer, q.ID)
		}
		sec := tally[q.Subject]
		sec.Total++
		if a == q.CorrectAnswer {
			sec.Score++
		}
		tally[q.Subject] = sec
	}

	score, total := 0, 0
	for subj, sec := range r.SectionScores {
		switch {
		case sec.Total <= 0:
			return fmt.Errorf("%w: %s section has total %d", ErrInconsistent, subj, sec.Total)
		case sec.Score < 0 || sec.Score > sec.Total:
			return fmt.Errorf("%w: %s section score %d outside 0..%d", ErrInconsistent, subj, sec.Score, sec.Total)
		}
		want := tally[subj]
		if sec.Total != want.Total || sec.Score != want.Score {
			return fmt.Errorf("%w: %s section %d/%d, questions give %d/%d", ErrInconsistent, subj, sec.Score, sec.Total, want.Score, want.Total)
		}
		score += sec.Score
		total += sec.Total
	}
	if total != r.Total {
		return fmt.Errorf("%w: section totals sum to %d, total is %d", ErrInconsistent, total, r.Total)
	}
	if score != r.Score {
		return fmt.Errorf("%w: section scores sum to %d, score is %d", ErrInconsistent, score, r.Score)
	}

	for _, i := range r.MarkedForReview {
		if i < 0 || i >= len(r.Questions) {
			return fmt.Errorf("%w: review mark %d out of range", ErrInconsistent, i)
		}
	}
	return nil
}

// Put stores r under its test id, replacing any earlier attempt.
func (s *Store) Put(ctx context.Context, testID string, r *scoring.Result) error {
	if err := records.Write(ctx, s.kv, Key(testID), r); err != nil {
		return fmt.Errorf("save result %s: %w", testID, err)
	}
	return nil
}

// PutRaw validates an encoded result and stores it as is. The result's
// own test id must be testID.
func (s *Store) PutRaw(ctx context.Context, testID string, raw []byte) (*scoring.Result, error) {
	r, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	if r.TestID != testID {
		return nil, fmt.Errorf("%w: result for %q stored as %q", ErrInconsistent, r.TestID, testID)
	}
	if err := s.kv.Put(ctx, Key(testID), raw); err != nil {
		return nil, fmt.Errorf("save result %s: %w", testID, err)
	}
	return r, nil
}

// Get returns the stored result for testID.
func (s *Store) Get(ctx context.Context, testID string) (*scoring.Result, bool) {
	raw, ok, err := s.kv.Get(ctx, Key(testID))
	if err != nil {
		s.log.Error("Failed to read result", zap.String("test_id", testID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	r, err := Validate(raw)
	if err != nil {
		s.log.Warn("Ignoring invalid result", zap.String("test_id", testID), zap.Error(err))
		return nil, false
	}
	return r, true
}

// PutDiagnostic stores the diagnostic summary.
func (s *Store) PutDiagnostic(ctx context.Context, d *scoring.DiagnosticResult) error {
	if err := records.Write(ctx, s.kv, diagnosticKey, d); err != nil {
		return fmt.Errorf("save diagnostic: %w", err)
	}
	return nil
}

// DecodeDiagnostic validates and decodes an encoded DiagnosticResult.
func DecodeDiagnostic(raw []byte) (*scoring.DiagnosticResult, error) {
	var d scoring.DiagnosticResult
	if err := records.Decode(diagnosticSchema, raw, &d); err != nil {
		return nil, err
	}
	if d.TotalScore > d.TotalQuestions {
		return nil, fmt.Errorf("%w: score %d exceeds total %d", ErrInconsistent, d.TotalScore, d.TotalQuestions)
	}
	return &d, nil
}

// GetDiagnostic returns the stored diagnostic summary.
func (s *Store) GetDiagnostic(ctx context.Context) (*scoring.DiagnosticResult, bool) {
	raw, ok, err := s.kv.Get(ctx, diagnosticKey)
	if err != nil {
		s.log.Error("Failed to read diagnostic", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	d, err := DecodeDiagnostic(raw)
	if err != nil {
		s.log.Warn("Ignoring invalid diagnostic", zap.Error(err))
		return nil, false
	}
	return d, true
}

// Rollup sums every readable rollup test.
func (s *Store) Rollup(ctx context.Context) Readiness {
	var rd Readiness
	for _, id := range catalog.RollupIDs() {
		r, ok := s.Get(ctx, id)
		if !ok {
			continue
		}
		rd.Score += r.Score
		rd.Total += r.Total
		rd.TestsTaken++
	}
	rd.Percent = scoring.Percent(rd.Score, rd.Total)
	rd.Percentile = scoring.Percentile(rd.Score, rd.Total)
	return rd
}

// TestIDs lists the tests that have a stored result, valid or not.
func (s *Store) TestIDs(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	var ids []string
	for _, k := range keys {
		if id, ok := strings.CutPrefix(k, resultPrefix); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Clear removes every key in the namespace, including study-plan progress,
// flashcard mastery and tutor usage.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the API and CLI view of a result.
type Summary struct {
	Result     *scoring.Result           `json:"result"`
	Percent    int                       `json:"percent"`
	Percentile int                       `json:"percentile"`
	Prediction scoring.SuccessPrediction `json:"prediction"`
}

// Summarize bundles r with its derived figures.
func Summarize(r *scoring.Result) Summary {
	return Summary{
		Result:     r,
		Percent:    r.Percent(),
		Percentile: r.Percentile(),
		Prediction: r.Prediction(),
	}
}
