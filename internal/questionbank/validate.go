package questionbank

import (
	"fmt"
	"strings"
)

// validateQuestions performs all structural checks on the given question set.
// Returns a combined error describing every problem found, or nil if valid.
func validateQuestions(questions []Question) error {
	var errs []string

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			errs = append(errs, fmt.Sprintf("question #%d has an empty ID", i))
		} else if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		seen[q.ID] = true

		errs = append(errs, checkQuestion(q)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("question bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// checkQuestion returns the problems with a single question.
func checkQuestion(q Question) []string {
	var errs []string
	if !q.Subject.Valid() {
		errs = append(errs, fmt.Sprintf("question %q has unknown subject %q", q.ID, q.Subject))
	}
	if !q.Type.Valid() {
		errs = append(errs, fmt.Sprintf("question %q has unknown type %q", q.ID, q.Type))
	}
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, fmt.Sprintf("question %q has empty text", q.ID))
	}
	if len(q.Options) != OptionCount {
		errs = append(errs, fmt.Sprintf("question %q has %d options, want %d", q.ID, len(q.Options), OptionCount))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		errs = append(errs, fmt.Sprintf("question %q has correct answer %d out of range", q.ID, q.CorrectAnswer))
	}
	return errs
}
