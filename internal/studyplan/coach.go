package studyplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/examina/internal/llm"
)

// CoachSchema defines the JSON schema for the coaching note.
var CoachSchema = &llm.Schema{
	Name:        "study-coach-note",
	Description: "Focus topics and a weekly goal for an SSC CGL aspirant",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"focus_topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 specific topics to prioritise this week",
			},
			"weekly_goal": map[string]any{
				"type":        "string",
				"description": "One measurable goal for the week (one sentence)",
			},
		},
		"required":             []any{"focus_topics", "weekly_goal"},
		"additionalProperties": false,
	},
}

const coachSystemPrompt = `You are a study coach for the SSC CGL exam. Sections are English, Mathematics, Reasoning and General Knowledge.
Given section scores from a diagnostic test, name the most useful topics to focus on and one concrete weekly goal.
Be specific and brief.`

// Coach adds an LLM-written note to the rule-based plan.
type Coach struct {
	provider llm.Provider
}

// NewCoach returns a Coach. A nil provider makes it purely rule-based.
func NewCoach(provider llm.Provider) *Coach {
	return &Coach{provider: provider}
}

// Plan personalizes tmpl and, when a provider is configured, attaches a
// coaching note. The returned plan is always usable; err reports why the
// note is missing.
func (c *Coach) Plan(ctx context.Context, scores []SubjectScore, tmpl *Template) (*Plan, error) {
	p := Personalize(scores, tmpl)
	if c == nil || c.provider == nil {
		return p, nil
	}

	note, err := c.note(ctx, scores, p)
	if err != nil {
		return p, err
	}
	p.Coach = note
	return p, nil
}

func (c *Coach) note(ctx context.Context, scores []SubjectScore, p *Plan) (*CoachNote, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeStudyPlan)
	req := llm.PurposeStudyPlan.NewRequest(coachSystemPrompt,
		llm.Message{Role: llm.RoleUser, Content: buildCoachMessage(scores, p)})
	req.Schema = CoachSchema

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("study coach: %w", err)
	}

	var note CoachNote
	if err := json.Unmarshal(resp.Content, &note); err != nil {
		return nil, fmt.Errorf("parse coach response: %w", err)
	}
	return &note, nil
}

func buildCoachMessage(scores []SubjectScore, p *Plan) string {
	var b strings.Builder
	b.WriteString("Diagnostic scores:\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "- %s: %d/%d\n", s.Subject, s.Score, s.Total)
	}
	if len(p.WeakSubjects) > 0 {
		fmt.Fprintf(&b, "Weak subjects: %s\n", strings.Join(p.WeakSubjects, ", "))
	}
	fmt.Fprintf(&b, "The plan runs for %d days.", len(p.Days))
	return b.String()
}
