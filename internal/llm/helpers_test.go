package llm

import "context"

// coachNoteSchema mirrors the study-plan coach schema.
var coachNoteSchema = &Schema{
	Name:        "study-coach-note",
	Description: "Focus topics and a weekly goal for an SSC CGL aspirant",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"focus_topics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"weekly_goal": map[string]any{"type": "string"},
			"section": map[string]any{
				"type": "string",
				"enum": []any{"english", "maths", "reasoning", "gk"},
			},
		},
		"required":             []any{"focus_topics", "weekly_goal"},
		"additionalProperties": false,
	},
}

const coachReply = `{"focus_topics":["Percentages","Syllogism"],"weekly_goal":"Finish two timed maths sets"}`

func tutorRequest() (context.Context, Request) {
	ctx := WithPurpose(context.Background(), PurposeTutor)
	return ctx, PurposeTutor.NewRequest("You are the Examina AI tutor for SSC CGL.",
		Message{Role: RoleUser, Content: "How do I find 12.5% of 640 quickly?"},
		Message{Role: RoleAssistant, Content: "12.5% is one eighth."},
		Message{Role: RoleUser, Content: "So the answer is 80?"},
	)
}

func coachRequest() (context.Context, Request) {
	ctx := WithPurpose(context.Background(), PurposeStudyPlan)
	req := PurposeStudyPlan.NewRequest("You are a study coach for the SSC CGL exam.",
		Message{Role: RoleUser, Content: "english: 3/4\nmaths: 1/4\nreasoning: 2/4\ngk: 4/4"})
	req.Schema = coachNoteSchema
	return ctx, req
}
