package studyplan

import (
	"context"
	"errors"

	"github.com/abhisek/examina/internal/records"
	"github.com/abhisek/examina/internal/store"
)

const progressKey = "study-plan"

var planSchema = records.MustCompile("study-plan", `{
	"type": "object",
	"required": ["title", "days", "weak_subjects", "strong_subjects", "recommendation"],
	"properties": {
		"title": {"type": "string"},
		"duration_days": {"type": "integer", "minimum": 0},
		"days": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["day", "tasks"],
				"properties": {
					"day": {"type": "integer", "minimum": 1},
					"theme": {"type": "string"},
					"completed": {"type": "boolean"},
					"tasks": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["subject", "topic", "type", "completed"],
							"properties": {
								"subject": {"type": "string"},
								"topic": {"type": "string"},
								"type": {"enum": ["content", "practice", "revision", "test"]},
								"completed": {"type": "boolean"}
							}
						}
					}
				}
			}
		},
		"weak_subjects": {"type": "array", "items": {"type": "string"}},
		"strong_subjects": {"type": "array", "items": {"type": "string"}},
		"recommendation": {"type": "string"}
	}
}`)

// Progress persists the active plan, including task completion.
type Progress struct {
	kv store.KeyValueStore
}

// NewProgress returns a Progress over kv.
func NewProgress(kv store.KeyValueStore) *Progress {
	return &Progress{kv: kv}
}

// Save stores p as the active plan.
func (pr *Progress) Save(ctx context.Context, p *Plan) error {
	return records.Write(ctx, pr.kv, progressKey, p)
}

// Load returns the active plan. An invalid stored plan is reported as
// absent; only storage failures return an error.
func (pr *Progress) Load(ctx context.Context) (*Plan, bool, error) {
	var p Plan
	found, err := records.Read(ctx, pr.kv, progressKey, planSchema, &p)
	if errors.Is(err, records.ErrInvalid) {
		return nil, false, nil
	}
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}
