package results

import "github.com/abhisek/examina/internal/records"

const sectionScoresSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["score", "total"],
		"properties": {
			"score": {"type": "integer", "minimum": 0},
			"total": {"type": "integer", "minimum": 0},
			"time": {"type": "integer", "minimum": 0}
		}
	}
}`

var resultSchema = records.MustCompile("result", `{
	"type": "object",
	"required": ["testId", "score", "total", "timeTaken", "sectionScores", "answers", "questions"],
	"properties": {
		"testId": {"type": "string", "minLength": 1},
		"score": {"type": "integer", "minimum": 0},
		"total": {"type": "integer", "minimum": 0},
		"timeTaken": {"type": "integer", "minimum": 0},
		"sectionScores": `+sectionScoresSchema+`,
		"answers": {"type": "array", "items": {"type": "integer", "minimum": -1, "maximum": 3}},
		"markedForReview": {"type": "array", "items": {"type": "integer", "minimum": 0}},
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "subject", "options", "correct_answer"],
				"properties": {
					"id": {"type": "string"},
					"subject": {"enum": ["english", "maths", "reasoning", "gk"]},
					"options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
					"correct_answer": {"type": "integer", "minimum": 0, "maximum": 3}
				}
			}
		},
		"completedAt": {"type": "string"}
	}
}`)

var diagnosticSchema = records.MustCompile("diagnostic-result", `{
	"type": "object",
	"required": ["totalScore", "totalQuestions", "subjectScores"],
	"properties": {
		"totalScore": {"type": "integer", "minimum": 0},
		"totalQuestions": {"type": "integer", "minimum": 0},
		"timeSpent": {"type": "integer", "minimum": 0},
		"subjectScores": `+sectionScoresSchema+`,
		"completedAt": {"type": "string"}
	}
}`)
