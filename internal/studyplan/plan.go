// Package studyplan turns diagnostic scores into a personalized plan.
package studyplan

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/scoring"
)

// WeakThreshold is the score ratio below which a subject is weak.
const WeakThreshold = 0.6

// TaskType classifies a study task.
type TaskType string

const (
	TaskContent  TaskType = "content"
	TaskPractice TaskType = "practice"
	TaskRevision TaskType = "revision"
	TaskTest     TaskType = "test"
)

// Task is a single item on a study day.
type Task struct {
	Subject   string   `json:"subject"`
	Topic     string   `json:"topic"`
	Type      TaskType `json:"type"`
	Completed bool     `json:"completed"`
}

// Day is one day of the plan.
type Day struct {
	Day       int    `json:"day"`
	Theme     string `json:"theme"`
	Tasks     []Task `json:"tasks"`
	Completed bool   `json:"completed"`
}

// Template is the unpersonalized plan.
type Template struct {
	Title        string `json:"title"`
	DurationDays int    `json:"duration_days"`
	Days         []Day  `json:"days"`
}

// CoachNote is the optional LLM-written addendum.
type CoachNote struct {
	FocusTopics []string `json:"focus_topics"`
	WeeklyGoal  string   `json:"weekly_goal"`
}

// Plan is a personalized copy of a Template.
type Plan struct {
	Template
	WeakSubjects   []string   `json:"weak_subjects"`
	StrongSubjects []string   `json:"strong_subjects"`
	Recommendation string     `json:"recommendation"`
	Coach          *CoachNote `json:"coach,omitempty"`
}

// SubjectScore is one subject's diagnostic outcome.
type SubjectScore struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
}

//go:embed data/study-plan.json
var templateJSON []byte

var (
	defaultOnce sync.Once
	defaultTmpl *Template
)

// DefaultTemplate returns the embedded 7-day template. Callers get their own
// copy.
func DefaultTemplate() *Template {
	defaultOnce.Do(func() {
		t, err := ParseTemplate(templateJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded study plan: %v", err))
		}
		defaultTmpl = t
	})
	return defaultTmpl.clone()
}

// ParseTemplate decodes a template.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode study plan template: %w", err)
	}
	if len(t.Days) == 0 {
		return nil, fmt.Errorf("study plan template has no days")
	}
	return &t, nil
}

func (t *Template) clone() *Template {
	out := *t
	out.Days = make([]Day, len(t.Days))
	for i, d := range t.Days {
		d.Tasks = slices.Clone(d.Tasks)
		out.Days[i] = d
	}
	return &out
}

// Personalize classifies scores as weak or strong and attaches the matching
// recommendation to a copy of tmpl. Subjects keep their input order; a
// subject with no questions is neither weak nor strong.
func Personalize(scores []SubjectScore, tmpl *Template) *Plan {
	p := &Plan{
		Template:       *tmpl.clone(),
		WeakSubjects:   []string{},
		StrongSubjects: []string{},
	}
	for _, s := range scores {
		if s.Total <= 0 {
			continue
		}
		if float64(s.Score)/float64(s.Total) < WeakThreshold {
			p.WeakSubjects = append(p.WeakSubjects, s.Subject)
		} else {
			p.StrongSubjects = append(p.StrongSubjects, s.Subject)
		}
	}
	p.Recommendation = Recommendation(p.WeakSubjects)
	return p
}

// Recommendation returns the advice text for the given weak subjects.
func Recommendation(weak []string) string {
	if len(weak) == 0 {
		return "Great foundation! Focus on advanced topics and timed practice to build exam-day speed."
	}
	return fmt.Sprintf("Focus extra time on %s. Spend 60%% of your study time on weak areas and 40%% on maintaining strong subjects.",
		strings.Join(weak, ", "))
}

// FromDiagnostic lists the diagnostic's subject scores in canonical order.
func FromDiagnostic(d *scoring.DiagnosticResult) []SubjectScore {
	var out []SubjectScore
	for _, s := range questionbank.AllSubjects {
		sec, ok := d.SubjectScores[s]
		if !ok {
			continue
		}
		out = append(out, SubjectScore{Subject: string(s), Score: sec.Score, Total: sec.Total})
	}
	return out
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	out := *p
	out.Template = *p.Template.clone()
	out.WeakSubjects = slices.Clone(p.WeakSubjects)
	out.StrongSubjects = slices.Clone(p.StrongSubjects)
	if p.Coach != nil {
		c := *p.Coach
		c.FocusTopics = slices.Clone(p.Coach.FocusTopics)
		out.Coach = &c
	}
	return &out
}

// ToggleTask returns a copy of p with the task's completion flipped. Out of
// range indices return an unchanged copy.
func (p *Plan) ToggleTask(day, task int) *Plan {
	out := p.Clone()
	if day < 0 || day >= len(out.Days) || task < 0 || task >= len(out.Days[day].Tasks) {
		return out
	}
	d := &out.Days[day]
	d.Tasks[task].Completed = !d.Tasks[task].Completed
	d.Completed = true
	for _, t := range d.Tasks {
		if !t.Completed {
			d.Completed = false
			break
		}
	}
	return out
}

// CurrentDay returns the index of the first incomplete day, or the last day
// when all are done.
func (p *Plan) CurrentDay() int {
	for i, d := range p.Days {
		if !d.Completed {
			return i
		}
	}
	return max(len(p.Days)-1, 0)
}

// Progress returns completed and total task counts.
func (p *Plan) Progress() (done, total int) {
	for _, d := range p.Days {
		for _, t := range d.Tasks {
			total++
			if t.Completed {
				done++
			}
		}
	}
	return done, total
}
