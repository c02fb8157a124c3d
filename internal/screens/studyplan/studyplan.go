package studyplan

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/studyplan"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

type planLoadedMsg struct {
	Plan       *studyplan.Plan
	NoDiagnose bool
	Warning    string
	Err        error
}

type planSavedMsg struct {
	Err error
}

// StudyPlanScreen shows the personalised plan and tracks task completion.
type StudyPlanScreen struct {
	results  *results.Store
	progress *studyplan.Progress
	coach    *studyplan.Coach

	plan       *studyplan.Plan
	day        int
	task       int
	loading    bool
	noDiagnose bool
	warning    string
	errMsg     string
}

var _ screen.Screen = (*StudyPlanScreen)(nil)
var _ screen.KeyHintProvider = (*StudyPlanScreen)(nil)

// New creates a new StudyPlanScreen.
func New(res *results.Store, progress *studyplan.Progress, coach *studyplan.Coach) *StudyPlanScreen {
	return &StudyPlanScreen{
		results:  res,
		progress: progress,
		coach:    coach,
		loading:  true,
	}
}

func (s *StudyPlanScreen) Init() tea.Cmd {
	return s.load(false)
}

func (s *StudyPlanScreen) Title() string {
	return "Study Plan"
}

func (s *StudyPlanScreen) KeyHints() []layout.KeyHint {
	if s.plan == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Day"},
		{Key: "↑↓", Description: "Task"},
		{Key: "Space", Description: "Done"},
		{Key: "G", Description: "Regenerate"},
		{Key: "Esc", Description: "Back"},
	}
}

// load reads the saved plan, generating one from the diagnostic when none
// is stored or regenerate is set.
func (s *StudyPlanScreen) load(regenerate bool) tea.Cmd {
	res, progress, coach := s.results, s.progress, s.coach
	return func() tea.Msg {
		ctx := context.Background()
		if !regenerate {
			p, ok, err := progress.Load(ctx)
			if err != nil {
				return planLoadedMsg{Err: err}
			}
			if ok {
				return planLoadedMsg{Plan: p}
			}
		}

		d, ok := res.GetDiagnostic(ctx)
		if !ok {
			return planLoadedMsg{NoDiagnose: true}
		}

		var warning string
		p, err := coach.Plan(ctx, studyplan.FromDiagnostic(d), studyplan.DefaultTemplate())
		if err != nil {
			warning = "Coaching note unavailable right now."
		}
		if err := progress.Save(ctx, p); err != nil {
			return planLoadedMsg{Err: err}
		}
		return planLoadedMsg{Plan: p, Warning: warning}
	}
}

func (s *StudyPlanScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		s.loading = false
		s.noDiagnose = msg.NoDiagnose
		s.warning = msg.Warning
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		if msg.Plan != nil {
			s.plan = msg.Plan
			s.day = s.plan.CurrentDay()
			s.task = 0
		}
		return s, nil

	case planSavedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case screen.ResultSavedMsg:
		if s.plan == nil && !s.loading {
			s.loading = true
			return s, s.load(false)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyPlanScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.plan == nil || s.loading {
		return s, nil
	}

	switch msg.String() {
	case "right", "l":
		if s.day < len(s.plan.Days)-1 {
			s.day++
			s.task = 0
		}
	case "left", "h":
		if s.day > 0 {
			s.day--
			s.task = 0
		}
	case "down", "j":
		if s.task < len(s.plan.Days[s.day].Tasks)-1 {
			s.task++
		}
	case "up", "k":
		if s.task > 0 {
			s.task--
		}
	case "space", "enter":
		s.plan = s.plan.ToggleTask(s.day, s.task)
		p, progress := s.plan, s.progress
		return s, func() tea.Msg {
			return planSavedMsg{Err: progress.Save(context.Background(), p)}
		}
	case "g":
		s.loading = true
		return s, s.load(true)
	}
	return s, nil
}

func (s *StudyPlanScreen) View(width, height int) string {
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	if s.loading {
		return "\n" + center(dim.Italic(true), "Building your plan...")
	}
	if s.errMsg != "" && s.plan == nil {
		return "\n" + center(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.errMsg)
	}
	if s.noDiagnose || s.plan == nil {
		return "\n" + center(dim.Italic(true),
			"Take the diagnostic test first. Your plan is built from its section scores.")
	}

	cw := components.ContentWidth(width)
	p := s.plan
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), p.Title))
	b.WriteString("\n\n")

	done, total := p.Progress()
	tasks := components.Meter{
		Label: fmt.Sprintf("%d/%d tasks", done, total),
		Done:  done,
		Of:    total,
		Width: cw,
		Fill:  theme.Secondary,
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, tasks.View()))
	b.WriteString("\n\n")

	var note strings.Builder
	if len(p.WeakSubjects) > 0 {
		note.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).
			Render("Weak: " + strings.Join(p.WeakSubjects, ", ")))
		note.WriteString("\n")
	}
	if len(p.StrongSubjects) > 0 {
		note.WriteString(lipgloss.NewStyle().Foreground(theme.Success).
			Render("Strong: " + strings.Join(p.StrongSubjects, ", ")))
		note.WriteString("\n")
	}
	note.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Recommendation))
	if p.Coach != nil {
		note.WriteString("\n\n")
		note.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Coach"))
		note.WriteString("\n")
		if len(p.Coach.FocusTopics) > 0 {
			note.WriteString(lipgloss.NewStyle().Foreground(theme.Text).
				Render("Focus on " + strings.Join(p.Coach.FocusTopics, ", ")))
			note.WriteString("\n")
		}
		note.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Coach.WeeklyGoal))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(note.String(), cw)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderDay(cw)))

	if s.warning != "" {
		b.WriteString("\n\n")
		b.WriteString(center(dim.Italic(true), s.warning))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.errMsg))
	}
	return b.String()
}

func (s *StudyPlanScreen) renderDay(cw int) string {
	d := s.plan.Days[s.day]
	var b strings.Builder

	heading := fmt.Sprintf("Day %d of %d", d.Day, len(s.plan.Days))
	if d.Theme != "" {
		heading += "  ·  " + d.Theme
	}
	if d.Completed {
		heading += "  ✓"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).Render(heading))
	b.WriteString("\n\n")

	for i, t := range d.Tasks {
		box := "[ ]"
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if t.Completed {
			box = "[x]"
			style = lipgloss.NewStyle().Foreground(theme.TextDim).Strikethrough(true)
		}
		cursor := "  "
		if i == s.task {
			cursor = "▸ "
			style = style.Bold(true).Foreground(theme.ArcadeYellow)
		}
		subject := lipgloss.NewStyle().Foreground(theme.SubjectColor(t.Subject)).Render(t.Subject)
		b.WriteString(fmt.Sprintf("%s%s %s  %s %s\n", cursor, box, subject,
			style.Render(t.Topic), lipgloss.NewStyle().Foreground(theme.TextDim).Render("("+string(t.Type)+")")))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}
