package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/router"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/layout"
	"github.com/abhisek/examina/internal/ui/theme"
)

// ExplainFunc opens the tutor on a topic. It may be nil.
type ExplainFunc func(topic string) tea.Cmd

// SummaryScreen displays one stored result with its review.
type SummaryScreen struct {
	title     string
	result    *scoring.Result
	review    []scoring.ReviewItem
	reviewing bool
	selected  int
	explain   ExplainFunc
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(title string, r *scoring.Result) *SummaryScreen {
	s := &SummaryScreen{title: title, result: r}
	if r != nil {
		s.review = r.Review()
	}
	return s
}

// WithExplain enables asking the tutor about the selected question's topic.
func (s *SummaryScreen) WithExplain(fn ExplainFunc) *SummaryScreen {
	s.explain = fn
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return s.title
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.reviewing {
		hints := []layout.KeyHint{
			{Key: "↑↓", Description: "Question"},
			{Key: "R", Description: "Scores"},
		}
		if s.explain != nil {
			hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain topic"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return []layout.KeyHint{
		{Key: "R", Description: "Review answers"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "r":
		s.reviewing = !s.reviewing
	case "up", "k":
		if s.reviewing && s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.reviewing && s.selected < len(s.review)-1 {
			s.selected++
		}
	case "e":
		if s.reviewing && s.explain != nil && s.selected < len(s.review) {
			return s, s.explain(s.review[s.selected].Question.Topic)
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	if s.result == nil {
		return ""
	}
	if s.reviewing {
		return s.renderReview(width, height)
	}
	return s.renderScores(width)
}

func (s *SummaryScreen) renderScores(width int) string {
	r := s.result
	pred := r.Prediction()

	var b strings.Builder

	b.WriteString(centered(width, theme.Primary, true, "Test complete!"))
	b.WriteString("\n\n")

	b.WriteString(centered(width, theme.Text, true,
		fmt.Sprintf("Score %d/%d   (%d%%, %s)", r.Score, r.Total, r.Percent(), scoring.Band(r.Percent()))))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.TextDim, false,
		fmt.Sprintf("Time %s   Percentile ~%d", scoring.FormatTime(r.TimeTaken), r.Percentile())))
	b.WriteString("\n\n")

	b.WriteString(centered(width, lipgloss.Color(pred.Color), true,
		fmt.Sprintf("Success chance: %s (%d%%)", pred.Likelihood, pred.Percentage)))
	b.WriteString("\n")
	msg := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(pred.Message)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, msg))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(centered(width, theme.TextDim, false, "Sections"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	for _, subj := range sectionOrder(r.SectionScores) {
		sec := r.SectionScores[subj]
		label := fmt.Sprintf("%-10s %2d/%-2d %5s", subj.Label(), sec.Score, sec.Total, scoring.FormatTime(sec.Time))
		bar := components.Meter{Label: label, Done: sec.Score, Of: sec.Total, Width: barWidth}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *SummaryScreen) renderReview(width, height int) string {
	if len(s.review) == 0 {
		return centered(width, theme.TextDim, false, "\n\nNo questions to review.")
	}

	item := s.review[s.selected]
	q := item.Question
	textWidth := min(width-8, 76)

	var b strings.Builder
	status := "Correct"
	statusColor := theme.Success
	switch {
	case !item.Answered:
		status, statusColor = "Not answered", theme.TextDim
	case !item.Correct:
		status, statusColor = "Incorrect", theme.Error
	}
	if item.Marked {
		status += " · marked"
	}
	b.WriteString(centered(width, statusColor, true,
		fmt.Sprintf("Question %d/%d · %s · %s", item.Index+1, len(s.review), q.Subject.Label(), status)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(q.Text)))
	b.WriteString("\n\n")

	opts := components.NewOptionList(q.Options, item.Chosen, q.CorrectAnswer)
	opts.Cursor = -1
	opts.Reveal = true
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Render(opts.View())))

	if q.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Render(q.Explanation)))
	}
	if q.Topic != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width, theme.Secondary, false, "Topic: "+q.Topic))
	}
	return b.String()
}

// sectionOrder lists result subjects in canonical order.
func sectionOrder(sections map[questionbank.Subject]scoring.SectionScore) []questionbank.Subject {
	var out []questionbank.Subject
	for _, s := range questionbank.AllSubjects {
		if _, ok := sections[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func centered(width int, fg color.Color, bold bool, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Bold(bold).
		Render(text)
}
