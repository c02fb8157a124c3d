package session

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/scoring"
	sess "github.com/abhisek/examina/internal/session"
	"github.com/abhisek/examina/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.state == nil {
		return renderCentered(width, theme.TextDim, "\n\n\n  Preparing your test...")
	}
	switch s.state.Phase() {
	case sess.PhaseEmpty:
		return renderCentered(width, theme.TextDim,
			"\n\n\n  No questions are available for this test yet.\n\n  Press any key to go back.")
	case sess.PhaseSubmitting, sess.PhaseSubmitted:
		if s.errMsg != "" {
			return renderCentered(width, theme.Error, "\n\n\n  Could not save result: "+s.errMsg)
		}
		return renderCentered(width, theme.TextDim, "\n\n\n  Scoring your test...")
	}

	switch s.confirm {
	case confirmQuit:
		return renderConfirm(width, "Leave this test?", "Your answers will not be saved.")
	case confirmSubmit:
		v := s.state.View()
		detail := "You cannot change answers after submitting."
		if left := v.Total - v.Answered; left > 0 {
			detail = fmt.Sprintf("%d question(s) are still unanswered.", left)
		}
		return renderConfirm(width, "Submit the test?", detail)
	}
	return s.renderQuestionView(width)
}

// renderQuestionView renders the active question display.
func (s *SessionScreen) renderQuestionView(width int) string {
	v := s.state.View()
	q, _ := s.state.Current()

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.SubjectColor(string(q.Subject))).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", q.Subject.Label(), q.Topic))

	var timer string
	if v.Remaining >= 0 {
		style := lipgloss.NewStyle().Foreground(theme.Accent)
		if v.Remaining <= 60 {
			style = style.Foreground(theme.Error).Bold(true)
		}
		timer = style.Render("⏱ " + scoring.FormatTime(v.Remaining) + " left")
	} else {
		timer = lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱ " + scoring.FormatTime(v.Elapsed))
	}

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  answered %d  ", v.Index+1, v.Total, v.Answered)) + timer

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if v.Mode == sess.ModeMock {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderPalette(v)))
		b.WriteString("\n\n")
	}

	textWidth := min(width-8, 76)
	questionText := lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionText))
	b.WriteString("\n\n")

	options := lipgloss.NewStyle().Width(textWidth).Render(s.options.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, options))

	if v.Marked {
		b.WriteString("\n")
		b.WriteString(renderCentered(width, theme.Warning, "◆ Marked for review"))
	}

	if v.Mode == sess.ModePractice && v.Selected != scoring.NoAnswer {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width, v.Feedback, q.Explanation))
	}

	return b.String()
}

// renderPalette shows one cell per question: answered, unanswered,
// marked, and the current position.
func (s *SessionScreen) renderPalette(v sess.View) string {
	cells := make([]string, v.Total)
	for i := range cells {
		glyph := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if s.state.AnswerAt(i) != scoring.NoAnswer {
			glyph = "●"
			style = style.Foreground(theme.Secondary)
		}
		if s.state.MarkedAt(i) {
			glyph = "◆"
			style = style.Foreground(theme.Warning)
		}
		if i == v.Index {
			style = style.Foreground(theme.ArcadeYellow).Bold(true)
		}
		cells[i] = style.Render(glyph)
	}

	var rows []string
	const perRow = 20
	for start := 0; start < len(cells); start += perRow {
		end := min(start+perRow, len(cells))
		rows = append(rows, strings.Join(cells[start:end], " "))
	}
	return strings.Join(rows, "\n")
}

// renderFeedback renders the practice-mode verdict for the chosen option.
func (s *SessionScreen) renderFeedback(width int, wrong bool, explanation string) string {
	if wrong {
		return renderCentered(width, theme.Error, "✗ Not quite. Try another option.")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Bold(true).
		Render("✓ Correct!"))
	if explanation != "" {
		b.WriteString("\n")
		exp := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.TextDim).
			Render(explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
	}
	return b.String()
}

// renderConfirm renders a yes/no dialog.
func renderConfirm(width int, question, detail string) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(question))
	b.WriteString("\n")
	b.WriteString(renderCentered(width, theme.TextDim, detail))
	b.WriteString("\n\n")

	b.WriteString(renderCentered(width, theme.Success, "[Y] Yes"))
	b.WriteString("\n")
	b.WriteString(renderCentered(width, theme.Primary, "[N] No, keep going"))

	return b.String()
}

func renderCentered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}
