package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/ui/theme"
)

// Meter is a horizontal bar for a section score or a task count, followed
// by its percentage.
type Meter struct {
	Label    string
	Done, Of int
	Width    int
	// Fill overrides the score-band colour.
	Fill color.Color
}

// Percent is Done/Of as a whole percentage, 0 when Of is zero.
func (m Meter) Percent() int {
	if m.Of <= 0 {
		return 0
	}
	return min(100, max(0, m.Done*100/m.Of))
}

// BandColor grades a percentage: below 40 is weak, below 70 is fair.
func BandColor(pct int) color.Color {
	switch {
	case pct < 40:
		return theme.Error
	case pct < 70:
		return theme.Warning
	default:
		return theme.Success
	}
}

func (m Meter) View() string {
	pct := m.Percent()
	var head string
	if m.Label != "" {
		head = lipgloss.NewStyle().Foreground(theme.Text).Render(m.Label) + "  "
	}
	tail := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3d%%", pct))

	bar := max(4, m.Width-lipgloss.Width(head)-lipgloss.Width(tail))
	filled := bar * pct / 100

	fill := m.Fill
	if fill == nil {
		fill = BandColor(pct)
	}
	return head +
		lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", bar-filled)) +
		tail
}
