package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/ui/theme"
)

// ContentWidth is the column width shared by cards and buttons inside a
// frame of the given width: the frame border and padding take six cells,
// clamped to 20..60.
func ContentWidth(frameWidth int) int {
	return max(20, min(frameWidth-6, 60))
}

// Frame draws the double-ruled exam-hall border around a full screen and
// centres content in it.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card is a rounded, padded panel as wide as the content column.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Padding(1, 2).
		Align(lipgloss.Center).
		Render(content)
}

type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonFocused
	ButtonDisabled
)

// Button renders one bordered menu button.
func Button(label string, state ButtonState, width int) string {
	st := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	switch state {
	case ButtonFocused:
		return st.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + label)
	case ButtonDisabled:
		return st.Foreground(theme.TextDim).Render(label)
	default:
		return st.Foreground(theme.Text).Render(label)
	}
}
