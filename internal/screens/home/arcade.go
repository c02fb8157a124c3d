package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/ui/components"
	"github.com/abhisek/examina/internal/ui/theme"
)

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(components.Banner(cw, compact, theme.ArcadeYellow))
}

// renderStatsBar renders readiness, the diagnostic state and flashcard
// mastery in a bordered box matching content width.
func renderStatsBar(rd results.Readiness, diagnosed bool, mastered, cw int, compact bool) string {
	readyStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	testStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	cardStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	diag := dimStyle.Render("○ NO DIAGNOSTIC")
	if diagnosed {
		diag = cardStyle.Render("✓ DIAGNOSED")
	}

	var stats string
	if compact {
		if diagnosed {
			diag = cardStyle.Render("✓")
		} else {
			diag = dimStyle.Render("○")
		}
		stats = fmt.Sprintf("%s %s %s %s",
			readyStyle.Render(fmt.Sprintf("▲%d%%", rd.Percent)),
			testStyle.Render(fmt.Sprintf("✎%d", rd.TestsTaken)),
			cardStyle.Render(fmt.Sprintf("★%d", mastered)),
			diag,
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s\n%s",
			readyStyle.Render(fmt.Sprintf("▲ %d%% READY", rd.Percent)),
			testStyle.Render(fmt.Sprintf("✎ %d TESTS", rd.TestsTaken)),
			cardStyle.Render(fmt.Sprintf("★ %d CARDS", mastered)),
			diag,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	buttons := make([]string, len(items))
	for i, label := range items {
		state := components.ButtonIdle
		switch {
		case disabled[i]:
			state = components.ButtonDisabled
		case i == selected:
			state = components.ButtonFocused
		}
		buttons[i] = components.Button(label, state, buttonWidth)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as plain text lines for
// terminals too small for bordered buttons.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderLLMBanner renders a notice when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to enable the AI tutor (see examina --help)")
}

// renderHotkeyHint lists the letters that open enabled items directly.
func renderHotkeyHint(cw int, disabled map[int]bool) string {
	var keys []string
	for i, k := range menuHotkeys {
		if !disabled[i] {
			keys = append(keys, k)
		}
	}
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("↑/↓ move · enter open · " + strings.Join(keys, " ") + " jump")
}
