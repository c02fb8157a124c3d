package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examina/internal/ui/theme"
)

// Unchosen marks an OptionList with nothing picked.
const Unchosen = -1

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// OptionList is a lettered multiple-choice selector. The cursor moves
// freely; Chosen is the option the candidate committed to. When Reveal is
// set the correct option and a wrong choice are colored.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
	Correct int
	Reveal  bool
}

// NewOptionList creates a selector with the cursor on the first option.
func NewOptionList(options []string, chosen, correct int) OptionList {
	cursor := 0
	if chosen >= 0 && chosen < len(options) {
		cursor = chosen
	}
	return OptionList{
		Options: options,
		Cursor:  cursor,
		Chosen:  chosen,
		Correct: correct,
	}
}

// Update moves the cursor. It reports the option picked with Enter, a
// number key or a letter key, or Unchosen when nothing was picked.
func (m OptionList) Update(msg tea.Msg) (OptionList, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, Unchosen
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, Unchosen
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
		return m, Unchosen
	case "enter":
		return m, m.Cursor
	}

	if i := optionIndex(key); i >= 0 && i < len(m.Options) {
		m.Cursor = i
		return m, i
	}
	return m, Unchosen
}

// optionIndex maps "1".."6" and "a".."f" to an option index.
func optionIndex(key string) int {
	if len(key) != 1 {
		return -1
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '6':
		return int(c - '1')
	case c >= 'a' && c <= 'f':
		return int(c - 'a')
	}
	return -1
}

// Label returns the letter shown for option i.
func Label(i int) string {
	if i < 0 || i >= len(optionLabels) {
		return "?"
	}
	return optionLabels[i]
}

// View renders the options one per line.
func (m OptionList) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, Label(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Reveal && i == m.Correct:
			style = style.Foreground(theme.Success).Bold(true)
		case m.Reveal && i == m.Chosen:
			style = style.Foreground(theme.Error).Bold(true)
		case i == m.Chosen:
			style = style.Foreground(theme.Secondary).Bold(true)
		case i == m.Cursor:
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
