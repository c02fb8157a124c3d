package components

import (
	tea "charm.land/bubbletea/v2"
)

// MenuItem is one home-menu entry. Hotkey, when set, selects and opens the
// item in one keypress.
type MenuItem struct {
	Label    string
	Hotkey   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu tracks the focused entry of a vertical menu. Rendering is left to
// the screen. Focus skips disabled entries and wraps at both ends.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.next(-1, 1)
	return m
}

// next returns the first enabled index after from in direction dir, or
// from when every entry is disabled.
func (m Menu) next(from, dir int) int {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((from+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return from
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch k := key.String(); k {
	case "up", "k":
		m.Selected = m.next(m.Selected, -1)
	case "down", "j", "tab":
		m.Selected = m.next(m.Selected, 1)
	case "home":
		m.Selected = m.next(-1, 1)
	case "end":
		m.Selected = m.next(len(m.Items), -1)
	case "enter":
		return m, m.open(m.Selected)
	default:
		for i, it := range m.Items {
			if it.Hotkey != "" && it.Hotkey == k && !it.Disabled {
				m.Selected = i
				return m, m.open(i)
			}
		}
	}
	return m, nil
}

func (m Menu) open(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	it := m.Items[i]
	if it.Disabled || it.Action == nil {
		return nil
	}
	return it.Action()
}
