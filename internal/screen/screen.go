package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examina/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens that hold timers or other resources.
// The router calls Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// BackHandler is implemented by screens that want to handle Esc
// themselves while CapturesBack returns true, for example to confirm
// leaving a running test.
type BackHandler interface {
	CapturesBack() bool
}

// ResultSavedMsg is broadcast after a test result has been stored.
type ResultSavedMsg struct {
	TestID string
}
