package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/ui/layout"
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

// BackHandler is implemented by screens that consume Esc themselves
// instead of letting the root pop them.
type BackHandler interface {
	HandlesBack() bool
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// SignedInMsg tells the root model a session was established.
type SignedInMsg struct{}

// SignedOutMsg tells the root model the session ended, either by the
// learner or because a token refresh failed.
type SignedOutMsg struct{}

// SignIn emits SignedInMsg.
func SignIn() tea.Msg { return SignedInMsg{} }

// SignOut emits SignedOutMsg.
func SignOut() tea.Msg { return SignedOutMsg{} }

// Loaded carries the outcome of a resource fetch back to the screen.
type Loaded[T any] struct {
	State fetch.State[T]
}

// Load refetches r off the UI goroutine and delivers Loaded[T].
func Load[T any](r *fetch.Resource[T]) tea.Cmd {
	return func() tea.Msg {
		return Loaded[T]{State: r.Refetch(context.Background())}
	}
}
