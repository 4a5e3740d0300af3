// Package tui is the root Bubble Tea model: it owns the screen router,
// the header counters and the sign-in/sign-out transitions.
package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/home"
	"github.com/abhisek/levo/internal/screens/login"
	"github.com/abhisek/levo/internal/screens/welcome"
	"github.com/abhisek/levo/internal/ui/layout"
)

// stateClearedMsg reports that sign-out finished clearing local state.
type stateClearedMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	app    *app.App
	router *router.Router
	width  int
	height int
}

// New creates the root model. The splash screen hands over to home when a
// session was restored and to login otherwise.
func New(a *app.App) Model {
	splash := welcome.New(func() screen.Screen {
		if a.Authenticated() {
			return home.New(a)
		}
		return login.New(a)
	})
	return Model{
		app:    a,
		router: router.New(splash),
	}
}

func (m Model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.SignedInMsg:
		m.app.Logger.Info("signed in")
		return m, m.router.Reset(home.New(m.app))

	case screen.SignedOutMsg:
		a := m.app
		// The login screen only appears once the counters of a session
		// lost to a failed refresh are cleared.
		return m, func() tea.Msg {
			a.Logout(context.Background())
			return stateClearedMsg{}
		}

	case stateClearedMsg:
		m.app.Logger.Info("signed out")
		return m, m.router.Reset(login.New(m.app))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m Model) counters() *layout.Counters {
	if !m.app.Authenticated() {
		return nil
	}
	hs := m.app.Hearts.State()
	ps := m.app.Progress.State()
	return &layout.Counters{
		Hearts:    hs.Current,
		MaxHearts: hs.Max,
		Premium:   hs.Premium,
		Coins:     ps.Coins,
		Streak:    ps.StreakDays,
	}
}

func (m Model) hints() []layout.KeyHint {
	if hp, ok := m.router.Active().(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.counters(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(a *app.App) error {
	p := tea.NewProgram(New(a))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
