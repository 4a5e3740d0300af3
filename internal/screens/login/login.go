package login

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

type loginDoneMsg struct {
	Err error
}

// LoginScreen asks for an email and signs in with it.
type LoginScreen struct {
	app    *app.App
	input  components.TextInput
	busy   bool
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(a *app.App) *LoginScreen {
	return &LoginScreen{
		app:   a,
		input: components.NewTextInput("you@example.com", 120, validateEmail),
	}
}

func validateEmail(s string) error {
	if s == "" {
		return errors.New("enter your email")
	}
	if _, err := mail.ParseAddress(s); err != nil || !strings.Contains(s, "@") {
		return errors.New("that does not look like an email address")
	}
	return nil
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *LoginScreen) Title() string {
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		return s, screen.SignIn

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if msg.String() == "enter" {
			return s.submit()
		}
		s.errMsg = ""
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	email, err := s.input.Submit()
	if err != nil {
		return s, nil
	}
	s.busy = true
	s.errMsg = ""
	a := s.app
	return s, func() tea.Msg {
		return loginDoneMsg{Err: a.Login(context.Background(), email, "")}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("Welcome to Levo"))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Sign in with your email to pick up where you left off."))
	b.WriteString("\n\n")
	b.WriteString(layout.Center(width, components.Card(s.input.View(), components.ContentWidth(width))))
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(layout.Center(width, theme.Hint.Render("Signing in...")))
	case s.errMsg != "":
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}
