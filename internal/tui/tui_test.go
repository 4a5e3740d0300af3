package tui

import (
	"net/http"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/app/apptest"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/home"
	"github.com/abhisek/levo/internal/screens/login"
	"github.com/abhisek/levo/internal/ui/layout"
)

type stubScreen struct {
	back bool
	keys []string
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) View(width, height int) string { return "stub" }
func (s *stubScreen) Title() string { return "Stub" }
func (s *stubScreen) HandlesBack() bool { return s.back }

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func newApp(t *testing.T) *app.App {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/home", map[string]any{"hearts": map[string]any{"current": 5, "max": 5}})
	return apptest.New(t, b)
}

func TestSplashHandsOverToLogin(t *testing.T) {
	m := New(newApp(t))

	m, cmd := update(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &login.LoginScreen{}, msg.Screen)

	m, _ = update(t, m, msg)
	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Sign in", m.router.Active().Title())
}

func TestSplashHandsOverToHomeWhenSignedIn(t *testing.T) {
	a := newApp(t)
	apptest.SignIn(a)
	m := New(a)

	_, cmd := update(t, m, specialKey(tea.KeyEnter))
	msg := cmd().(router.ReplaceScreenMsg)
	assert.IsType(t, &home.HomeScreen{}, msg.Screen)
}

func TestSignedInResetsToHome(t *testing.T) {
	a := newApp(t)
	m := New(a)
	m.router.Push(&stubScreen{})

	apptest.SignIn(a)
	m, cmd := update(t, m, screen.SignedInMsg{})

	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &home.HomeScreen{}, m.router.Active())
}

func TestSignedOutResetsToLoginAndClearsCounters(t *testing.T) {
	a := newApp(t)
	apptest.SignIn(a)
	a.Progress.SetCoins(80)
	m := New(a)
	m.router.Push(&stubScreen{})

	a.Session.Logout(t.Context())
	m, cmd := update(t, m, screen.SignedOutMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.router.Depth(), "login waits for the state to clear")

	msg := cmd()
	assert.Zero(t, a.Progress.State().Coins)
	assert.IsType(t, stateClearedMsg{}, msg)

	m, _ = update(t, m, msg)
	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &login.LoginScreen{}, m.router.Active())
}

func TestSignInAfterSignOutKeepsNewSession(t *testing.T) {
	a := newApp(t)
	apptest.SignIn(a)
	m := New(a)

	m, cmd := update(t, m, screen.SignedOutMsg{})
	m, _ = update(t, m, cmd())

	apptest.SignIn(a)
	a.Progress.SetCoins(12)
	m, _ = update(t, m, screen.SignedInMsg{})

	assert.True(t, a.Authenticated())
	assert.Equal(t, 12, a.Progress.State().Coins)
	assert.IsType(t, &home.HomeScreen{}, m.router.Active())
}

func TestEscPopsPushedScreen(t *testing.T) {
	m := New(newApp(t))
	m.router.Push(&stubScreen{})

	m, cmd := update(t, m, specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)

	// At the root Esc does nothing.
	m.router.Pop()
	_, cmd = update(t, m, specialKey(tea.KeyEscape))
	assert.Nil(t, cmd)
}

func TestEscForwardedToBackHandler(t *testing.T) {
	m := New(newApp(t))
	s := &stubScreen{back: true}
	m.router.Push(s)

	m, cmd := update(t, m, specialKey(tea.KeyEscape))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"esc"}, s.keys)
	assert.Equal(t, 2, m.router.Depth())
}

func TestCtrlCQuits(t *testing.T) {
	m := New(newApp(t))
	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCountersHiddenWhenSignedOut(t *testing.T) {
	a := newApp(t)
	m := New(a)
	assert.Nil(t, m.counters())

	apptest.SignIn(a)
	a.Hearts.SetHearts(2, nil)
	a.Progress.SetCoins(40)
	a.Progress.SetStreak(3)

	c := m.counters()
	require.NotNil(t, c)
	assert.Equal(t, layout.Counters{Hearts: 2, MaxHearts: 5, Coins: 40, Streak: 3}, *c)
}

func TestHintsFromActiveScreen(t *testing.T) {
	a := newApp(t)
	m := New(a)
	assert.Equal(t, "Navigate", m.hints()[0].Description)

	m.router.Push(&stubScreen{})
	assert.Equal(t, "Back", m.hints()[0].Description)

	m.router.Push(login.New(a))
	assert.Equal(t, "Sign in", m.hints()[0].Description)
}

func TestWindowSize(t *testing.T) {
	m := New(newApp(t))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.height)
}
