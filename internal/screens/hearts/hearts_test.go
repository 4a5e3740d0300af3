package hearts

import (
	"net/http"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/app/apptest"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/screen"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func status(current int) map[string]any {
	return map[string]any{
		"currentHearts":       current,
		"maxHearts":           5,
		"timeUntilNextRefill": "12:00",
		"timeUntilFullRefill": "4:00:00",
	}
}

// run executes cmd and feeds its message back into s.
func run(t *testing.T, s screen.Screen, cmd tea.Cmd) (screen.Screen, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	return s.Update(cmd())
}

func TestHearts_LoadAppliesStatus(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(0))
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := New(a)

	run(t, s, s.Init())

	st := a.Hearts.State()
	assert.Equal(t, 0, st.Current)
	assert.True(t, a.Hearts.Depleted())

	view := s.View(80, 30)
	assert.Contains(t, view, "Next heart in 12:00")
	assert.Contains(t, view, "Full in 4:00:00")
}

func TestHearts_AdRefill(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(0))
	b.OK(http.MethodPost, "/hearts/refill", status(1))
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := New(a)
	run(t, s, s.Init())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, s.busy)

	_, next := run(t, s, cmd)
	assert.Nil(t, next)
	assert.False(t, s.busy)
	assert.Equal(t, 1, a.Hearts.State().Current)
	assert.Contains(t, s.View(80, 30), "Hearts refilled!")

	bodies := b.Bodies(http.MethodPost, "/hearts/refill")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"method":"ad"}`, string(bodies[0]))
	assert.Zero(t, b.Calls(http.MethodGet, "/coins"), "ad refills do not touch coins")
}

func TestHearts_FullRefillRefreshesCoins(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(2))
	b.OK(http.MethodPost, "/hearts/refill", status(5))
	b.OK(http.MethodGet, "/coins", map[string]any{"balance": 50})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	a.Progress.SetCoins(400)
	s := New(a)
	run(t, s, s.Init())

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)

	assert.Equal(t, 5, a.Hearts.State().Current)
	assert.Equal(t, 50, a.Progress.State().Coins)
	bodies := b.Bodies(http.MethodPost, "/hearts/refill")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"method":"coin_full"}`, string(bodies[0]))
}

func TestHearts_FullRefillNeedsCoins(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(2))
	a := apptest.New(t, b)
	apptest.SignIn(a)
	a.Progress.SetCoins(10)
	s := New(a)
	run(t, s, s.Init())

	assert.True(t, s.menu.Items[itemFull].Disabled)
	assert.False(t, s.menu.Items[itemAd].Disabled)
}

func TestHearts_FullLedgerDisablesRefills(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(5))
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := New(a)
	run(t, s, s.Init())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(80, 30), "Your hearts are full")
}

func TestHearts_RefillError(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/hearts", status(0))
	b.Fail(http.MethodPost, "/hearts/refill", http.StatusBadRequest, "no ads available")
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := New(a)
	run(t, s, s.Init())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)

	assert.Equal(t, 0, a.Hearts.State().Current)
	assert.Contains(t, s.View(80, 30), "no ads available")
}

func TestRow(t *testing.T) {
	row := Row(hearts.State{Current: 2, Max: 4})
	assert.Equal(t, 2, strings.Count(row, "♥"))
	assert.Equal(t, 2, strings.Count(row, "♡"))
	assert.Contains(t, Row(hearts.State{Premium: true, Max: 5}), "∞")
}
