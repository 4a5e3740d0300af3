package stats

import (
	"net/http"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/app/apptest"
	"github.com/abhisek/levo/internal/service"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func backend(t *testing.T) *apptest.Backend {
	b := apptest.NewBackend(t)
	b.Handle(http.MethodGet, "/stats", func(w http.ResponseWriter, r *http.Request) {
		xp := map[string]int{"week": 120, "month": 900, "all": 4000}[r.URL.Query().Get("period")]
		apptest.WriteEnvelope(w, http.StatusOK, true, map[string]any{
			"totalXp": xp, "totalMinutes": 45, "lessonsCompleted": 6, "wordsLearned": 30, "accuracy": 85,
		}, "")
	})
	b.OK(http.MethodGet, "/streak", map[string]any{
		"currentStreak":   5,
		"longestStreak":   9,
		"todayCompleted":  false,
		"streakShields":   1,
		"isInDanger":      true,
		"hoursUntilReset": 3,
		"weeklyRecord": []map[string]any{
			{"date": "2026-03-01", "day": "Mo", "completed": true},
			{"date": "2026-03-02", "day": "Tu", "completed": false},
		},
	})
	b.OK(http.MethodGet, "/badges", map[string]any{"achievedCount": 3, "totalCount": 20, "badges": []any{}})
	return b
}

func loaded(t *testing.T, b *apptest.Backend) (*StatsScreen, *app.App) {
	t.Helper()
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := New(a)
	s.Update(s.loadStats()())
	s.Update(s.streakLoad()())
	s.Update(s.badgesLoad()())
	return s, a
}

func TestStats_Load(t *testing.T) {
	s, a := loaded(t, backend(t))

	view := s.View(80, 40)
	assert.Contains(t, view, "120 XP")
	assert.Contains(t, view, "5 day streak")
	assert.Contains(t, view, "(best 9)")
	assert.Contains(t, view, "Badges 3/20")
	assert.Contains(t, view, "streak resets in 3h")

	assert.Equal(t, 5, a.Progress.State().StreakDays)
	assert.Equal(t, 7, a.Streak.Data().NextMilestone.Target)
}

func TestStats_PeriodSwitch(t *testing.T) {
	b := backend(t)
	s, _ := loaded(t, b)

	_, cmd := s.Update(keyPress('m'))
	require.NotNil(t, cmd)
	assert.Equal(t, service.PeriodMonth, s.period)
	s.Update(cmd())
	assert.Contains(t, s.View(80, 40), "900 XP")

	// Pressing the active period again does nothing.
	_, cmd = s.Update(keyPress('m'))
	assert.Nil(t, cmd)
}

func TestStats_StaleResponseIgnored(t *testing.T) {
	s, _ := loaded(t, backend(t))

	_, cmd := s.Update(keyPress('a'))
	require.NotNil(t, cmd)
	msg := cmd()

	s.Update(keyPress('w'))
	s.Update(msg)

	assert.Contains(t, s.View(80, 40), "120 XP", "week stays on screen")
	require.NotNil(t, s.report[service.PeriodAll])
	assert.Equal(t, 4000, s.report[service.PeriodAll].TotalXP)
}

func TestStats_UseShield(t *testing.T) {
	b := backend(t)
	b.OK(http.MethodPost, "/streak/shield", map[string]any{})
	s, a := loaded(t, b)
	require.True(t, a.Streak.CanShield())

	_, cmd := s.Update(keyPress('s'))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, 1, b.Calls(http.MethodPost, "/streak/shield"))
	assert.False(t, a.Streak.CanShield())
	assert.Equal(t, 0, a.Streak.Data().StreakShields)
	assert.Contains(t, s.View(80, 40), "Shield used")

	_, cmd = s.Update(keyPress('s'))
	assert.Nil(t, cmd)
}

func TestStats_ShieldFailureRestores(t *testing.T) {
	b := backend(t)
	b.Fail(http.MethodPost, "/streak/shield", http.StatusConflict, "already protected")
	s, a := loaded(t, b)

	_, cmd := s.Update(keyPress('s'))
	s.Update(cmd())

	assert.True(t, a.Streak.CanShield())
	assert.Contains(t, s.View(80, 40), "already protected")
}
