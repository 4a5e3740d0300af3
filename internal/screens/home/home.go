package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	heartsscreen "github.com/abhisek/levo/internal/screens/hearts"
	"github.com/abhisek/levo/internal/screens/hub"
	"github.com/abhisek/levo/internal/screens/lessons"
	"github.com/abhisek/levo/internal/screens/quiz"
	"github.com/abhisek/levo/internal/screens/review"
	shopscreen "github.com/abhisek/levo/internal/screens/shop"
	"github.com/abhisek/levo/internal/screens/stats"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

// Menu positions.
const (
	itemLessons = iota
	itemDailyQuiz
	itemReview
	itemPractice
	itemHearts
	itemShop
	itemStats
	itemSignOut
	itemQuit
)

// Home states reported by the server.
const (
	stateLowHearts    = "low-hearts"
	stateStreakDanger = "streak-danger"
)

type syncDoneMsg struct {
	Err error
}

// HomeScreen is the dashboard shown after sign-in.
type HomeScreen struct {
	app    *app.App
	res    *fetch.Resource[service.HomeData]
	data   *service.HomeData
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(a *app.App) *HomeScreen {
	h := &HomeScreen{
		app: a,
		res: fetch.New(a.Services.Home.Get, fetch.Immediate()),
	}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		itemLessons:   {Label: "LESSONS", Action: push(func() screen.Screen { return lessons.New(a) })},
		itemDailyQuiz: {Label: "DAILY QUIZ", Action: push(func() screen.Screen { return quiz.NewDaily(a) })},
		itemReview:    {Label: "REVIEW", Action: push(func() screen.Screen { return review.New(a) })},
		itemPractice:  {Label: "PRACTICE", Action: push(func() screen.Screen { return hub.New(a) })},
		itemHearts:    {Label: "HEARTS", Action: push(func() screen.Screen { return heartsscreen.New(a) })},
		itemShop:      {Label: "SHOP", Action: push(func() screen.Screen { return shopscreen.New(a) })},
		itemStats:     {Label: "STATS", Action: push(func() screen.Screen { return stats.New(a) })},
		itemSignOut:   {Label: "SIGN OUT", Action: h.signOut},
		itemQuit:      {Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return tea.Batch(h.load(), h.sync())
}

// Resume reloads the dashboard after a practice screen is closed.
func (h *HomeScreen) Resume() tea.Cmd {
	h.gate()
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	return screen.Load(h.res)
}

func (h *HomeScreen) sync() tea.Cmd {
	a := h.app
	return func() tea.Msg {
		return syncDoneMsg{Err: a.Sync(context.Background())}
	}
}

func (h *HomeScreen) signOut() tea.Cmd {
	a := h.app
	return func() tea.Msg {
		a.Logout(context.Background())
		return screen.SignedOutMsg{}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "R", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[service.HomeData]:
		if msg.State.Err != "" {
			if !h.app.Authenticated() {
				return h, screen.SignOut
			}
			h.errMsg = msg.State.Err
			return h, nil
		}
		h.errMsg = ""
		h.data = msg.State.Data
		h.apply(*msg.State.Data)
		return h, nil

	case syncDoneMsg:
		if msg.Err != nil && h.app.SessionLost(msg.Err) {
			return h, screen.SignOut
		}
		return h, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return h, tea.Batch(h.load(), h.sync())
		}
	}

	h.gate()
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// apply copies the dashboard counters into the local stores.
func (h *HomeScreen) apply(d service.HomeData) {
	h.app.Hearts.Update(func(st hearts.State) hearts.State {
		if d.Hearts.Max > 0 {
			st.Max = d.Hearts.Max
		}
		st.Current = d.Hearts.Current
		st.NextRefill = d.Hearts.TimeUntilRefill
		return st
	})
	h.app.Progress.SetStreak(d.Streak.Current)
	h.gate()
}

// gate disables practice while the learner is out of hearts.
func (h *HomeScreen) gate() {
	depleted := h.app.Hearts.Depleted()
	h.menu.SetDisabled(itemLessons, depleted)
	h.menu.SetDisabled(itemDailyQuiz, depleted)
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)

	var sections []string

	greeting := "Welcome back!"
	if h.data != nil && h.data.Greeting != "" {
		greeting = h.data.Greeting
	} else if u := h.app.Session.User(); u != nil && u.Name != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", u.Name)
	}
	sections = append(sections, theme.Title.Width(cw).Render(greeting))
	sections = append(sections, h.renderStats(cw))

	if notice := h.notice(); notice != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.Accent).Render(notice))
	}

	if h.data != nil && !compact {
		sections = append(sections, h.renderToday(cw))
	}

	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.Error).Render(h.errMsg))
	} else if h.res.State().Loading && h.data == nil {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.TextDim).Render("Loading..."))
	}

	if compact {
		sections = append(sections, h.menu.View())
	} else {
		sections = append(sections, h.menu.ButtonView(cw))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats(cw int) string {
	hs := h.app.Hearts.State()
	ps := h.app.Progress.State()

	stats := strings.Join([]string{
		layout.HeartsLabel(hs.Current, hs.Max, hs.Premium),
		theme.CoinStyle.Render(fmt.Sprintf("● %d", ps.Coins)),
		theme.FireStyle.Render(fmt.Sprintf("🔥 %d", ps.StreakDays)),
		theme.XPStyle.Render(fmt.Sprintf("✦ %d XP · Lv %d", ps.XP, ps.UserLevel)),
	}, "   ")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(stats)
}

func (h *HomeScreen) renderToday(cw int) string {
	today := h.data.TodayLesson
	lines := []string{
		components.NewProgressBar(fmt.Sprintf("Today %d/%d", today.Completed, today.Total),
			components.Fraction(today.Completed, today.Total), true, cw-6).View(),
	}
	for _, c := range h.data.Categories {
		bar := components.NewProgressBar(fmt.Sprintf("%-12s", c.Label), components.Fraction(c.Progress, 100), true, cw-6)
		lines = append(lines, bar.WithFill(theme.Secondary).View())
	}
	return components.Card(strings.Join(lines, "\n"), cw)
}

func (h *HomeScreen) notice() string {
	if h.app.Hearts.Depleted() {
		if eta := h.app.Hearts.State().NextRefill; eta != nil {
			return fmt.Sprintf("Out of hearts. Next heart in %s, or refill in HEARTS.", *eta)
		}
		return "Out of hearts. Refill them in HEARTS."
	}
	if h.data == nil {
		return ""
	}
	switch h.data.State {
	case stateLowHearts:
		return "Running low on hearts. Careful!"
	case stateStreakDanger:
		return "Your streak is in danger. Finish a lesson today!"
	}
	return ""
}
