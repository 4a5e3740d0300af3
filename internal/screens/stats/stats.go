package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/streak"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

var periods = []struct {
	key, id, label string
}{
	{"w", service.PeriodWeek, "Week"},
	{"m", service.PeriodMonth, "Month"},
	{"a", service.PeriodAll, "All time"},
}

type statsMsg struct {
	Period string
	State  fetch.State[service.StatsReport]
}

type shieldMsg struct {
	Err error
}

// StatsScreen shows learning totals per period, the streak and badges.
type StatsScreen struct {
	app    *app.App
	period string
	stats  map[string]*fetch.Resource[service.StatsReport]
	report map[string]*service.StatsReport
	streak *fetch.Resource[streak.Data]
	badges *fetch.Resource[service.BadgeList]

	badgeList *service.BadgeList
	notice    string
	errMsg    string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen showing the current week.
func New(a *app.App) *StatsScreen {
	s := &StatsScreen{
		app:    a,
		period: service.PeriodWeek,
		stats:  make(map[string]*fetch.Resource[service.StatsReport]),
		report: make(map[string]*service.StatsReport),
		streak: fetch.New(a.Services.Streak.Get, fetch.Immediate()),
		badges: fetch.New(func(ctx context.Context) (*api.Envelope[service.BadgeList], error) {
			return a.Services.Badges.List(ctx, "")
		}, fetch.Immediate()),
	}
	for _, p := range periods {
		id := p.id
		s.stats[id] = fetch.New(func(ctx context.Context) (*api.Envelope[service.StatsReport], error) {
			return a.Services.Stats.Get(ctx, id)
		})
	}
	return s
}

func (s *StatsScreen) Init() tea.Cmd {
	return tea.Batch(s.loadStats(), s.streakLoad(), s.badgesLoad())
}

func (s *StatsScreen) streakLoad() tea.Cmd {
	return screen.Load(s.streak)
}

func (s *StatsScreen) badgesLoad() tea.Cmd {
	return screen.Load(s.badges)
}

func (s *StatsScreen) loadStats() tea.Cmd {
	period, res := s.period, s.stats[s.period]
	return func() tea.Msg {
		return statsMsg{Period: period, State: res.Refetch(context.Background())}
	}
}

func (s *StatsScreen) Title() string {
	return "Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "W/M/A", Description: "Period"},
	}
	if s.app.Streak.CanShield() {
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Use shield"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			if msg.Period == s.period {
				s.errMsg = msg.State.Err
			}
			return s, nil
		}
		s.report[msg.Period] = msg.State.Data
		if msg.Period == s.period {
			s.errMsg = ""
		}
		return s, nil

	case screen.Loaded[streak.Data]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			return s, nil
		}
		s.app.Streak.Set(*msg.State.Data)
		s.app.Progress.SetStreak(msg.State.Data.CurrentStreak)
		return s, nil

	case screen.Loaded[service.BadgeList]:
		if msg.State.Err == "" {
			s.badgeList = msg.State.Data
		}
		return s, nil

	case shieldMsg:
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			s.notice = api.Message(msg.Err)
			return s, nil
		}
		s.notice = "Shield used. Your streak is safe today."
		return s, nil

	case tea.KeyMsg:
		key := msg.String()
		for _, p := range periods {
			if key == p.key && s.period != p.id {
				s.period = p.id
				s.errMsg = ""
				return s, s.loadStats()
			}
		}
		if key == "s" && s.app.Streak.CanShield() {
			sh := s.app.Shop
			return s, func() tea.Msg {
				return shieldMsg{Err: sh.UseShield(context.Background())}
			}
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	sections := []string{s.renderTabs(), s.renderTotals(cw), s.renderStreak(cw)}

	if s.badgeList != nil {
		sections = append(sections, center.Foreground(theme.Accent).Render(
			fmt.Sprintf("🏅 Badges %d/%d", s.badgeList.AchievedCount, s.badgeList.TotalCount)))
	}
	if s.notice != "" {
		sections = append(sections, center.Foreground(theme.Success).Render(s.notice))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n\n"))
}

func (s *StatsScreen) renderTabs() string {
	tabs := make([]string, 0, len(periods))
	for _, p := range periods {
		label := fmt.Sprintf("[%s] %s", strings.ToUpper(p.key), p.label)
		if p.id == s.period {
			tabs = append(tabs, theme.ButtonActive.Render(label))
		} else {
			tabs = append(tabs, theme.ButtonInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
}

func (s *StatsScreen) renderTotals(cw int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.Error).Render(s.errMsg)
	}
	r := s.report[s.period]
	if r == nil {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.TextDim).Render("Loading stats...")
	}
	lines := []string{
		theme.XPStyle.Render(fmt.Sprintf("✦ %d XP", r.TotalXP)),
		fmt.Sprintf("%d min studied · %d lessons", r.TotalMinutes, r.LessonsCompleted),
		fmt.Sprintf("%d words learned · %d%% accuracy", r.WordsLearned, r.Accuracy),
	}
	return components.Card(strings.Join(lines, "\n"), cw)
}

func (s *StatsScreen) renderStreak(cw int) string {
	d := s.app.Streak.Data()

	var days []string
	for _, day := range d.WeeklyRecord {
		label := day.Day
		if label == "" && len(day.Date) >= 10 {
			label = day.Date[8:10]
		}
		mark := lipgloss.NewStyle().Foreground(theme.Border).Render("○")
		if day.Completed {
			mark = theme.FireStyle.Render("●")
		}
		days = append(days, fmt.Sprintf("%s %s", label, mark))
	}

	lines := []string{
		theme.FireStyle.Render(fmt.Sprintf("🔥 %d day streak", d.CurrentStreak)) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  (best %d)", d.LongestStreak)),
	}
	if len(days) > 0 {
		lines = append(lines, strings.Join(days, "  "))
	}

	target := d.NextMilestone.Target
	if target <= d.CurrentStreak {
		target = streak.NextMilestone(d.CurrentStreak)
	}
	bar := components.NewProgressBar(fmt.Sprintf("Next %d", target), components.Fraction(d.CurrentStreak, target), false, cw-10)
	lines = append(lines, bar.WithFill(theme.Accent).View())

	shields := fmt.Sprintf("🛡️ %d shield(s)", d.StreakShields)
	if d.IsInDanger && !d.TodayCompleted {
		shields += lipgloss.NewStyle().Foreground(theme.Error).
			Render(fmt.Sprintf("  streak resets in %dh", d.HoursUntilReset))
	}
	lines = append(lines, shields)

	return components.Card(strings.Join(lines, "\n"), cw)
}
