package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/streak"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

// Result is the outcome of a finished lesson or quiz.
type Result struct {
	Title    string
	Correct  int
	Total    int
	Score    int
	Duration time.Duration

	XPEarned      int
	CoinsEarned   int
	StreakUpdated bool
	CurrentStreak int
	NewBadges     int
	NextUnlocked  bool

	// SyncErr is set when the result could not be reported to the server.
	SyncErr string
}

// SummaryScreen displays a Result.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(r Result) *SummaryScreen {
	return &SummaryScreen{result: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// Headline picks the closing line for a score.
func Headline(score int) string {
	switch {
	case score == 100:
		return "Perfect!"
	case score >= 80:
		return "Great job!"
	case score >= 50:
		return "Nice work!"
	default:
		return "Keep practicing!"
	}
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(st lipgloss.Style, text string) string {
		return st.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Practice"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		title+" complete!"))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), Headline(r.Score)))
	b.WriteString("\n\n")

	mins := int(r.Duration.Minutes())
	secs := int(r.Duration.Seconds()) % 60
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("Time: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Correct: %d/%d        Score: %d%%", r.Correct, r.Total, r.Score)))
	b.WriteString("\n\n")

	rewards := []string{theme.XPStyle.Render(fmt.Sprintf("+%d XP", r.XPEarned))}
	if r.CoinsEarned > 0 {
		rewards = append(rewards, theme.CoinStyle.Render(fmt.Sprintf("+%d coins", r.CoinsEarned)))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rewards, "    ")))
	b.WriteString("\n\n")

	if r.StreakUpdated {
		line := fmt.Sprintf("🔥 %d day streak!", r.CurrentStreak)
		if next := streak.NextMilestone(r.CurrentStreak); next-r.CurrentStreak <= 3 {
			line += fmt.Sprintf(" %d more to reach %d.", next-r.CurrentStreak, next)
		}
		b.WriteString(center(theme.FireStyle, line))
		b.WriteString("\n")
	}
	if r.NewBadges > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent),
			fmt.Sprintf("🏅 %d new badge(s) earned", r.NewBadges)))
		b.WriteString("\n")
	}
	if r.NextUnlocked {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success), "Next lesson unlocked"))
		b.WriteString("\n")
	}
	if r.SyncErr != "" {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error),
			"Result not saved: "+r.SyncErr))
		b.WriteString("\n")
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}
