package review

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
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

type completedMsg struct {
	Category string
	Err      error
}

// ReviewScreen lists the categories due for review.
type ReviewScreen struct {
	app    *app.App
	res    *fetch.Resource[service.ReviewDashboard]
	data   *service.ReviewDashboard
	cursor int
	busy   bool
	notice string
	errMsg string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a ReviewScreen.
func New(a *app.App) *ReviewScreen {
	return &ReviewScreen{
		app: a,
		res: fetch.New(a.Services.Review.Dashboard, fetch.Immediate()),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return screen.Load(s.res)
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Mark reviewed"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[service.ReviewDashboard]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			s.errMsg = msg.State.Err
			return s, nil
		}
		s.errMsg = ""
		s.data = msg.State.Data
		s.cursor = min(s.cursor, max(len(s.data.Categories)-1, 0))
		return s, nil

	case completedMsg:
		s.busy = false
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			s.notice = ""
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		s.notice = "Review recorded."
		return s, screen.Load(s.res)

	case tea.KeyMsg:
		if s.busy || s.data == nil {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.data.Categories)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.complete()
		}
	}
	return s, nil
}

func (s *ReviewScreen) complete() tea.Cmd {
	if s.cursor >= len(s.data.Categories) {
		return nil
	}
	id := s.data.Categories[s.cursor].ID
	s.busy = true
	s.notice, s.errMsg = "", ""
	rv := s.app.Services.Review
	return func() tea.Msg {
		_, err := rv.Complete(context.Background(), id)
		return completedMsg{Category: id, Err: err}
	}
}

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case service.PriorityUrgent:
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	case service.PriorityRecommended:
		return lipgloss.NewStyle().Foreground(theme.Accent)
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	}
}

func (s *ReviewScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.data == nil {
		if s.errMsg != "" {
			return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
		}
		return center.Foreground(theme.TextDim).Render("\n\nLoading review...")
	}

	var b strings.Builder
	b.WriteString(center.Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%d items to review", s.data.TotalReviewItems)))
	b.WriteString("\n\n")

	if len(s.data.Categories) == 0 {
		b.WriteString(center.Foreground(theme.Success).Render("All caught up!"))
		return b.String()
	}

	for i, c := range s.data.Categories {
		name := fmt.Sprintf("%s %s (%d)", c.Emoji, c.Name, c.Count)
		meta := fmt.Sprintf("%s · %d%% · next %s", c.Priority, c.Accuracy, c.NextReview)
		card := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(name),
			priorityStyle(c.Priority).Render(meta),
		)
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Width(cw - 2).
			Padding(0, 1)
		if i == s.cursor {
			style = style.BorderForeground(theme.Primary)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(card)))
		b.WriteString("\n")
	}

	switch {
	case s.busy:
		b.WriteString(center.Foreground(theme.TextDim).Render("Saving..."))
	case s.errMsg != "":
		b.WriteString(center.Foreground(theme.Error).Render(s.errMsg))
	case s.notice != "":
		b.WriteString(center.Foreground(theme.Success).Render(s.notice))
	}

	return b.String()
}
