package lessons

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/quiz"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

// row is one rendered line of the map: a unit heading or a lesson.
type row struct {
	unit   *service.LessonUnit
	lesson *service.Lesson
}

// LessonsScreen shows the lesson map grouped by unit.
type LessonsScreen struct {
	app    *app.App
	res    *fetch.Resource[service.LessonMap]
	rows   []row
	cursor int
	scroll int
	notice string
	errMsg string
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)
var _ screen.Resumer = (*LessonsScreen)(nil)

// New creates a LessonsScreen.
func New(a *app.App) *LessonsScreen {
	return &LessonsScreen{
		app: a,
		res: fetch.New(a.Services.Lessons.List, fetch.Immediate()),
	}
}

func (s *LessonsScreen) Init() tea.Cmd {
	return screen.Load(s.res)
}

// Resume reloads the map so finished lessons show their new status.
func (s *LessonsScreen) Resume() tea.Cmd {
	return screen.Load(s.res)
}

func (s *LessonsScreen) Title() string {
	return "Lessons"
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[service.LessonMap]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			s.errMsg = msg.State.Err
			return s, nil
		}
		s.errMsg = ""
		s.setMap(*msg.State.Data)
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *LessonsScreen) setMap(m service.LessonMap) {
	var prevID string
	if l := s.selected(); l != nil {
		prevID = l.ID
	}

	s.rows = nil
	for ui := range m.Units {
		u := &m.Units[ui]
		s.rows = append(s.rows, row{unit: u})
		for li := range u.Lessons {
			s.rows = append(s.rows, row{lesson: &u.Lessons[li]})
		}
	}

	// Stay on the same lesson across reloads, else start on the current one.
	first, current, same := -1, -1, -1
	for i, r := range s.rows {
		if r.lesson == nil {
			continue
		}
		if first < 0 {
			first = i
		}
		if current < 0 && r.lesson.Status == service.LessonCurrent {
			current = i
		}
		if prevID != "" && r.lesson.ID == prevID {
			same = i
		}
	}
	switch {
	case same >= 0:
		s.cursor = same
	case current >= 0:
		s.cursor = current
	default:
		s.cursor = first
	}
}

func (s *LessonsScreen) selected() *service.Lesson {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].lesson
}

func (s *LessonsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "enter":
		l := s.selected()
		if l == nil {
			return s, nil
		}
		if l.Status == service.LessonLocked {
			s.notice = "Finish the lessons before this one to unlock it."
			return s, nil
		}
		if s.app.Hearts.Depleted() {
			s.notice = "You are out of hearts. Refill them first."
			return s, nil
		}
		q := quiz.NewLesson(s.app, l.ID, l.Name)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: q} }
	}
	return s, nil
}

func (s *LessonsScreen) move(delta int) {
	s.notice = ""
	for i := s.cursor + delta; i >= 0 && i < len(s.rows); i += delta {
		if s.rows[i].lesson != nil {
			s.cursor = i
			return
		}
	}
}

func statusIcon(status string) (string, lipgloss.Style) {
	switch status {
	case service.LessonCompleted:
		return "✓", theme.LessonDone
	case service.LessonCurrent:
		return "▶", theme.LessonCurrent
	default:
		return "🔒", theme.LessonLocked
	}
}

func (s *LessonsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
	}
	if len(s.rows) == 0 {
		if s.res.State().Loading {
			return center.Foreground(theme.TextDim).Render("\n\nLoading lessons...")
		}
		return center.Foreground(theme.TextDim).Render("\n\nNo lessons yet.")
	}

	lines := make([]string, 0, len(s.rows))
	for i, r := range s.rows {
		if r.unit != nil {
			heading := fmt.Sprintf("Unit %d · %s", r.unit.UnitNumber, r.unit.UnitTitle)
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, theme.UnitHeading.Render(heading))
			continue
		}
		icon, style := statusIcon(r.lesson.Status)
		prefix := "   "
		if i == s.cursor {
			prefix = " ▸ "
			style = style.Underline(true)
		}
		lines = append(lines, prefix+style.Render(icon+" "+r.lesson.Name))
	}

	// Keep the cursor in view.
	visible := max(height-4, 3)
	cursorLine := 0
	for i := 0; i < s.cursor && i < len(s.rows); i++ {
		cursorLine++
		if s.rows[i].unit != nil && i > 0 {
			cursorLine++
		}
	}
	if cursorLine < s.scroll {
		s.scroll = cursorLine
	}
	if cursorLine >= s.scroll+visible {
		s.scroll = cursorLine - visible + 1
	}
	end := min(s.scroll+visible, len(lines))
	start := min(s.scroll, end)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(strings.Join(lines[start:end], "\n")))
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
