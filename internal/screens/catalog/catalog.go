// Package catalog lists practice content fetched from the server (grammar
// topics, reading passages, conversation situations) and opens the chosen
// entry.
package catalog

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

// Entry is one row of a catalog.
type Entry struct {
	ID     string
	Label  string
	Detail string
	Done   bool
	Locked bool
}

// Screen lists the items of type T and opens the selected one.
type Screen[T any] struct {
	app   *app.App
	title string
	res   *fetch.Resource[[]T]
	entry func(T) Entry
	open  func(Entry) screen.Screen

	// costsHearts blocks opening entries while hearts are depleted.
	costsHearts bool

	entries []Entry
	loaded  bool
	cursor  int
	notice  string
	errMsg  string
}

// New creates a catalog titled title over the items fetcher returns.
func New[T any](a *app.App, title string, fetcher fetch.Fetcher[[]T], entry func(T) Entry, open func(Entry) screen.Screen) *Screen[T] {
	return &Screen[T]{
		app:   a,
		title: title,
		res:   fetch.New(fetcher, fetch.Immediate()),
		entry: entry,
		open:  open,
	}
}

func (s *Screen[T]) Init() tea.Cmd {
	return screen.Load(s.res)
}

// Resume reloads the list so finished entries show as done.
func (s *Screen[T]) Resume() tea.Cmd {
	return screen.Load(s.res)
}

func (s *Screen[T]) Title() string {
	return s.title
}

func (s *Screen[T]) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen[T]) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[[]T]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			s.errMsg = msg.State.Err
			return s, nil
		}
		s.errMsg = ""
		s.setItems(*msg.State.Data)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.notice = ""
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			s.notice = ""
			if s.cursor < len(s.entries)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.openSelected()
		}
	}
	return s, nil
}

func (s *Screen[T]) setItems(items []T) {
	var prevID string
	if s.cursor < len(s.entries) {
		prevID = s.entries[s.cursor].ID
	}

	s.loaded = true
	s.entries = make([]Entry, 0, len(items))
	s.cursor = 0
	for _, it := range items {
		e := s.entry(it)
		if e.ID == prevID && prevID != "" {
			s.cursor = len(s.entries)
		}
		s.entries = append(s.entries, e)
	}
}

func (s *Screen[T]) openSelected() tea.Cmd {
	if s.cursor >= len(s.entries) {
		return nil
	}
	e := s.entries[s.cursor]
	if e.Locked {
		s.notice = "This one is still locked."
		return nil
	}
	if s.costsHearts && s.app.Hearts.Depleted() {
		s.notice = "You are out of hearts. Refill them first."
		return nil
	}
	next := s.open(e)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func entryIcon(e Entry) (string, lipgloss.Style) {
	switch {
	case e.Locked:
		return "🔒", theme.LessonLocked
	case e.Done:
		return "✓", theme.LessonDone
	default:
		return "•", theme.Unselected
	}
}

func (s *Screen[T]) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\nLoading...")
	}
	if len(s.entries) == 0 {
		return center.Foreground(theme.TextDim).Render("\n\nNothing here yet.")
	}

	cw := components.ContentWidth(width)
	visible := max(height-4, 3)
	start := max(0, min(s.cursor-visible/2, len(s.entries)-visible))
	end := min(start+visible, len(s.entries))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := s.entries[i]
		icon, style := entryIcon(e)
		prefix := "   "
		if i == s.cursor {
			prefix = " ▸ "
			style = style.Underline(true)
		}
		line := prefix + style.Render(icon+" "+e.Label)
		if e.Detail != "" {
			line += theme.Disabled.Render("  " + e.Detail)
		}
		lines = append(lines, line)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n")))
	if len(s.entries) > visible {
		b.WriteString("\n")
		b.WriteString(theme.Disabled.Render(fmt.Sprintf("%d/%d", s.cursor+1, len(s.entries))))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
