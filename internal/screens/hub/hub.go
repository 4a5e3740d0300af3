// Package hub is the practice menu: skill drills beyond the lesson map.
package hub

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/catalog"
	"github.com/abhisek/levo/internal/screens/flashcards"
	"github.com/abhisek/levo/internal/screens/quiz"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/theme"
)

// Menu positions.
const (
	itemGrammar = iota
	itemReading
	itemListening
	itemFlashcards
	itemConversation
)

// HubScreen lists the practice modes.
type HubScreen struct {
	app  *app.App
	menu components.Menu
}

var _ screen.Screen = (*HubScreen)(nil)
var _ screen.Resumer = (*HubScreen)(nil)

// New creates a HubScreen.
func New(a *app.App) *HubScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	h := &HubScreen{app: a}
	h.menu = components.NewMenu([]components.MenuItem{
		itemGrammar:      {Label: "GRAMMAR", Action: push(func() screen.Screen { return catalog.Grammar(a) })},
		itemReading:      {Label: "READING", Action: push(func() screen.Screen { return catalog.Reading(a) })},
		itemListening:    {Label: "LISTENING", Action: push(func() screen.Screen { return quiz.NewListening(a) })},
		itemFlashcards:   {Label: "FLASHCARDS", Action: push(func() screen.Screen { return flashcards.New(a) })},
		itemConversation: {Label: "CONVERSATION", Action: push(func() screen.Screen { return catalog.Conversations(a) })},
	})
	h.gate()
	return h
}

func (h *HubScreen) Init() tea.Cmd {
	return nil
}

// Resume re-applies the hearts gate after a drill.
func (h *HubScreen) Resume() tea.Cmd {
	h.gate()
	return nil
}

func (h *HubScreen) Title() string {
	return "Practice"
}

// gate disables the graded drills while the learner is out of hearts.
func (h *HubScreen) gate() {
	depleted := h.app.Hearts.Depleted()
	h.menu.SetDisabled(itemGrammar, depleted)
	h.menu.SetDisabled(itemReading, depleted)
	h.menu.SetDisabled(itemListening, depleted)
}

func (h *HubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HubScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	body := h.menu.ButtonView(cw)
	if h.app.Hearts.Depleted() {
		body = lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.Accent).
			Render("Out of hearts: flashcards and conversation still work.") + "\n\n" + body
	}
	return components.Frame(body, width, height)
}
