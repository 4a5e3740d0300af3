// Package flashcards runs a vocabulary flashcard deck: flip a card, then
// say whether you knew it.
package flashcards

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/summary"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

// DeckSize is the number of cards requested per run.
const DeckSize = 10

type answeredMsg struct {
	Known  bool
	Result *service.FlashcardResult
	Err    error
}

// FlashcardsScreen shows one card at a time.
type FlashcardsScreen struct {
	app     *app.App
	res     *fetch.Resource[service.FlashcardDeck]
	cards   []service.FlashcardWord
	loaded  bool
	started time.Time

	index   int
	flipped bool
	busy    bool
	known   int
	xp      int
	syncErr string
	errMsg  string
}

var _ screen.Screen = (*FlashcardsScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardsScreen)(nil)

// New creates a FlashcardsScreen.
func New(a *app.App) *FlashcardsScreen {
	vocab := a.Services.Vocabulary
	return &FlashcardsScreen{
		app: a,
		res: fetch.New(func(ctx context.Context) (*api.Envelope[service.FlashcardDeck], error) {
			return vocab.Flashcards(ctx, DeckSize)
		}, fetch.Immediate()),
	}
}

func (s *FlashcardsScreen) Init() tea.Cmd {
	return screen.Load(s.res)
}

func (s *FlashcardsScreen) Title() string {
	return "Flashcards"
}

func (s *FlashcardsScreen) KeyHints() []layout.KeyHint {
	if !s.flipped {
		return []layout.KeyHint{
			{Key: "Space", Description: "Flip"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Y", Description: "Knew it"},
		{Key: "N", Description: "Didn't"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FlashcardsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[service.FlashcardDeck]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			s.errMsg = msg.State.Err
			return s, nil
		}
		s.errMsg = ""
		s.loaded = true
		s.cards = msg.State.Data.Cards
		s.index, s.flipped = 0, false
		s.started = time.Now()
		return s, nil

	case answeredMsg:
		s.busy = false
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			s.syncErr = api.Message(msg.Err)
		} else if msg.Result != nil {
			s.xp += msg.Result.XPEarned
			s.app.Progress.AddXP(msg.Result.XPEarned)
		}
		if msg.Known {
			s.known++
		}
		s.index++
		s.flipped = false
		if s.index >= len(s.cards) {
			return s, s.finish()
		}
		return s, nil

	case tea.KeyMsg:
		if s.busy || s.index >= len(s.cards) {
			return s, nil
		}
		switch msg.String() {
		case "space", "enter":
			s.flipped = !s.flipped
		case "y", "right":
			if s.flipped {
				return s, s.answer(true)
			}
		case "n", "left":
			if s.flipped {
				return s, s.answer(false)
			}
		}
	}
	return s, nil
}

func (s *FlashcardsScreen) answer(known bool) tea.Cmd {
	s.busy = true
	vocab, id := s.app.Services.Vocabulary, s.cards[s.index].ID
	return func() tea.Msg {
		env, err := vocab.AnswerFlashcard(context.Background(), id, known)
		if err != nil || env == nil {
			return answeredMsg{Known: known, Err: err}
		}
		return answeredMsg{Known: known, Result: &env.Data}
	}
}

func (s *FlashcardsScreen) finish() tea.Cmd {
	total := len(s.cards)
	r := summary.Result{
		Title:    "Flashcards",
		Correct:  s.known,
		Total:    total,
		Score:    s.known * 100 / total,
		Duration: time.Since(s.started).Round(time.Second),
		XPEarned: s.xp,
		SyncErr:  s.syncErr,
	}
	sum := summary.New(r)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func (s *FlashcardsScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\nLoading cards...")
	}
	if len(s.cards) == 0 {
		return center.Foreground(theme.TextDim).Render("\n\nNo cards to practice right now.")
	}
	if s.index >= len(s.cards) {
		return center.Foreground(theme.TextDim).Render("\n\nSaving...")
	}

	cw := components.ContentWidth(width)
	c := s.cards[s.index]

	front := []string{
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Word),
	}
	if c.Pronunciation != "" {
		front = append(front, theme.Disabled.Render(c.Pronunciation))
	}
	body := strings.Join(front, "\n")
	if s.flipped {
		back := []string{body, ""}
		meaning := c.Meaning
		if c.PartOfSpeech != "" {
			meaning = c.PartOfSpeech + " · " + meaning
		}
		back = append(back, lipgloss.NewStyle().Foreground(theme.Secondary).Render(meaning))
		if c.ExampleSentence != "" {
			back = append(back, "", c.ExampleSentence)
			if c.ExampleTranslation != "" {
				back = append(back, theme.Disabled.Render(c.ExampleTranslation))
			}
		}
		body = strings.Join(back, "\n")
	}

	var b strings.Builder
	b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf("Card %d of %d", s.index+1, len(s.cards))))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(body, cw)))
	b.WriteString("\n\n")
	if s.flipped {
		b.WriteString(center.Foreground(theme.TextDim).Render("Did you know it?  [y] yes   [n] no"))
	} else {
		b.WriteString(center.Foreground(theme.TextDim).Render("Press space to flip"))
	}
	return b.String()
}
