// Package conversation plays a dialog situation. The learner types their
// own lines and each is scored by how many of its words they reproduced.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

type practicedMsg struct {
	Result *service.PracticeResult
	Err    error
}

// turn is a line already played.
type turn struct {
	line  service.DialogLine
	typed string
	score int
}

// ConversationScreen walks through the dialog of one situation.
type ConversationScreen struct {
	app    *app.App
	id     string
	title  string
	res    *fetch.Resource[service.ConversationDetail]
	detail *service.ConversationDetail

	pos     int
	played  []turn
	pending turn
	input   components.TextInput
	busy    bool
	xp      int
	notice  string
	errMsg  string
}

var _ screen.Screen = (*ConversationScreen)(nil)
var _ screen.KeyHintProvider = (*ConversationScreen)(nil)

// New creates a ConversationScreen for situation id.
func New(a *app.App, id, title string) *ConversationScreen {
	conv := a.Services.Conversation
	return &ConversationScreen{
		app:   a,
		id:    id,
		title: title,
		res: fetch.New(func(ctx context.Context) (*api.Envelope[service.ConversationDetail], error) {
			return conv.Detail(ctx, id)
		}, fetch.Immediate()),
		input: components.NewTextInput("Type your line", 200, func(v string) error {
			if v == "" {
				return errors.New("type the line first")
			}
			return nil
		}),
	}
}

func (s *ConversationScreen) Init() tea.Cmd {
	return tea.Batch(screen.Load(s.res), s.input.Init())
}

func (s *ConversationScreen) Title() string {
	if s.title != "" {
		return s.title
	}
	return "Conversation"
}

func (s *ConversationScreen) KeyHints() []layout.KeyHint {
	if s.done() {
		return []layout.KeyHint{{Key: "Enter", Description: "Finish"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Say it"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *ConversationScreen) done() bool {
	return s.detail != nil && s.pos >= len(s.detail.Dialog)
}

// waiting reports whether the dialog stopped at one of the learner's lines.
func (s *ConversationScreen) waiting() bool {
	return s.detail != nil && s.pos < len(s.detail.Dialog) && s.detail.Dialog[s.pos].IsUser
}

func (s *ConversationScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[service.ConversationDetail]:
		if msg.State.Err != "" {
			if !s.app.Authenticated() {
				return s, screen.SignOut
			}
			s.errMsg = msg.State.Err
			return s, nil
		}
		s.errMsg = ""
		s.detail = msg.State.Data
		if s.title == "" {
			s.title = s.detail.Title
		}
		s.pos, s.played = 0, nil
		s.advance()
		return s, nil

	case practicedMsg:
		s.busy = false
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			s.notice = "Not saved: " + api.Message(msg.Err)
		} else if msg.Result != nil {
			s.xp += msg.Result.XPEarned
			s.app.Progress.AddXP(msg.Result.XPEarned)
			s.notice = ""
		}
		s.played = append(s.played, s.pending)
		s.pos++
		s.input.Model.SetValue("")
		s.advance()
		return s, nil

	case tea.KeyMsg:
		if s.busy || s.detail == nil {
			return s, nil
		}
		if s.done() {
			if msg.String() == "enter" {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.say()
		}
	}

	if s.waiting() && !s.busy {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// advance plays the partner's lines up to the learner's next line.
func (s *ConversationScreen) advance() {
	for s.pos < len(s.detail.Dialog) && !s.detail.Dialog[s.pos].IsUser {
		s.played = append(s.played, turn{line: s.detail.Dialog[s.pos]})
		s.pos++
	}
}

func (s *ConversationScreen) say() tea.Cmd {
	typed, err := s.input.Submit()
	if err != nil {
		return nil
	}
	line := s.detail.Dialog[s.pos]
	score := MatchScore(line.Text, typed)
	s.pending = turn{line: line, typed: typed, score: score}
	s.busy = true

	conv, id, index := s.app.Services.Conversation, s.id, s.pos
	return func() tea.Msg {
		env, err := conv.Practice(context.Background(), id, index, score)
		if err != nil || env == nil {
			return practicedMsg{Err: err}
		}
		return practicedMsg{Result: &env.Data}
	}
}

// MatchScore is the percentage of the words of expected found in typed,
// ignoring case and punctuation. Each typed word matches at most once.
func MatchScore(expected, typed string) int {
	want := words(expected)
	if len(want) == 0 {
		return 100
	}
	have := make(map[string]int)
	for _, w := range words(typed) {
		have[w]++
	}
	hit := 0
	for _, w := range want {
		if have[w] > 0 {
			have[w]--
			hit++
		}
	}
	return hit * 100 / len(want)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return theme.Correct
	case score >= 50:
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	default:
		return theme.Incorrect
	}
}

func (s *ConversationScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.detail == nil {
		if s.errMsg != "" {
			return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
		}
		return center.Foreground(theme.TextDim).Render("\n\nLoading conversation...")
	}

	cw := components.ContentWidth(width)
	var lines []string
	if s.detail.Scene != "" {
		lines = append(lines, theme.Disabled.Render(s.detail.Scene), "")
	}
	for _, t := range s.played {
		speaker := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(t.line.Speaker + ":")
		if !t.line.IsUser {
			lines = append(lines, speaker+" "+t.line.Text)
			if t.line.Translation != "" {
				lines = append(lines, theme.Disabled.Render("   "+t.line.Translation))
			}
			continue
		}
		you := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("You:")
		lines = append(lines, you+" "+t.typed+"  "+scoreStyle(t.score).Render(fmt.Sprintf("%d%%", t.score)))
	}

	// Keep the latest lines in view.
	if keep := max(height-12, 4); len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")

	switch {
	case s.done():
		b.WriteString(theme.Correct.Render("Conversation complete"))
		b.WriteString("  ")
		b.WriteString(theme.XPStyle.Render(fmt.Sprintf("+%d XP", s.xp)))
	case s.waiting():
		line := s.detail.Dialog[s.pos]
		prompt := "Say: " + line.Text
		if line.Translation != "" {
			prompt += "\n" + theme.Disabled.Render(line.Translation)
		}
		b.WriteString(components.Card(prompt+"\n\n"+s.input.View(), cw))
	}
	if s.busy {
		b.WriteString("\n" + theme.Disabled.Render("Scoring..."))
	}
	if s.notice != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
