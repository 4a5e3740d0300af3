package catalog

import (
	"context"
	"strconv"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/screens/conversation"
	"github.com/abhisek/levo/internal/screens/quiz"
	"github.com/abhisek/levo/internal/service"
)

var (
	_ screen.Screen          = (*Screen[service.GrammarTopic])(nil)
	_ screen.KeyHintProvider = (*Screen[service.GrammarTopic])(nil)
	_ screen.Resumer         = (*Screen[service.GrammarTopic])(nil)
)

// Grammar lists the grammar topics. Opening one starts its quiz.
func Grammar(a *app.App) *Screen[service.GrammarTopic] {
	grammar := a.Services.Grammar
	s := New(a, "Grammar",
		func(ctx context.Context) (*api.Envelope[[]service.GrammarTopic], error) {
			return grammar.Topics(ctx, "")
		},
		func(t service.GrammarTopic) Entry {
			label := t.Title
			if t.Icon != "" {
				label = t.Icon + " " + label
			}
			detail := t.Subtitle
			if t.Progress > 0 {
				detail = join(detail, percent(t.Progress))
			}
			return Entry{ID: t.ID, Label: label, Detail: detail, Done: t.Progress >= 100, Locked: t.Locked}
		},
		func(e Entry) screen.Screen { return quiz.NewGrammar(a, e.ID, e.Label) },
	)
	s.costsHearts = true
	return s
}

// Reading lists the reading passages. Opening one shows the text with its
// questions.
func Reading(a *app.App) *Screen[service.ReadingSummary] {
	s := New(a, "Reading", a.Services.Reading.Passages,
		func(r service.ReadingSummary) Entry {
			return Entry{ID: r.ID, Label: r.Title, Detail: r.Level, Done: r.Completed, Locked: r.Locked}
		},
		func(e Entry) screen.Screen { return quiz.NewReading(a, e.ID, e.Label) },
	)
	s.costsHearts = true
	return s
}

// Conversations lists the dialog situations.
func Conversations(a *app.App) *Screen[service.ConversationSituation] {
	return New(a, "Conversation", a.Services.Conversation.Situations,
		func(c service.ConversationSituation) Entry {
			label := c.Title
			if c.Emoji != "" {
				label = c.Emoji + " " + label
			}
			return Entry{ID: c.ID, Label: label, Detail: c.Level, Done: c.Completed, Locked: c.Locked}
		},
		func(e Entry) screen.Screen { return conversation.New(a, e.ID, e.Label) },
	)
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}

func percent(p int) string {
	return strconv.Itoa(min(p, 100)) + "%"
}
