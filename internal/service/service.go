// Package service wraps the backend's REST endpoints. Each type covers one
// domain and does nothing beyond shaping parameters for the api client.
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/streak"
)

// Services groups every domain wrapper over one client.
type Services struct {
	Auth         *Auth
	Users        *Users
	Home         *Home
	Lessons      *Lessons
	Vocabulary   *Vocabulary
	Grammar      *Grammar
	Conversation *Conversation
	Listening    *Listening
	Reading      *Reading
	Quiz         *Quiz
	Review       *Review
	Stats        *Stats
	Badges       *Badges
	Hearts       *Hearts
	Coins        *Coins
	Streak       *Streak
	Subscription *Subscription
}

// New builds all domain wrappers on c.
func New(c *api.Client) *Services {
	return &Services{
		Auth:         &Auth{c: c},
		Users:        &Users{c: c},
		Home:         &Home{c: c},
		Lessons:      &Lessons{c: c},
		Vocabulary:   &Vocabulary{c: c},
		Grammar:      &Grammar{c: c},
		Conversation: &Conversation{c: c},
		Listening:    &Listening{c: c},
		Reading:      &Reading{c: c},
		Quiz:         &Quiz{c: c},
		Review:       &Review{c: c},
		Stats:        &Stats{c: c},
		Badges:       &Badges{c: c},
		Hearts:       &Hearts{c: c},
		Coins:        &Coins{c: c},
		Streak:       &Streak{c: c},
		Subscription: &Subscription{c: c},
	}
}

// Opaque is used for payloads the client only displays or passes along.
type Opaque = json.RawMessage

// Auth covers /auth and onboarding.
type Auth struct{ c *api.Client }

// DevLogin signs in by email against a development backend.
func (s *Auth) DevLogin(ctx context.Context, email, name string) (*api.Envelope[AuthResponse], error) {
	body := map[string]string{"email": email}
	if name != "" {
		body["name"] = name
	}
	return api.Post[AuthResponse](ctx, s.c, "/auth/dev-login", body)
}

func (s *Auth) LoginWithGoogle(ctx context.Context, idToken string) (*api.Envelope[AuthResponse], error) {
	return api.Post[AuthResponse](ctx, s.c, "/auth/google", map[string]string{"idToken": idToken})
}

func (s *Auth) LoginWithApple(ctx context.Context, idToken string) (*api.Envelope[AuthResponse], error) {
	return api.Post[AuthResponse](ctx, s.c, "/auth/apple", map[string]string{"idToken": idToken})
}

// Refresh exchanges a refresh token explicitly. The client refreshes on
// its own after a 401; this is for callers that want to refresh early.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (*api.Envelope[RefreshResponse], error) {
	return api.Post[RefreshResponse](ctx, s.c, api.RefreshPath, map[string]string{"refreshToken": refreshToken})
}

func (s *Auth) Logout(ctx context.Context) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/auth/logout", nil)
}

func (s *Auth) CompleteOnboarding(ctx context.Context, req OnboardingRequest) (*api.Envelope[Me], error) {
	return api.Post[Me](ctx, s.c, "/users/me/onboarding", req)
}

// Users covers /users/me.
type Users struct{ c *api.Client }

func (s *Users) Me(ctx context.Context) (*api.Envelope[Me], error) {
	return api.Get[Me](ctx, s.c, "/users/me", nil)
}

func (s *Users) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*api.Envelope[Opaque], error) {
	return api.Patch[Opaque](ctx, s.c, "/users/me", upd)
}

func (s *Users) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*api.Envelope[Opaque], error) {
	return api.Patch[Opaque](ctx, s.c, "/users/me/settings", upd)
}

func (s *Users) ChangeLanguage(ctx context.Context, targetLanguage string) (*api.Envelope[LanguageChange], error) {
	return api.Patch[LanguageChange](ctx, s.c, "/users/me/language", map[string]string{"targetLanguage": targetLanguage})
}

// Home covers the dashboard.
type Home struct{ c *api.Client }

func (s *Home) Get(ctx context.Context) (*api.Envelope[HomeData], error) {
	return api.Get[HomeData](ctx, s.c, "/home", nil)
}

// Lessons covers the lesson map and lesson lifecycle.
type Lessons struct{ c *api.Client }

func (s *Lessons) List(ctx context.Context) (*api.Envelope[LessonMap], error) {
	return api.Get[LessonMap](ctx, s.c, "/lessons", nil)
}

func (s *Lessons) Detail(ctx context.Context, id string) (*api.Envelope[LessonDetail], error) {
	return api.Get[LessonDetail](ctx, s.c, "/lessons/"+url.PathEscape(id), nil)
}

func (s *Lessons) Start(ctx context.Context, id string) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/lessons/"+url.PathEscape(id)+"/start", nil)
}

func (s *Lessons) Complete(ctx context.Context, id string, res LessonResult) (*api.Envelope[LessonReward], error) {
	return api.Post[LessonReward](ctx, s.c, "/lessons/"+url.PathEscape(id)+"/complete", res)
}

// Vocabulary covers words and flashcards.
type Vocabulary struct{ c *api.Client }

func (s *Vocabulary) Words(ctx context.Context, q WordQuery) (*api.Envelope[VocabularyList], error) {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	setInt(v, "chapter", q.Chapter)
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	return api.Get[VocabularyList](ctx, s.c, "/vocabulary", v)
}

func (s *Vocabulary) Flashcards(ctx context.Context, count int) (*api.Envelope[FlashcardDeck], error) {
	v := url.Values{}
	setInt(v, "count", count)
	return api.Get[FlashcardDeck](ctx, s.c, "/vocabulary/flashcards", v)
}

func (s *Vocabulary) AnswerFlashcard(ctx context.Context, id string, correct bool) (*api.Envelope[FlashcardResult], error) {
	return api.Post[FlashcardResult](ctx, s.c, "/vocabulary/"+url.PathEscape(id)+"/answer", map[string]bool{"correct": correct})
}

// Grammar covers grammar topics and their quizzes.
type Grammar struct{ c *api.Client }

func (s *Grammar) Topics(ctx context.Context, level string) (*api.Envelope[[]GrammarTopic], error) {
	v := url.Values{}
	if level != "" {
		v.Set("level", level)
	}
	return api.Get[[]GrammarTopic](ctx, s.c, "/grammar", v)
}

func (s *Grammar) Detail(ctx context.Context, id string) (*api.Envelope[GrammarDetail], error) {
	return api.Get[GrammarDetail](ctx, s.c, "/grammar/"+url.PathEscape(id), nil)
}

func (s *Grammar) Quiz(ctx context.Context, id string) (*api.Envelope[[]Question], error) {
	return api.Get[[]Question](ctx, s.c, "/grammar/"+url.PathEscape(id)+"/quiz", nil)
}

func (s *Grammar) Answer(ctx context.Context, id string, quizIndex, selected int) (*api.Envelope[AnswerResult], error) {
	body := map[string]int{"quizIndex": quizIndex, "selectedAnswer": selected}
	return api.Post[AnswerResult](ctx, s.c, "/grammar/"+url.PathEscape(id)+"/quiz/answer", body)
}

// Conversation covers dialog situations.
type Conversation struct{ c *api.Client }

func (s *Conversation) Situations(ctx context.Context) (*api.Envelope[[]ConversationSituation], error) {
	return api.Get[[]ConversationSituation](ctx, s.c, "/conversations", nil)
}

func (s *Conversation) Detail(ctx context.Context, id string) (*api.Envelope[ConversationDetail], error) {
	return api.Get[ConversationDetail](ctx, s.c, "/conversations/"+url.PathEscape(id), nil)
}

// Practice reports a practiced line of the learner's part with its score
// in [0, 100].
func (s *Conversation) Practice(ctx context.Context, id string, dialogIndex, pronunciationScore int) (*api.Envelope[PracticeResult], error) {
	body := map[string]int{"dialogIndex": dialogIndex, "pronunciationScore": pronunciationScore}
	return api.Post[PracticeResult](ctx, s.c, "/conversations/"+url.PathEscape(id)+"/practice", body)
}

// Listening covers listening problems.
type Listening struct{ c *api.Client }

func (s *Listening) Problems(ctx context.Context) (*api.Envelope[[]ListeningProblem], error) {
	return api.Get[[]ListeningProblem](ctx, s.c, "/listening", nil)
}

func (s *Listening) Answer(ctx context.Context, id, answer string) (*api.Envelope[TextAnswerResult], error) {
	return api.Post[TextAnswerResult](ctx, s.c, "/listening/"+url.PathEscape(id)+"/answer", map[string]string{"answer": answer})
}

// Reading covers reading passages.
type Reading struct{ c *api.Client }

func (s *Reading) Passages(ctx context.Context) (*api.Envelope[[]ReadingSummary], error) {
	return api.Get[[]ReadingSummary](ctx, s.c, "/reading", nil)
}

func (s *Reading) Detail(ctx context.Context, id string) (*api.Envelope[ReadingPassage], error) {
	return api.Get[ReadingPassage](ctx, s.c, "/reading/"+url.PathEscape(id), nil)
}

func (s *Reading) Answer(ctx context.Context, id string, quizIndex, selected int) (*api.Envelope[AnswerResult], error) {
	body := map[string]int{"quizIndex": quizIndex, "selectedAnswer": selected}
	return api.Post[AnswerResult](ctx, s.c, "/reading/"+url.PathEscape(id)+"/quiz/answer", body)
}

// Quiz covers the daily quiz.
type Quiz struct{ c *api.Client }

func (s *Quiz) Daily(ctx context.Context) (*api.Envelope[DailyQuiz], error) {
	return api.Get[DailyQuiz](ctx, s.c, "/quiz/daily", nil)
}

func (s *Quiz) Answer(ctx context.Context, a QuizAnswer) (*api.Envelope[AnswerResult], error) {
	return api.Post[AnswerResult](ctx, s.c, "/quiz/answer", a)
}

func (s *Quiz) Complete(ctx context.Context, res QuizResult) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/quiz/complete", res)
}

// Review covers the spaced review dashboard.
type Review struct{ c *api.Client }

func (s *Review) Dashboard(ctx context.Context) (*api.Envelope[ReviewDashboard], error) {
	return api.Get[ReviewDashboard](ctx, s.c, "/review", nil)
}

func (s *Review) CategoryItems(ctx context.Context, category string) (*api.Envelope[Opaque], error) {
	return api.Get[Opaque](ctx, s.c, "/review/"+url.PathEscape(category), nil)
}

func (s *Review) Complete(ctx context.Context, category string) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/review/"+url.PathEscape(category)+"/complete", nil)
}

// Stats covers learning statistics.
type Stats struct{ c *api.Client }

// Get returns stats for period; an empty period lets the server choose.
func (s *Stats) Get(ctx context.Context, period string) (*api.Envelope[StatsReport], error) {
	v := url.Values{}
	if period != "" {
		v.Set("period", period)
	}
	return api.Get[StatsReport](ctx, s.c, "/stats", v)
}

// Badges covers achievements.
type Badges struct{ c *api.Client }

func (s *Badges) List(ctx context.Context, category string) (*api.Envelope[BadgeList], error) {
	v := url.Values{}
	if category != "" {
		v.Set("category", category)
	}
	return api.Get[BadgeList](ctx, s.c, "/badges", v)
}

// Hearts covers the server-side heart ledger.
type Hearts struct{ c *api.Client }

func (s *Hearts) Get(ctx context.Context) (*api.Envelope[hearts.Status], error) {
	return api.Get[hearts.Status](ctx, s.c, "/hearts", nil)
}

func (s *Hearts) Use(ctx context.Context) (*api.Envelope[hearts.Status], error) {
	return api.Post[hearts.Status](ctx, s.c, "/hearts/use", nil)
}

// Refill restores hearts by method (RefillAd, RefillCoinSingle,
// RefillCoinFull).
func (s *Hearts) Refill(ctx context.Context, method string) (*api.Envelope[hearts.Status], error) {
	return api.Post[hearts.Status](ctx, s.c, "/hearts/refill", map[string]string{"method": method})
}

// Coins covers the coin balance.
type Coins struct{ c *api.Client }

func (s *Coins) Get(ctx context.Context) (*api.Envelope[CoinBalance], error) {
	return api.Get[CoinBalance](ctx, s.c, "/coins", nil)
}

func (s *Coins) Earn(ctx context.Context, reason string) (*api.Envelope[CoinBalance], error) {
	return api.Post[CoinBalance](ctx, s.c, "/coins/earn", map[string]string{"reason": reason})
}

// Spend buys quantity of item; a quantity below 1 is sent as 1.
func (s *Coins) Spend(ctx context.Context, item string, quantity int) (*api.Envelope[CoinBalance], error) {
	if quantity < 1 {
		quantity = 1
	}
	body := map[string]any{"item": item, "quantity": quantity}
	return api.Post[CoinBalance](ctx, s.c, "/coins/spend", body)
}

// Streak covers the daily streak.
type Streak struct{ c *api.Client }

func (s *Streak) Get(ctx context.Context) (*api.Envelope[streak.Data], error) {
	return api.Get[streak.Data](ctx, s.c, "/streak", nil)
}

func (s *Streak) UseShield(ctx context.Context) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/streak/shield", nil)
}

// Subscription covers premium plans.
type Subscription struct{ c *api.Client }

func (s *Subscription) Get(ctx context.Context) (*api.Envelope[SubscriptionInfo], error) {
	return api.Get[SubscriptionInfo](ctx, s.c, "/subscription", nil)
}

// Subscribe starts plan ("monthly" or "yearly") with a store receipt from
// platform ("apple" or "google").
func (s *Subscription) Subscribe(ctx context.Context, plan, receipt, platform string) (*api.Envelope[Opaque], error) {
	body := map[string]string{"plan": plan, "receipt": receipt, "platform": platform}
	return api.Post[Opaque](ctx, s.c, "/subscription/subscribe", body)
}

func (s *Subscription) Cancel(ctx context.Context) (*api.Envelope[Opaque], error) {
	return api.Post[Opaque](ctx, s.c, "/subscription/cancel", nil)
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}
