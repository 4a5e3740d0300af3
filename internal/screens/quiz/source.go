package quiz

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/practice"
	"github.com/abhisek/levo/internal/screens/summary"
	"github.com/abhisek/levo/internal/service"
)

// Set is what a Source loads: the questions plus what the screen shows
// around them.
type Set struct {
	// Title replaces the source's own title when not empty.
	Title string
	// Passage is shown above every question (reading text, grammar
	// explanation, audio link).
	Passage   string
	Questions []service.Question
}

// Source supplies the questions of a run and reports its outcome.
// Sources are immutable after construction: Load and Finish run off the
// UI goroutine.
type Source interface {
	Title() string
	Load(ctx context.Context) (Set, error)

	// Remote returns the server grader for question i, or nil to grade
	// locally.
	Remote(i int, q service.Question) practice.Remote

	// Finish reports the run. The returned Result is usable even when
	// the error is non-nil.
	Finish(ctx context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error)
}

var errNoData = errors.New("empty response")

func baseResult(title string, t practice.Tally, spent time.Duration) summary.Result {
	return summary.Result{
		Title:    title,
		Correct:  t.Correct,
		Total:    t.Total,
		Score:    t.Score(),
		Duration: spent,
		XPEarned: t.XP,
	}
}

// lessonSource runs a lesson from the lesson map. Answers are graded
// against the lesson's own answer key.
type lessonSource struct {
	app  *app.App
	id   string
	name string
}

func (s *lessonSource) Title() string {
	return s.name
}

func (s *lessonSource) Load(ctx context.Context) (Set, error) {
	env, err := s.app.Services.Lessons.Detail(ctx, s.id)
	if err != nil {
		return Set{}, err
	}
	if env == nil {
		return Set{}, errNoData
	}
	if _, err := s.app.Services.Lessons.Start(ctx, s.id); err != nil {
		s.app.Logger.Warn("lesson start not recorded", zap.String("lesson", s.id), zap.Error(err))
	}
	return Set{Title: env.Data.Name, Questions: env.Data.Questions}, nil
}

func (s *lessonSource) Remote(int, service.Question) practice.Remote {
	return nil
}

func (s *lessonSource) Finish(ctx context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error) {
	r := baseResult(title, t, spent)

	env, err := s.app.Services.Lessons.Complete(ctx, s.id, service.LessonResult{
		Score:            t.Score(),
		CorrectCount:     t.Correct,
		TotalQuestions:   t.Total,
		TimeSpentSeconds: int(spent.Seconds()),
	})
	if err != nil {
		return r, err
	}
	if env == nil {
		return r, nil
	}

	reward := env.Data
	s.app.Progress.AddXP(reward.XPEarned)
	s.app.Progress.AddCoins(reward.CoinsEarned)
	if reward.StreakUpdated {
		s.app.Progress.SetStreak(reward.CurrentStreak)
	}

	r.XPEarned += reward.XPEarned
	r.CoinsEarned = reward.CoinsEarned
	r.StreakUpdated = reward.StreakUpdated
	r.CurrentStreak = reward.CurrentStreak
	r.NewBadges = len(reward.NewBadges)
	r.NextUnlocked = reward.NextLessonUnlocked
	return r, nil
}

// dailySource runs the daily quiz. Every answer is graded by the server.
type dailySource struct {
	app *app.App
}

func (s *dailySource) Title() string {
	return "Daily quiz"
}

func (s *dailySource) Load(ctx context.Context) (Set, error) {
	env, err := s.app.Services.Quiz.Daily(ctx)
	if err != nil {
		return Set{}, err
	}
	if env == nil {
		return Set{}, errNoData
	}
	return Set{Questions: env.Data.Questions}, nil
}

func (s *dailySource) Remote(_ int, q service.Question) practice.Remote {
	if q.ID == "" {
		return nil
	}
	quiz := s.app.Services.Quiz
	return func(ctx context.Context, selected int) (*api.Envelope[service.AnswerResult], error) {
		return quiz.Answer(ctx, service.QuizAnswer{QuestionID: q.ID, SelectedAnswer: selected})
	}
}

func (s *dailySource) Finish(ctx context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error) {
	r := baseResult(title, t, spent)
	_, err := s.app.Services.Quiz.Complete(ctx, service.QuizResult{
		Score:          t.Score(),
		CorrectCount:   t.Correct,
		TotalQuestions: t.Total,
	})
	return r, err
}

// grammarSource runs the quiz of a grammar topic, with the topic's
// explanation as the passage. Answers are graded by index on the server.
type grammarSource struct {
	app   *app.App
	id    string
	title string
}

func (s *grammarSource) Title() string {
	return s.title
}

func (s *grammarSource) Load(ctx context.Context) (Set, error) {
	var set Set
	if env, err := s.app.Services.Grammar.Detail(ctx, s.id); err != nil {
		if s.app.SessionLost(err) {
			return Set{}, err
		}
		s.app.Logger.Warn("grammar explanation unavailable", zap.String("topic", s.id), zap.Error(err))
	} else if env != nil {
		set.Title = env.Data.Title
		set.Passage = grammarPassage(env.Data)
	}

	env, err := s.app.Services.Grammar.Quiz(ctx, s.id)
	if err != nil {
		return Set{}, err
	}
	if env == nil {
		return Set{}, errNoData
	}
	set.Questions = env.Data
	return set, nil
}

func grammarPassage(d service.GrammarDetail) string {
	lines := []string{d.Explanation}
	for _, ex := range d.Examples {
		line := "• " + ex.Sentence
		if ex.Translation != "" {
			line += " (" + ex.Translation + ")"
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (s *grammarSource) Remote(i int, _ service.Question) practice.Remote {
	grammar, id := s.app.Services.Grammar, s.id
	return func(ctx context.Context, selected int) (*api.Envelope[service.AnswerResult], error) {
		return grammar.Answer(ctx, id, i, selected)
	}
}

func (s *grammarSource) Finish(_ context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error) {
	return baseResult(title, t, spent), nil
}

// readingSource runs the comprehension questions of a reading passage.
type readingSource struct {
	app   *app.App
	id    string
	title string
}

func (s *readingSource) Title() string {
	return s.title
}

func (s *readingSource) Load(ctx context.Context) (Set, error) {
	env, err := s.app.Services.Reading.Detail(ctx, s.id)
	if err != nil {
		return Set{}, err
	}
	if env == nil {
		return Set{}, errNoData
	}
	return Set{Title: env.Data.Title, Passage: env.Data.Text, Questions: env.Data.Questions}, nil
}

func (s *readingSource) Remote(i int, _ service.Question) practice.Remote {
	reading, id := s.app.Services.Reading, s.id
	return func(ctx context.Context, selected int) (*api.Envelope[service.AnswerResult], error) {
		return reading.Answer(ctx, id, i, selected)
	}
}

func (s *readingSource) Finish(_ context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error) {
	return baseResult(title, t, spent), nil
}

// listeningSource runs the listening problems. The terminal cannot play
// audio, so the passage links to it.
type listeningSource struct {
	app *app.App
}

func (s *listeningSource) Title() string {
	return "Listening"
}

func (s *listeningSource) Load(ctx context.Context) (Set, error) {
	env, err := s.app.Services.Listening.Problems(ctx)
	if err != nil {
		return Set{}, err
	}
	if env == nil {
		return Set{}, errNoData
	}

	set := Set{Questions: make([]service.Question, 0, len(env.Data))}
	var audio []string
	for _, p := range env.Data {
		set.Questions = append(set.Questions, service.Question{ID: p.ID, Question: p.Question, Options: p.Options})
		if p.AudioURL != "" {
			audio = append(audio, p.AudioURL)
		}
	}
	if len(audio) > 0 {
		set.Passage = "Audio: " + strings.Join(audio, "\n       ")
	}
	return set, nil
}

// Remote sends the chosen option's text and maps the server's correct
// answer back to an option index (-1 when it matches none).
func (s *listeningSource) Remote(_ int, q service.Question) practice.Remote {
	if q.ID == "" {
		return nil
	}
	listening := s.app.Services.Listening
	return func(ctx context.Context, selected int) (*api.Envelope[service.AnswerResult], error) {
		env, err := listening.Answer(ctx, q.ID, q.Options[selected])
		if err != nil || env == nil {
			return nil, err
		}
		res := env.Data
		return &api.Envelope[service.AnswerResult]{
			Success: env.Success,
			Message: env.Message,
			Data: service.AnswerResult{
				Correct:         res.Correct,
				CorrectAnswer:   slices.Index(q.Options, res.CorrectAnswer),
				HeartsRemaining: res.HeartsRemaining,
				XPEarned:        res.XPEarned,
			},
		}, nil
	}
}

func (s *listeningSource) Finish(_ context.Context, title string, t practice.Tally, spent time.Duration) (summary.Result, error) {
	return baseResult(title, t, spent), nil
}
