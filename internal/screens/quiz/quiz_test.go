package quiz

import (
	"net/http"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/app/apptest"
	"github.com/abhisek/levo/internal/router"
	heartsscreen "github.com/abhisek/levo/internal/screens/hearts"
	"github.com/abhisek/levo/internal/screens/summary"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func lessonBackend(t *testing.T) *apptest.Backend {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/lessons/l1", map[string]any{
		"_id":  "l1",
		"name": "Greetings",
		"questions": []map[string]any{
			{"question": "Hello?", "options": []string{"Hola", "Adiós"}, "correctIndex": 0},
			{"question": "Goodbye?", "options": []string{"Hola", "Adiós"}, "correctIndex": 1, "explanation": "Adiós means goodbye."},
		},
	})
	b.OK(http.MethodPost, "/lessons/l1/start", map[string]any{})
	b.OK(http.MethodPost, "/lessons/l1/complete", map[string]any{
		"xpEarned":           20,
		"coinsEarned":        5,
		"streakUpdated":      true,
		"currentStreak":      4,
		"newBadges":          []any{},
		"nextLessonUnlocked": true,
	})
	return b
}

func newLesson(t *testing.T, b *apptest.Backend) (*QuizScreen, *app.App) {
	t.Helper()
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewLesson(a, "l1", "")
	s.now = func() time.Time { return t0 }
	return s, a
}

// step runs cmd and feeds its message back into s.
func step(t *testing.T, s *QuizScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := s.Update(cmd())
	return next
}

func TestLesson_FullRun(t *testing.T) {
	b := lessonBackend(t)
	s, a := newLesson(t, b)

	step(t, s, s.Init())
	assert.Equal(t, phaseAsking, s.phase)
	assert.Equal(t, "Greetings", s.Title())
	assert.Equal(t, 1, b.Calls(http.MethodPost, "/lessons/l1/start"))

	// Correct answer.
	_, cmd := s.Update(keyPress('1'))
	assert.Equal(t, phaseGrading, s.phase)
	step(t, s, cmd)
	assert.Equal(t, phaseFeedback, s.phase)
	assert.Contains(t, s.View(80, 30), "Correct!")

	s.Update(keyPress(' '))
	assert.Equal(t, 1, s.index)

	// Wrong answer costs a heart.
	_, cmd = s.Update(keyPress('1'))
	step(t, s, cmd)
	assert.Equal(t, 4, a.Hearts.State().Current)
	view := s.View(80, 30)
	assert.Contains(t, view, "Not quite")
	assert.Contains(t, view, "Correct answer: Adiós")
	assert.Contains(t, view, "Adiós means goodbye.")

	s.now = func() time.Time { return t0.Add(90 * time.Second) }
	_, cmd = s.Update(keyPress(' '))
	assert.Equal(t, phaseFinishing, s.phase)

	next := step(t, s, cmd)
	require.NotNil(t, next)
	msg, ok := next().(router.ReplaceScreenMsg)
	require.True(t, ok, "expected ReplaceScreenMsg")
	sum, ok := msg.Screen.(*summary.SummaryScreen)
	require.True(t, ok, "expected summary screen")
	assert.Contains(t, sum.View(80, 30), "+20 XP")

	bodies := b.Bodies(http.MethodPost, "/lessons/l1/complete")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"score":50,"correctCount":1,"totalQuestions":2,"timeSpentSeconds":90}`, string(bodies[0]))

	p := a.Progress.State()
	assert.Equal(t, 20, p.XP)
	assert.Equal(t, 5, p.Coins)
	assert.Equal(t, 4, p.StreakDays)
}

func TestLesson_CompleteFailureStillShowsSummary(t *testing.T) {
	b := lessonBackend(t)
	b.Fail(http.MethodPost, "/lessons/l1/complete", http.StatusInternalServerError, "try later")
	s, _ := newLesson(t, b)
	step(t, s, s.Init())

	for range 2 {
		_, cmd := s.Update(keyPress('1'))
		step(t, s, cmd)
		_, cmd = s.Update(keyPress(' '))
		if s.phase == phaseFinishing {
			next := step(t, s, cmd)
			msg := next().(router.ReplaceScreenMsg)
			assert.Contains(t, msg.Screen.View(80, 30), "Result not saved: try later")
			return
		}
	}
	t.Fatal("run never finished")
}

func TestDaily_ServerGrading(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/quiz/daily", map[string]any{
		"questions": []map[string]any{
			{"_id": "q1", "question": "Cat?", "options": []string{"Perro", "Gato", "Pez"}, "correctIndex": 1},
		},
	})
	b.OK(http.MethodPost, "/quiz/answer", map[string]any{
		"correct": false, "correctAnswer": 1, "heartsRemaining": 3, "xpEarned": 0,
	})
	b.OK(http.MethodPost, "/quiz/complete", map[string]any{})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewDaily(a)
	s.now = func() time.Time { return t0 }

	step(t, s, s.Init())
	_, cmd := s.Update(keyPress('3'))
	step(t, s, cmd)

	assert.Equal(t, 3, a.Hearts.State().Current)
	assert.Equal(t, 1, s.choice.CorrectIndex)

	bodies := b.Bodies(http.MethodPost, "/quiz/answer")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"questionId":"q1","selectedAnswer":2}`, string(bodies[0]))

	_, cmd = s.Update(keyPress(' '))
	next := step(t, s, cmd)
	_, ok := next().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, b.Calls(http.MethodPost, "/quiz/complete"))
}

func TestQuiz_OutOfHearts(t *testing.T) {
	b := lessonBackend(t)
	s, a := newLesson(t, b)
	a.Hearts.SetHearts(0, nil)

	step(t, s, s.Init())
	assert.Equal(t, phaseNoHearts, s.phase)
	assert.Contains(t, s.View(80, 30), "Out of hearts")

	// Answer keys do nothing while out of hearts.
	_, cmd := s.Update(keyPress('1'))
	assert.Nil(t, cmd)

	_, cmd = s.Update(keyPress('h'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = push.Screen.(*heartsscreen.HeartsScreen)
	assert.True(t, ok, "expected hearts screen")

	// Still empty: stay blocked.
	s.Resume()
	assert.Equal(t, phaseNoHearts, s.phase)

	a.Hearts.RefillAll()
	s.Resume()
	assert.Equal(t, phaseAsking, s.phase)
}

func TestQuiz_QuitConfirm(t *testing.T) {
	b := lessonBackend(t)
	s, _ := newLesson(t, b)
	step(t, s, s.Init())

	s.Update(specialKey(tea.KeyEscape))
	assert.True(t, s.confirmQuit)
	assert.Contains(t, s.View(80, 30), "Leave now?")

	s.Update(keyPress('n'))
	assert.False(t, s.confirmQuit)
	assert.Equal(t, phaseAsking, s.phase)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
	assert.Zero(t, b.Calls(http.MethodPost, "/lessons/l1/complete"))
}

func TestQuiz_LoadError(t *testing.T) {
	b := apptest.NewBackend(t)
	b.Fail(http.MethodGet, "/lessons/l1", http.StatusNotFound, "lesson not found")
	s, _ := newLesson(t, b)

	step(t, s, s.Init())
	assert.Equal(t, phaseError, s.phase)
	assert.Contains(t, s.View(80, 30), "lesson not found")

	_, cmd := s.Update(keyPress('x'))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestQuiz_EmptyLesson(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/lessons/l1", map[string]any{"_id": "l1", "name": "Empty", "questions": []any{}})
	b.OK(http.MethodPost, "/lessons/l1/start", map[string]any{})
	s, _ := newLesson(t, b)

	step(t, s, s.Init())
	assert.Equal(t, phaseError, s.phase)
	assert.Contains(t, s.View(80, 30), "No questions available")
}

func TestQuiz_HandlesBack(t *testing.T) {
	s, _ := newLesson(t, lessonBackend(t))
	assert.True(t, s.HandlesBack())
}

func TestQuiz_LoadRunsOffTheUIGoroutine(t *testing.T) {
	b := lessonBackend(t)
	s, _ := newLesson(t, b)

	cmd := s.Init()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	// The UI keeps rendering while the lesson loads.
	var msg tea.Msg
	for msg == nil {
		select {
		case msg = <-done:
		default:
			assert.Equal(t, "Quiz", s.Title())
			_ = s.View(80, 30)
		}
	}

	s.Update(msg)
	assert.Equal(t, "Greetings", s.Title())
	assert.Equal(t, phaseAsking, s.phase)
}

func answerAll(t *testing.T, s *QuizScreen, key rune) tea.Cmd {
	t.Helper()
	for {
		_, cmd := s.Update(keyPress(key))
		step(t, s, cmd)
		require.Equal(t, phaseFeedback, s.phase)
		_, cmd = s.Update(keyPress(' '))
		if s.phase == phaseFinishing {
			return cmd
		}
	}
}

func TestGrammar_ServerGradedWithExplanation(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/grammar/g1", map[string]any{
		"_id": "g1", "title": "Present simple",
		"explanation": "Add -s for he, she and it.",
		"examples":    []map[string]any{{"sentence": "She reads.", "translation": "Ella lee."}},
	})
	b.OK(http.MethodGet, "/grammar/g1/quiz", []map[string]any{
		{"question": "He ___ tea.", "options": []string{"drink", "drinks"}},
		{"question": "They ___ tea.", "options": []string{"drink", "drinks"}},
	})
	b.OK(http.MethodPost, "/grammar/g1/quiz/answer", map[string]any{
		"correct": true, "correctAnswer": 1, "xpEarned": 5,
	})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewGrammar(a, "g1", "Grammar")
	s.now = func() time.Time { return t0 }

	step(t, s, s.Init())
	assert.Equal(t, "Present simple", s.Title())
	view := s.View(100, 40)
	assert.Contains(t, view, "Add -s for he, she and it.")
	assert.Contains(t, view, "She reads. (Ella lee.)")

	cmd := answerAll(t, s, '2')
	next := step(t, s, cmd)
	msg := next().(router.ReplaceScreenMsg)
	assert.Contains(t, msg.Screen.View(80, 30), "+10 XP")

	bodies := b.Bodies(http.MethodPost, "/grammar/g1/quiz/answer")
	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"quizIndex":0,"selectedAnswer":1}`, string(bodies[0]))
	assert.JSONEq(t, `{"quizIndex":1,"selectedAnswer":1}`, string(bodies[1]))
	assert.Equal(t, 10, a.Progress.State().XP)
}

func TestGrammar_ExplanationOptional(t *testing.T) {
	b := apptest.NewBackend(t)
	b.Fail(http.MethodGet, "/grammar/g1", http.StatusInternalServerError, "boom")
	b.OK(http.MethodGet, "/grammar/g1/quiz", []map[string]any{
		{"question": "He ___ tea.", "options": []string{"drink", "drinks"}},
	})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewGrammar(a, "g1", "Present simple")

	step(t, s, s.Init())
	assert.Equal(t, phaseAsking, s.phase)
	assert.Equal(t, "Present simple", s.Title())
	assert.Empty(t, s.passage)
}

func TestReading_PassageAndAnswers(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/reading/r1", map[string]any{
		"_id": "r1", "title": "My Daily Routine",
		"text": "I wake up at 7 o'clock every morning.",
		"questions": []map[string]any{
			{"question": "When does the speaker wake up?", "options": []string{"6", "7", "8"}, "correctIndex": 1},
		},
	})
	b.OK(http.MethodPost, "/reading/r1/quiz/answer", map[string]any{
		"correct": false, "correctAnswer": 1, "heartsRemaining": 4,
	})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewReading(a, "r1", "Reading")
	s.now = func() time.Time { return t0 }

	step(t, s, s.Init())
	assert.Equal(t, "My Daily Routine", s.Title())
	assert.Contains(t, s.View(100, 40), "I wake up at 7 o'clock every morning.")

	_, cmd := s.Update(keyPress('1'))
	step(t, s, cmd)
	assert.False(t, s.outcome.Correct)
	assert.Equal(t, 4, a.Hearts.State().Current)
	assert.Contains(t, s.View(100, 40), "Correct answer: 7")

	bodies := b.Bodies(http.MethodPost, "/reading/r1/quiz/answer")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"quizIndex":0,"selectedAnswer":0}`, string(bodies[0]))
}

func TestListening_SendsOptionText(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/listening", []map[string]any{
		{"_id": "p1", "question": "Where are they?", "options": []string{"School", "Cafe", "Airport"}, "audioUrl": "https://cdn.example.com/p1.mp3"},
	})
	b.OK(http.MethodPost, "/listening/p1/answer", map[string]any{
		"correct": false, "correctAnswer": "Cafe", "heartsRemaining": 2, "xpEarned": 0,
	})
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewListening(a)
	s.now = func() time.Time { return t0 }

	step(t, s, s.Init())
	assert.Contains(t, s.View(100, 40), "https://cdn.example.com/p1.mp3")

	_, cmd := s.Update(keyPress('3'))
	step(t, s, cmd)
	assert.Equal(t, 1, s.outcome.CorrectIndex)
	assert.Equal(t, 2, a.Hearts.State().Current)

	bodies := b.Bodies(http.MethodPost, "/listening/p1/answer")
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"answer":"Airport"}`, string(bodies[0]))
}

func TestDaily_WithoutAnswerKeyStaysUngradedOffline(t *testing.T) {
	b := apptest.NewBackend(t)
	b.OK(http.MethodGet, "/quiz/daily", map[string]any{
		"questions": []map[string]any{
			{"_id": "q1", "question": "Cat?", "options": []string{"Perro", "Gato"}},
		},
	})
	b.Fail(http.MethodPost, "/quiz/answer", http.StatusServiceUnavailable, "grader offline")
	a := apptest.New(t, b)
	apptest.SignIn(a)
	s := NewDaily(a)

	step(t, s, s.Init())
	_, cmd := s.Update(keyPress('1'))
	step(t, s, cmd)

	assert.Equal(t, phaseAsking, s.phase)
	assert.Contains(t, s.View(80, 30), "Could not check your answer: grader offline")
	assert.Equal(t, 5, a.Hearts.State().Current)
	assert.Zero(t, s.tally.Total)
}
