package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/practice"
	"github.com/abhisek/levo/internal/router"
	"github.com/abhisek/levo/internal/screen"
	heartsscreen "github.com/abhisek/levo/internal/screens/hearts"
	"github.com/abhisek/levo/internal/screens/summary"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
)

type phase int

const (
	phaseLoading phase = iota
	phaseAsking
	phaseGrading
	phaseFeedback
	phaseNoHearts
	phaseFinishing
	phaseError
)

// QuizScreen runs a sequence of multiple-choice questions, one heart per
// wrong answer, and hands over to the summary when done.
type QuizScreen struct {
	app *app.App
	src Source
	now func() time.Time

	title     string
	passage   string
	questions []service.Question
	index     int
	choice    components.MultiChoice
	tally     practice.Tally
	outcome   practice.Outcome
	started   time.Time

	phase       phase
	confirmQuit bool
	notice      string
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackHandler = (*QuizScreen)(nil)
var _ screen.Resumer = (*QuizScreen)(nil)

// New creates a QuizScreen over src.
func New(a *app.App, src Source) *QuizScreen {
	return &QuizScreen{app: a, src: src, now: time.Now}
}

// NewLesson creates a QuizScreen for the lesson with id.
func NewLesson(a *app.App, id, name string) *QuizScreen {
	return New(a, &lessonSource{app: a, id: id, name: name})
}

// NewDaily creates a QuizScreen for today's quiz.
func NewDaily(a *app.App) *QuizScreen {
	return New(a, &dailySource{app: a})
}

// NewGrammar creates a QuizScreen for the quiz of a grammar topic.
func NewGrammar(a *app.App, id, title string) *QuizScreen {
	return New(a, &grammarSource{app: a, id: id, title: title})
}

// NewReading creates a QuizScreen for a reading passage.
func NewReading(a *app.App, id, title string) *QuizScreen {
	return New(a, &readingSource{app: a, id: id, title: title})
}

// NewListening creates a QuizScreen for the listening problems.
func NewListening(a *app.App) *QuizScreen {
	return New(a, &listeningSource{app: a})
}

func (s *QuizScreen) Init() tea.Cmd {
	src := s.src
	return func() tea.Msg {
		set, err := src.Load(context.Background())
		return loadedMsg{Set: set, Err: err}
	}
}

func (s *QuizScreen) Title() string {
	if s.title != "" {
		return s.title
	}
	if t := s.src.Title(); t != "" {
		return t
	}
	return "Quiz"
}

// HandlesBack is true because Esc asks for confirmation mid-run.
func (s *QuizScreen) HandlesBack() bool {
	return true
}

// Resume continues the run if hearts were refilled meanwhile.
func (s *QuizScreen) Resume() tea.Cmd {
	if s.phase == phaseNoHearts && !s.app.Hearts.Depleted() {
		s.phase = phaseAsking
	}
	return nil
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case phaseNoHearts:
		return []layout.KeyHint{
			{Key: "H", Description: "Get hearts"},
			{Key: "Esc", Description: "Leave"},
		}
	case phaseError:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case phaseAsking:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "1-9", Description: "Answer"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case gradedMsg:
		return s.handleGraded(msg)
	case finishedMsg:
		return s.handleFinished(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if s.app.SessionLost(msg.Err) {
			return s, screen.SignOut
		}
		s.fail(api.Message(msg.Err))
		return s, nil
	}
	if len(msg.Set.Questions) == 0 {
		s.fail("No questions available right now.")
		return s, nil
	}
	s.title = msg.Set.Title
	s.passage = msg.Set.Passage
	s.questions = msg.Set.Questions
	s.started = s.now()
	s.ask(0)
	return s, nil
}

func (s *QuizScreen) fail(text string) {
	s.phase = phaseError
	s.errMsg = text
}

func (s *QuizScreen) ask(i int) {
	s.index = i
	q := s.questions[i]
	s.choice = components.NewMultiChoice(q.Question, q.Options)
	s.notice = ""
	if s.app.Hearts.Depleted() {
		s.phase = phaseNoHearts
		return
	}
	s.phase = phaseAsking
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, pop
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseError:
		return s, pop

	case phaseLoading:
		if key == "esc" {
			return s, pop
		}

	case phaseFeedback:
		return s.next()

	case phaseNoHearts:
		switch key {
		case "h", "H":
			hs := heartsscreen.New(s.app)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: hs} }
		case "esc":
			s.confirmQuit = true
		}

	case phaseAsking:
		if key == "esc" {
			s.confirmQuit = true
			return s, nil
		}
		s.choice, _ = s.choice.Update(msg)
		if s.choice.Submitted {
			s.phase = phaseGrading
			return s, s.grade()
		}
	}

	return s, nil
}

func (s *QuizScreen) grade() tea.Cmd {
	q := s.questions[s.index]
	selected := s.choice.ChosenIndex
	remote := s.src.Remote(s.index, q)
	g := s.app.Grader
	return func() tea.Msg {
		o, err := g.Answer(context.Background(), q, selected, remote)
		return gradedMsg{Outcome: o, Err: err}
	}
}

func (s *QuizScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.choice.Reset()
		switch {
		case errors.Is(msg.Err, practice.ErrNoHearts):
			s.phase = phaseNoHearts
		case s.app.SessionLost(msg.Err):
			return s, screen.SignOut
		default:
			s.phase = phaseAsking
			s.notice = "Could not check your answer: " + api.Message(msg.Err)
		}
		return s, nil
	}

	s.tally.Record(msg.Outcome)
	s.outcome = msg.Outcome
	s.choice.Reveal(msg.Outcome.CorrectIndex)
	s.phase = phaseFeedback
	return s, nil
}

func (s *QuizScreen) next() (screen.Screen, tea.Cmd) {
	if s.index+1 < len(s.questions) {
		s.ask(s.index + 1)
		return s, nil
	}

	s.phase = phaseFinishing
	src, title, tally, spent := s.src, s.Title(), s.tally, s.now().Sub(s.started)
	return s, func() tea.Msg {
		r, err := src.Finish(context.Background(), title, tally, spent)
		return finishedMsg{Result: r, Err: err}
	}
}

func (s *QuizScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	r := msg.Result
	if msg.Err != nil {
		if s.app.SessionLost(msg.Err) {
			return s, screen.SignOut
		}
		r.SyncErr = api.Message(msg.Err)
	}
	sum := summary.New(r)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func pop() tea.Msg {
	return router.PopScreenMsg{}
}
