package practice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/config"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
)

var question = service.Question{
	Question:     "She ___ a doctor.",
	Options:      []string{"am", "is", "are", "be"},
	CorrectIndex: intPtr(1),
}

func newGrader(policy config.AnswerFallback) (*Grader, *hearts.Store, *progress.Store) {
	h := hearts.NewStore(hearts.DefaultMax)
	p := progress.NewStore()
	return NewGrader(h, p, policy, nil), h, p
}

func serverSays(res service.AnswerResult) Remote {
	return func(context.Context, int) (*api.Envelope[service.AnswerResult], error) {
		return &api.Envelope[service.AnswerResult]{Success: true, Data: res}, nil
	}
}

func offline(context.Context, int) (*api.Envelope[service.AnswerResult], error) {
	return nil, &api.ErrTransport{Method: "POST", Path: "/quiz/answer", Err: errors.New("connection refused")}
}

func intPtr(n int) *int { return &n }

func TestAnswer_ServerGraded(t *testing.T) {
	g, h, p := newGrader(config.FallbackLocal)

	out, err := g.Answer(context.Background(), question, 0, serverSays(service.AnswerResult{
		Correct: false, CorrectAnswer: 1, HeartsRemaining: intPtr(2), XPEarned: 0,
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceServer, out.Source)
	assert.False(t, out.Correct)
	assert.Equal(t, 1, out.CorrectIndex)
	assert.Equal(t, 2, h.State().Current, "server heart count applied")
	assert.Equal(t, 0, p.State().XP)
}

func TestAnswer_ServerAwardsXP(t *testing.T) {
	g, h, p := newGrader(config.FallbackLocal)

	out, err := g.Answer(context.Background(), question, 1, serverSays(service.AnswerResult{
		Correct: true, CorrectAnswer: 1, XPEarned: 10,
	}))
	require.NoError(t, err)

	assert.True(t, out.Correct)
	assert.Equal(t, 10, p.State().XP)
	assert.Equal(t, hearts.DefaultMax, h.State().Current)
}

func TestAnswer_ServerWrongWithoutHeartCount(t *testing.T) {
	g, h, _ := newGrader(config.FallbackLocal)

	_, err := g.Answer(context.Background(), question, 0, serverSays(service.AnswerResult{Correct: false, CorrectAnswer: 1}))
	require.NoError(t, err)
	assert.Equal(t, hearts.DefaultMax-1, h.State().Current)
}

func TestAnswer_LocalFallback(t *testing.T) {
	g, h, p := newGrader(config.FallbackLocal)

	out, err := g.Answer(context.Background(), question, 3, offline)
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, out.Source)
	assert.False(t, out.Correct)
	assert.Equal(t, 1, out.CorrectIndex)
	assert.Equal(t, hearts.DefaultMax-1, h.State().Current)
	assert.Zero(t, p.State().XP, "local grading earns no XP")
}

func TestAnswer_LocalFallbackOnSuccessFalse(t *testing.T) {
	g, _, _ := newGrader(config.FallbackLocal)
	remote := func(context.Context, int) (*api.Envelope[service.AnswerResult], error) {
		return &api.Envelope[service.AnswerResult]{Success: false}, nil
	}

	out, err := g.Answer(context.Background(), question, 1, remote)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, out.Source)
	assert.True(t, out.Correct)
}

func TestAnswer_NoFallback(t *testing.T) {
	g, h, _ := newGrader(config.FallbackNone)

	_, err := g.Answer(context.Background(), question, 3, offline)

	var transportErr *api.ErrTransport
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, hearts.DefaultMax, h.State().Current, "ungraded answers cost nothing")
}

func TestAnswer_LocalOnly(t *testing.T) {
	g, h, _ := newGrader(config.FallbackNone)

	out, err := g.Answer(context.Background(), question, 1, nil)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, SourceLocal, out.Source)
	assert.Equal(t, hearts.DefaultMax, h.State().Current)
}

func TestAnswer_NoHearts(t *testing.T) {
	g, h, _ := newGrader(config.FallbackLocal)
	h.SetHearts(0, nil)

	called := false
	remote := func(context.Context, int) (*api.Envelope[service.AnswerResult], error) {
		called = true
		return nil, nil
	}

	_, err := g.Answer(context.Background(), question, 1, remote)
	assert.ErrorIs(t, err, ErrNoHearts)
	assert.False(t, called, "nothing is sent without hearts")
}

func TestAnswer_PremiumIgnoresHearts(t *testing.T) {
	g, h, _ := newGrader(config.FallbackLocal)
	h.SetHearts(0, nil)
	h.SetPremium(true)

	out, err := g.Answer(context.Background(), question, 0, nil)
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, 0, h.State().Current)
}

func TestAnswer_OneHeartTwoWrong(t *testing.T) {
	g, h, _ := newGrader(config.FallbackLocal)
	h.SetHearts(1, nil)

	_, err := g.Answer(context.Background(), question, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.State().Current)

	_, err = g.Answer(context.Background(), question, 0, nil)
	assert.ErrorIs(t, err, ErrNoHearts)
	assert.Equal(t, 0, h.State().Current)
}

func TestAnswer_OutOfRange(t *testing.T) {
	g, _, _ := newGrader(config.FallbackLocal)
	_, err := g.Answer(context.Background(), question, 4, nil)
	assert.Error(t, err)
}

func TestAnswer_NoAnswerKey(t *testing.T) {
	var q service.Question
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"q1","question":"Cat?","options":["Perro","Gato","Pez"]}`), &q))

	g, h, _ := newGrader(config.FallbackLocal)

	// Neither option is graded when the server is unreachable, including
	// the first one a zero answer key would have matched.
	for _, selected := range []int{0, 1} {
		_, err := g.Answer(context.Background(), q, selected, offline)

		var transportErr *api.ErrTransport
		require.ErrorAs(t, err, &transportErr, "selected %d", selected)
	}
	assert.Equal(t, hearts.DefaultMax, h.State().Current, "ungraded answers cost nothing")

	_, err := g.Answer(context.Background(), q, 1, nil)
	assert.ErrorIs(t, err, ErrNoAnswerKey)
	assert.Equal(t, hearts.DefaultMax, h.State().Current)

	out, err := g.Answer(context.Background(), q, 1, serverSays(service.AnswerResult{Correct: true, CorrectAnswer: 1}))
	require.NoError(t, err)
	assert.True(t, out.Correct)
}

func TestNewGrader_UnknownPolicy(t *testing.T) {
	g, _, _ := newGrader("sometimes")
	assert.Equal(t, config.FallbackLocal, g.Policy())
}

func TestTally(t *testing.T) {
	tests := []struct {
		outcomes []Outcome
		want     int
	}{
		{nil, 0},
		{[]Outcome{{Correct: true}}, 100},
		{[]Outcome{{Correct: true}, {Correct: false}, {Correct: true}}, 67},
		{[]Outcome{{Correct: false}, {Correct: false}}, 0},
	}

	for _, tt := range tests {
		var tally Tally
		for _, o := range tt.outcomes {
			tally.Record(o)
		}
		if got := tally.Score(); got != tt.want {
			t.Errorf("Score() for %d outcomes = %d, want %d", len(tt.outcomes), got, tt.want)
		}
	}
}
