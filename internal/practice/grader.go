// Package practice grades answers against the server, falling back to the
// locally known correct answer according to the configured policy.
package practice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/config"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/logging"
	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
)

var (
	// ErrNoHearts is returned when a non-premium learner has no hearts left.
	ErrNoHearts = errors.New("no hearts left")

	// ErrNoAnswerKey is returned when an answer can only be graded by the
	// server and the server did not grade it.
	ErrNoAnswerKey = errors.New("no answer key")
)

// Source says who graded an answer.
type Source string

const (
	SourceServer Source = "server"
	SourceLocal  Source = "local"
)

// Remote submits an answer to the server grader.
type Remote func(ctx context.Context, selected int) (*api.Envelope[service.AnswerResult], error)

// Outcome is a graded answer.
type Outcome struct {
	Correct      bool
	CorrectIndex int
	Explanation  string
	XPEarned     int
	Source       Source
}

// Grader grades multiple-choice answers and keeps the heart ledger and
// progress counters in step.
type Grader struct {
	hearts   *hearts.Store
	progress *progress.Store
	policy   config.AnswerFallback
	logger   *zap.Logger
}

// NewGrader creates a Grader. An unknown policy behaves as FallbackLocal.
func NewGrader(h *hearts.Store, p *progress.Store, policy config.AnswerFallback, logger *zap.Logger) *Grader {
	if policy != config.FallbackNone {
		policy = config.FallbackLocal
	}
	return &Grader{
		hearts:   h,
		progress: p,
		policy:   policy,
		logger:   logging.OrNop(logger).Named("practice"),
	}
}

// Policy returns the effective fallback policy.
func (g *Grader) Policy() config.AnswerFallback {
	return g.policy
}

// Answer grades selected for q. With a nil remote the answer is graded
// locally. When the remote call fails the fallback policy decides between
// local grading and returning the error ungraded.
func (g *Grader) Answer(ctx context.Context, q service.Question, selected int, remote Remote) (Outcome, error) {
	if selected < 0 || selected >= len(q.Options) {
		return Outcome{}, fmt.Errorf("answer %d out of range [0, %d)", selected, len(q.Options))
	}
	if g.hearts.Depleted() {
		return Outcome{}, ErrNoHearts
	}

	key, known := q.AnswerKey()
	if remote == nil {
		if !known {
			return Outcome{}, fmt.Errorf("grade answer: %w", ErrNoAnswerKey)
		}
		return g.gradeLocal(q, key, selected), nil
	}

	env, err := remote(ctx, selected)
	if err == nil && env != nil && env.Success {
		return g.applyServer(env.Data), nil
	}
	if err == nil {
		err = &api.ErrAPI{Message: "answer not confirmed"}
	}

	if g.policy == config.FallbackNone || !known {
		return Outcome{}, fmt.Errorf("grade answer: %w", err)
	}
	g.logger.Info("server grading failed, grading locally", zap.Error(err))
	return g.gradeLocal(q, key, selected), nil
}

func (g *Grader) applyServer(res service.AnswerResult) Outcome {
	switch {
	case res.HeartsRemaining != nil:
		remaining := *res.HeartsRemaining
		g.hearts.Update(func(st hearts.State) hearts.State {
			st.Current = remaining
			return st
		})
	case !res.Correct:
		g.hearts.UseHeart()
	}
	if res.XPEarned > 0 {
		g.progress.AddXP(res.XPEarned)
	}
	return Outcome{
		Correct:      res.Correct,
		CorrectIndex: res.CorrectAnswer,
		Explanation:  res.Explanation,
		XPEarned:     res.XPEarned,
		Source:       SourceServer,
	}
}

func (g *Grader) gradeLocal(q service.Question, key, selected int) Outcome {
	correct := selected == key
	if !correct {
		g.hearts.UseHeart()
	}
	return Outcome{
		Correct:      correct,
		CorrectIndex: key,
		Explanation:  q.Explanation,
		Source:       SourceLocal,
	}
}

// Tally accumulates a practice run.
type Tally struct {
	Correct int
	Total   int
	XP      int
}

// Record adds o to the tally.
func (t *Tally) Record(o Outcome) {
	t.Total++
	if o.Correct {
		t.Correct++
	}
	t.XP += o.XPEarned
}

// Score is the rounded percentage of correct answers.
func (t Tally) Score() int {
	if t.Total == 0 {
		return 0
	}
	return (t.Correct*100 + t.Total/2) / t.Total
}
