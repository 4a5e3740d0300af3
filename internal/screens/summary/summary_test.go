package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levo/internal/router"
)

func testResult() Result {
	return Result{
		Title:         "Greetings",
		Correct:       4,
		Total:         5,
		Score:         80,
		Duration:      3*time.Minute + 7*time.Second,
		XPEarned:      40,
		CoinsEarned:   10,
		StreakUpdated: true,
		CurrentStreak: 6,
		NewBadges:     1,
		NextUnlocked:  true,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult())
	if s.Title() != "Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testResult()).View(80, 24)
	for _, want := range []string{
		"Greetings complete!",
		"Great job!",
		"Time: 3:07",
		"Correct: 4/5",
		"+40 XP",
		"+10 coins",
		"6 day streak",
		"1 more to reach 7",
		"Next lesson unlocked",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_SyncError(t *testing.T) {
	r := testResult()
	r.SyncErr = "network error"
	if !strings.Contains(New(r).View(80, 24), "Result not saved: network error") {
		t.Error("expected sync error to be shown")
	}
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Perfect!"},
		{80, "Great job!"},
		{50, "Nice work!"},
		{10, "Keep practicing!"},
	}
	for _, tt := range tests {
		if got := Headline(tt.score); got != tt.want {
			t.Errorf("Headline(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter (pop)")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a command on Esc (pop)")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	if hints := New(testResult()).KeyHints(); len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
