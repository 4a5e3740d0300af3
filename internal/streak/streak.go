// Package streak tracks the daily learning streak and its shields.
package streak

import "sync"

// Milestones are the fixed streak targets. Past the last one a milestone
// falls every MilestoneStep days.
var Milestones = []int{3, 7, 14, 30, 50, 100}

// MilestoneStep is the spacing of milestones beyond the fixed list.
const MilestoneStep = 50

// Day is one entry of the weekly record.
type Day struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
	Minutes   int    `json:"minutes"`
}

// Milestone is the next streak target.
type Milestone struct {
	Target    int `json:"target"`
	Remaining int `json:"remaining"`
}

// Data is the server's /streak payload.
type Data struct {
	CurrentStreak   int       `json:"currentStreak"`
	LongestStreak   int       `json:"longestStreak"`
	TodayCompleted  bool      `json:"todayCompleted"`
	WeeklyRecord    []Day     `json:"weeklyRecord"`
	StreakShields   int       `json:"streakShields"`
	NextMilestone   Milestone `json:"nextMilestone"`
	IsInDanger      bool      `json:"isInDanger"`
	HoursUntilReset int       `json:"hoursUntilReset"`
}

// NextMilestone returns the next milestone strictly above current.
func NextMilestone(current int) int {
	for _, m := range Milestones {
		if m > current {
			return m
		}
	}
	return ((current / MilestoneStep) + 1) * MilestoneStep
}

// Tracker holds the last known streak.
type Tracker struct {
	mu   sync.Mutex
	data Data
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set stores a server snapshot, filling in the milestone when the server
// left it empty.
func (t *Tracker) Set(d Data) {
	if d.NextMilestone.Target <= d.CurrentStreak {
		target := NextMilestone(d.CurrentStreak)
		d.NextMilestone = Milestone{Target: target, Remaining: target - d.CurrentStreak}
	}
	d.WeeklyRecord = append([]Day(nil), d.WeeklyRecord...)

	t.mu.Lock()
	t.data = d
	t.mu.Unlock()
}

// Data returns a copy of the last snapshot.
func (t *Tracker) Data() Data {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.data
	d.WeeklyRecord = append([]Day(nil), d.WeeklyRecord...)
	return d
}

// CanShield reports whether a shield would save the streak now.
func (t *Tracker) CanShield() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.IsInDanger && !t.data.TodayCompleted && t.data.StreakShields > 0
}

// ConsumeShield optimistically spends one shield and clears the danger
// flag. It returns false when no shield can be used.
func (t *Tracker) ConsumeShield() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.data.IsInDanger || t.data.TodayCompleted || t.data.StreakShields <= 0 {
		return false
	}
	t.data.StreakShields--
	t.data.IsInDanger = false
	return true
}

// RestoreShield undoes ConsumeShield after a failed server call.
func (t *Tracker) RestoreShield() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.StreakShields++
	t.data.IsInDanger = true
}
