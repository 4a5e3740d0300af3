// Package progress tracks the learner's counters: coins, XP, streak and level.
package progress

import "sync"

// State is a snapshot of the counters.
type State struct {
	Coins      int
	XP         int
	StreakDays int
	UserLevel  int
}

// Store holds the progress counters. Every mutation is clamped so that
// coins, XP and streak stay non-negative and the level stays at least 1.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewStore returns an empty Store at level 1.
func NewStore() *Store {
	return &Store{
		state:     State{UserLevel: 1},
		listeners: make(map[int]func(State)),
	}
}

// Set replaces all counters, e.g. from a server snapshot.
func (s *Store) Set(st State) {
	s.Update(func(State) State { return st })
}

// SetCoins overwrites the coin balance.
func (s *Store) SetCoins(coins int) {
	s.Update(func(st State) State {
		st.Coins = coins
		return st
	})
}

// SetXP overwrites the XP total.
func (s *Store) SetXP(xp int) {
	s.Update(func(st State) State {
		st.XP = xp
		return st
	})
}

// SetStreak overwrites the streak length in days.
func (s *Store) SetStreak(days int) {
	s.Update(func(st State) State {
		st.StreakDays = days
		return st
	})
}

// SetUserLevel overwrites the user level.
func (s *Store) SetUserLevel(level int) {
	s.Update(func(st State) State {
		st.UserLevel = level
		return st
	})
}

// AddCoins adds delta (possibly negative) to the balance.
func (s *Store) AddCoins(delta int) {
	s.Update(func(st State) State {
		st.Coins += delta
		return st
	})
}

// AddXP adds delta to the XP total.
func (s *Store) AddXP(delta int) {
	s.Update(func(st State) State {
		st.XP += delta
		return st
	})
}

// TrySpend deducts cost coins if the balance covers it. It reports
// whether the spend happened.
func (s *Store) TrySpend(cost int) bool {
	if cost < 0 {
		return false
	}
	spent := false
	s.Update(func(st State) State {
		if st.Coins >= cost {
			st.Coins -= cost
			spent = true
		}
		return st
	})
	return spent
}

// Update applies fn to the counters under the store lock.
func (s *Store) Update(fn func(State) State) {
	s.mu.Lock()
	s.state = normalize(fn(s.state))
	s.mu.Unlock()

	s.notify()
}

// State returns a snapshot of the counters.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for change notifications and returns a func
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	st := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func normalize(st State) State {
	st.Coins = max(st.Coins, 0)
	st.XP = max(st.XP, 0)
	st.StreakDays = max(st.StreakDays, 0)
	st.UserLevel = max(st.UserLevel, 1)
	return st
}
