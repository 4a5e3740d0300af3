// Package hearts holds the bounded heart ledger that gates practice.
package hearts

import "sync"

// DefaultMax is the heart capacity when none is configured.
const DefaultMax = 5

// State is a snapshot of the ledger. Current is always within [0, Max].
type State struct {
	Current int
	Max     int
	Premium bool

	// NextRefill is the server's opaque "time until next heart" string.
	NextRefill *string
}

// Status is the server's /hearts payload.
type Status struct {
	CurrentHearts       int    `json:"currentHearts"`
	MaxHearts           int    `json:"maxHearts"`
	TimeUntilNextRefill string `json:"timeUntilNextRefill,omitempty"`
	TimeUntilFullRefill string `json:"timeUntilFullRefill,omitempty"`
	IsPremium           bool   `json:"isPremium"`
}

// Store is the heart ledger. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewStore returns a full ledger with the given capacity. A non-positive
// capacity falls back to DefaultMax.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultMax
	}
	return &Store{
		state:     State{Current: capacity, Max: capacity},
		listeners: make(map[int]func(State)),
	}
}

// UseHeart consumes one heart for a wrong answer. It returns false only
// when the ledger is empty; premium users never lose hearts.
func (s *Store) UseHeart() bool {
	s.mu.Lock()
	if s.state.Premium {
		s.mu.Unlock()
		return true
	}
	if s.state.Current <= 0 {
		s.mu.Unlock()
		return false
	}
	s.state.Current--
	s.mu.Unlock()

	s.notify()
	return true
}

// SetHearts overwrites the ledger from a server response.
func (s *Store) SetHearts(current int, nextRefill *string) {
	s.Update(func(st State) State {
		st.Current = current
		st.NextRefill = copyString(nextRefill)
		return st
	})
}

// Apply reconciles the ledger with a full server status.
func (s *Store) Apply(status Status) {
	s.Update(func(st State) State {
		if status.MaxHearts > 0 {
			st.Max = status.MaxHearts
		}
		st.Current = status.CurrentHearts
		st.Premium = status.IsPremium
		st.NextRefill = nil
		if status.TimeUntilNextRefill != "" {
			eta := status.TimeUntilNextRefill
			st.NextRefill = &eta
		}
		return st
	})
}

// RefillAll restores the ledger to capacity and clears the refill ETA.
func (s *Store) RefillAll() {
	s.Update(func(st State) State {
		st.Current = st.Max
		st.NextRefill = nil
		return st
	})
}

// SetPremium toggles unlimited hearts.
func (s *Store) SetPremium(premium bool) {
	s.Update(func(st State) State {
		st.Premium = premium
		return st
	})
}

// Update applies fn to the current state atomically. The result is
// clamped so Current stays within [0, Max].
func (s *Store) Update(fn func(State) State) {
	s.mu.Lock()
	next := fn(s.state.clone())
	if next.Max <= 0 {
		next.Max = s.state.Max
	}
	next.Current = clamp(next.Current, 0, next.Max)
	s.state = next
	s.mu.Unlock()

	s.notify()
}

// State returns a snapshot of the ledger.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Depleted reports whether a non-premium ledger is empty.
func (s *Store) Depleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.Premium && s.state.Current <= 0
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
	st := s.state.clone()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (st State) clone() State {
	st.NextRefill = copyString(st.NextRefill)
	return st
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
