package progress

import (
	"sync"
	"testing"
)

func TestNewStore(t *testing.T) {
	st := NewStore().State()
	if st != (State{UserLevel: 1}) {
		t.Errorf("state = %+v, want zero counters at level 1", st)
	}
}

func TestNormalize(t *testing.T) {
	s := NewStore()
	s.Set(State{Coins: -5, XP: -1, StreakDays: -2, UserLevel: 0})

	st := s.State()
	if st.Coins != 0 || st.XP != 0 || st.StreakDays != 0 {
		t.Errorf("counters = %+v, want non-negative", st)
	}
	if st.UserLevel != 1 {
		t.Errorf("UserLevel = %d, want 1", st.UserLevel)
	}
}

func TestAddCoins_ClampsAtZero(t *testing.T) {
	s := NewStore()
	s.SetCoins(30)
	s.AddCoins(-50)
	if got := s.State().Coins; got != 0 {
		t.Errorf("Coins = %d, want 0", got)
	}
}

func TestTrySpend(t *testing.T) {
	tests := []struct {
		balance   int
		cost      int
		wantOK    bool
		wantAfter int
	}{
		{100, 30, true, 70},
		{30, 30, true, 0},
		{20, 30, false, 20},
		{0, 0, true, 0},
		{10, -5, false, 10},
	}

	for _, tt := range tests {
		s := NewStore()
		s.SetCoins(tt.balance)
		ok := s.TrySpend(tt.cost)
		if ok != tt.wantOK {
			t.Errorf("TrySpend(%d) with %d = %v, want %v", tt.cost, tt.balance, ok, tt.wantOK)
		}
		if got := s.State().Coins; got != tt.wantAfter {
			t.Errorf("TrySpend(%d) with %d: Coins = %d, want %d", tt.cost, tt.balance, got, tt.wantAfter)
		}
	}
}

func TestTrySpend_Concurrent(t *testing.T) {
	s := NewStore()
	s.SetCoins(100)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		spent int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TrySpend(10) {
				mu.Lock()
				spent++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if spent != 10 {
		t.Errorf("successful spends = %d, want 10", spent)
	}
	if got := s.State().Coins; got != 0 {
		t.Errorf("Coins = %d, want 0", got)
	}
}

func TestAddXP(t *testing.T) {
	s := NewStore()
	s.AddXP(15)
	s.AddXP(10)
	if got := s.State().XP; got != 25 {
		t.Errorf("XP = %d, want 25", got)
	}
}

func TestSetters(t *testing.T) {
	s := NewStore()
	s.SetStreak(7)
	s.SetUserLevel(4)
	s.SetXP(900)

	st := s.State()
	if st.StreakDays != 7 || st.UserLevel != 4 || st.XP != 900 {
		t.Errorf("state = %+v", st)
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	var last State
	calls := 0
	unsubscribe := s.Subscribe(func(st State) {
		calls++
		last = st
	})

	s.AddCoins(5)
	unsubscribe()
	s.AddCoins(5)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if last.Coins != 5 {
		t.Errorf("last.Coins = %d, want 5", last.Coins)
	}
}
