package shop

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/streak"
)

type mockCoins struct{ mock.Mock }

func (m *mockCoins) Earn(ctx context.Context, reason string) (*api.Envelope[service.CoinBalance], error) {
	args := m.Called(ctx, reason)
	env, _ := args.Get(0).(*api.Envelope[service.CoinBalance])
	return env, args.Error(1)
}

func (m *mockCoins) Spend(ctx context.Context, item string, quantity int) (*api.Envelope[service.CoinBalance], error) {
	args := m.Called(ctx, item, quantity)
	env, _ := args.Get(0).(*api.Envelope[service.CoinBalance])
	return env, args.Error(1)
}

type mockHearts struct{ mock.Mock }

func (m *mockHearts) Refill(ctx context.Context, method string) (*api.Envelope[hearts.Status], error) {
	args := m.Called(ctx, method)
	env, _ := args.Get(0).(*api.Envelope[hearts.Status])
	return env, args.Error(1)
}

type mockStreak struct{ mock.Mock }

func (m *mockStreak) UseShield(ctx context.Context) (*api.Envelope[service.Opaque], error) {
	args := m.Called(ctx)
	env, _ := args.Get(0).(*api.Envelope[service.Opaque])
	return env, args.Error(1)
}

type fixture struct {
	shop     *Shop
	coins    *mockCoins
	hearts   *mockHearts
	streaks  *mockStreak
	ledger   *hearts.Store
	progress *progress.Store
	tracker  *streak.Tracker
}

func newFixture() *fixture {
	f := &fixture{
		coins:    &mockCoins{},
		hearts:   &mockHearts{},
		streaks:  &mockStreak{},
		ledger:   hearts.NewStore(hearts.DefaultMax),
		progress: progress.NewStore(),
		tracker:  streak.NewTracker(),
	}
	f.shop = New(Deps{
		Coins:    f.coins,
		Hearts:   f.hearts,
		Streak:   f.streaks,
		Ledger:   f.ledger,
		Progress: f.progress,
		Tracker:  f.tracker,
	})
	return f
}

func balance(n int) *api.Envelope[service.CoinBalance] {
	return &api.Envelope[service.CoinBalance]{Success: true, Data: service.CoinBalance{Balance: &n}}
}

func TestSpend_ServerBalanceWins(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(500)
	f.coins.On("Spend", mock.Anything, "streak_shield", 1).Return(balance(290), nil)

	require.NoError(t, f.shop.Spend(context.Background(), "streak_shield", 1))

	assert.Equal(t, 290, f.progress.State().Coins)
	f.coins.AssertExpectations(t)
}

func TestSpend_FailureKeepsLocalDebit(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(500)
	f.coins.On("Spend", mock.Anything, "hint", 2).Return(nil, &api.ErrTransport{Err: errors.New("offline")})

	require.NoError(t, f.shop.Spend(context.Background(), "hint", 2))

	assert.Equal(t, 300, f.progress.State().Coins)
}

func TestSpend_InsufficientCoins(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(100)

	err := f.shop.Spend(context.Background(), "extra_lesson", 1)

	assert.ErrorIs(t, err, ErrInsufficientCoins)
	assert.Equal(t, 100, f.progress.State().Coins)
	f.coins.AssertNotCalled(t, "Spend", mock.Anything, mock.Anything, mock.Anything)
}

func TestSpend_UnknownItem(t *testing.T) {
	f := newFixture()
	err := f.shop.Spend(context.Background(), "rocket", 1)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestSpend_DoubleTap(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(250)
	f.coins.On("Spend", mock.Anything, "streak_shield", 1).Return(nil, errors.New("offline"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.shop.Spend(context.Background(), "streak_shield", 1)
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if errors.Is(err, ErrInsufficientCoins) {
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one tap must be rejected")
	assert.Equal(t, 50, f.progress.State().Coins)
}

func TestEarn(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(10)
	f.coins.On("Earn", mock.Anything, service.EarnAdWatch).Return(balance(60), nil)

	require.NoError(t, f.shop.Earn(context.Background(), service.EarnAdWatch))
	assert.Equal(t, 60, f.progress.State().Coins)
}

func TestEarn_OnlyDelta(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(10)
	f.coins.On("Earn", mock.Anything, service.EarnDailyCheck).
		Return(&api.Envelope[service.CoinBalance]{Success: true, Data: service.CoinBalance{Earned: 5}}, nil)

	require.NoError(t, f.shop.Earn(context.Background(), service.EarnDailyCheck))
	assert.Equal(t, 15, f.progress.State().Coins)
}

func TestEarn_Failure(t *testing.T) {
	f := newFixture()
	f.progress.SetCoins(10)
	f.coins.On("Earn", mock.Anything, service.EarnAdWatch).Return(nil, &api.ErrAPI{Status: 429, Message: "slow down"})

	err := f.shop.Earn(context.Background(), service.EarnAdWatch)
	var apiErr *api.ErrAPI
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 10, f.progress.State().Coins)
}

func TestRefillHearts(t *testing.T) {
	f := newFixture()
	f.ledger.SetHearts(1, nil)
	f.hearts.On("Refill", mock.Anything, service.RefillCoinFull).
		Return(&api.Envelope[hearts.Status]{Success: true, Data: hearts.Status{CurrentHearts: 5, MaxHearts: 5}}, nil)

	require.NoError(t, f.shop.RefillHearts(context.Background(), service.RefillCoinFull))
	assert.Equal(t, 5, f.ledger.State().Current)
}

func TestRefillHearts_FailureAppliesNothing(t *testing.T) {
	f := newFixture()
	f.ledger.SetHearts(1, nil)
	f.hearts.On("Refill", mock.Anything, service.RefillAd).Return(nil, errors.New("offline"))

	require.Error(t, f.shop.RefillHearts(context.Background(), service.RefillAd))
	assert.Equal(t, 1, f.ledger.State().Current)
}

func TestRefillHearts_UnknownMethod(t *testing.T) {
	f := newFixture()
	require.Error(t, f.shop.RefillHearts(context.Background(), "prayer"))
	f.hearts.AssertNotCalled(t, "Refill", mock.Anything, mock.Anything)
}

func TestUseShield(t *testing.T) {
	f := newFixture()
	f.tracker.Set(streak.Data{CurrentStreak: 9, IsInDanger: true, StreakShields: 1})
	f.streaks.On("UseShield", mock.Anything).Return(&api.Envelope[service.Opaque]{Success: true}, nil)

	require.NoError(t, f.shop.UseShield(context.Background()))
	assert.Equal(t, 0, f.tracker.Data().StreakShields)
	assert.False(t, f.tracker.Data().IsInDanger)
}

func TestUseShield_RestoredOnFailure(t *testing.T) {
	f := newFixture()
	f.tracker.Set(streak.Data{CurrentStreak: 9, IsInDanger: true, StreakShields: 1})
	f.streaks.On("UseShield", mock.Anything).Return(nil, errors.New("offline"))

	require.Error(t, f.shop.UseShield(context.Background()))
	assert.Equal(t, 1, f.tracker.Data().StreakShields)
	assert.True(t, f.tracker.Data().IsInDanger)
}

func TestUseShield_NoneAvailable(t *testing.T) {
	f := newFixture()
	f.tracker.Set(streak.Data{CurrentStreak: 9, IsInDanger: true})

	assert.ErrorIs(t, f.shop.UseShield(context.Background()), ErrNoShield)
	f.streaks.AssertNotCalled(t, "UseShield", mock.Anything)
}

func TestLookup(t *testing.T) {
	it, ok := Lookup("heart_refill")
	require.True(t, ok)
	assert.Equal(t, 350, it.Price)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
