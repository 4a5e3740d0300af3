// Package shop handles coin purchases, coin rewards, heart refills and
// streak shields. Purchases are serialized so a double-tap cannot spend
// twice against the same balance.
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/logging"
	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/streak"
)

var (
	// ErrInsufficientCoins is returned when the balance cannot cover a purchase.
	ErrInsufficientCoins = errors.New("not enough coins")
	// ErrNoShield is returned when no streak shield can be used.
	ErrNoShield = errors.New("no streak shield available")
	// ErrUnknownItem is returned for items outside the catalog.
	ErrUnknownItem = errors.New("unknown shop item")
)

// Item is something coins can buy.
type Item struct {
	ID    string
	Emoji string
	Name  string
	Desc  string
	Price int
}

// Catalog lists the purchasable items.
var Catalog = []Item{
	{ID: "heart_refill", Emoji: "❤️", Name: "Full heart refill", Desc: "Refill every heart", Price: 350},
	{ID: "streak_shield", Emoji: "🛡️", Name: "Streak shield", Desc: "Keep your streak for a missed day", Price: 200},
	{ID: "xp_boost", Emoji: "⚡", Name: "XP boost", Desc: "Double XP for an hour", Price: 300},
	{ID: "hint", Emoji: "💡", Name: "3 hints", Desc: "Hints for quizzes", Price: 100},
	{ID: "timer_freeze", Emoji: "⏸️", Name: "Timer freeze", Desc: "Five extra seconds on a quiz timer", Price: 50},
	{ID: "extra_lesson", Emoji: "📖", Name: "Bonus lesson", Desc: "Unlock one extra lesson", Price: 500},
}

// Lookup returns the catalog item with id.
func Lookup(id string) (Item, bool) {
	for _, it := range Catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// CoinAPI is the coin endpoints the shop calls.
type CoinAPI interface {
	Earn(ctx context.Context, reason string) (*api.Envelope[service.CoinBalance], error)
	Spend(ctx context.Context, item string, quantity int) (*api.Envelope[service.CoinBalance], error)
}

// HeartAPI is the heart endpoints the shop calls.
type HeartAPI interface {
	Refill(ctx context.Context, method string) (*api.Envelope[hearts.Status], error)
}

// StreakAPI is the streak endpoints the shop calls.
type StreakAPI interface {
	UseShield(ctx context.Context) (*api.Envelope[service.Opaque], error)
}

// Shop applies purchases to the local stores.
type Shop struct {
	coins    CoinAPI
	heartAPI HeartAPI
	streaks  StreakAPI

	hearts   *hearts.Store
	progress *progress.Store
	tracker  *streak.Tracker
	logger   *zap.Logger

	mu sync.Mutex
}

// Deps bundles what a Shop needs.
type Deps struct {
	Coins    CoinAPI
	Hearts   HeartAPI
	Streak   StreakAPI
	Ledger   *hearts.Store
	Progress *progress.Store
	Tracker  *streak.Tracker
	Logger   *zap.Logger
}

// New creates a Shop.
func New(d Deps) *Shop {
	return &Shop{
		coins:    d.Coins,
		heartAPI: d.Hearts,
		streaks:  d.Streak,
		hearts:   d.Ledger,
		progress: d.Progress,
		tracker:  d.Tracker,
		logger:   logging.OrNop(d.Logger).Named("shop"),
	}
}

// Spend buys qty of item. The balance is checked and debited locally
// first; a server balance overrides it on success, while a failed call
// leaves the local debit standing.
func (s *Shop) Spend(ctx context.Context, item string, qty int) error {
	it, ok := Lookup(item)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, item)
	}
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.progress.TrySpend(it.Price * qty) {
		return ErrInsufficientCoins
	}

	env, err := s.coins.Spend(ctx, item, qty)
	if err != nil {
		s.logger.Warn("spend not confirmed, keeping local balance",
			zap.String("item", item), zap.Error(err))
		return nil
	}
	if env != nil {
		s.applyBalance(env.Data)
	}
	return nil
}

// Earn claims a coin reward. The server is authoritative; nothing changes
// locally when the call fails.
func (s *Shop) Earn(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.coins.Earn(ctx, reason)
	if err != nil {
		return fmt.Errorf("earn coins: %w", err)
	}
	if env == nil {
		return nil
	}
	if !s.applyBalance(env.Data) && env.Data.Earned > 0 {
		s.progress.AddCoins(env.Data.Earned)
	}
	return nil
}

// RefillHearts refills hearts by method and applies the server's heart
// snapshot. Nothing is applied when the call fails.
func (s *Shop) RefillHearts(ctx context.Context, method string) error {
	switch method {
	case service.RefillAd, service.RefillCoinSingle, service.RefillCoinFull:
	default:
		return fmt.Errorf("unknown refill method %q", method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.heartAPI.Refill(ctx, method)
	if err != nil {
		return fmt.Errorf("refill hearts: %w", err)
	}
	if env != nil {
		s.hearts.Apply(env.Data)
	}
	return nil
}

// UseShield spends a streak shield. The tracker is updated optimistically
// and restored if the server rejects the shield.
func (s *Shop) UseShield(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.ConsumeShield() {
		return ErrNoShield
	}
	if _, err := s.streaks.UseShield(ctx); err != nil {
		s.tracker.RestoreShield()
		return fmt.Errorf("use shield: %w", err)
	}
	return nil
}

func (s *Shop) applyBalance(b service.CoinBalance) bool {
	v, ok := b.Value()
	if ok {
		s.progress.SetCoins(v)
	}
	return ok
}
