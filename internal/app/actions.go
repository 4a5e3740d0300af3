package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/streak"
)

// Login signs in with the development email login and activates the
// session. The counters carried by the response seed the local stores.
func (a *App) Login(ctx context.Context, email, name string) error {
	env, err := a.Services.Auth.DevLogin(ctx, email, name)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	res := env.Data
	if res.Tokens.AccessToken == "" {
		return errors.New("login: response carried no access token")
	}

	a.Session.SetAuthenticated(ctx, res.User, res.Tokens, res.LanguageProfile)
	a.seed(a.Session.State())
	a.Logger.Info("signed in", zap.String("user", res.User.ID))
	return nil
}

// Logout tells the backend (best effort) and clears local state. It never
// fails: the local session is gone either way.
func (a *App) Logout(ctx context.Context) {
	if a.Session.IsAuthenticated() {
		if _, err := a.Services.Auth.Logout(ctx); err != nil {
			a.Logger.Warn("logout not confirmed by server", zap.Error(err))
		}
	}
	a.Session.Logout(ctx)
	a.Hearts.RefillAll()
	a.Hearts.SetPremium(false)
	a.Progress.Set(progress.State{UserLevel: 1})
	a.Streak.Set(streak.Data{})
}

// Sync pulls hearts, coins, streak and the profile from the server into
// the local stores. Sources are fetched independently and failures joined,
// except that a lost session stops the sync at once.
func (a *App) Sync(ctx context.Context) error {
	var errs []error

	env, err := a.Services.Hearts.Get(ctx)
	if err != nil {
		if a.SessionLost(err) {
			return fmt.Errorf("hearts: %w", err)
		}
		errs = append(errs, fmt.Errorf("hearts: %w", err))
	} else {
		a.Hearts.Apply(env.Data)
	}

	if err := a.RefreshCoins(ctx); err != nil {
		errs = append(errs, err)
	}

	if env, err := a.Services.Streak.Get(ctx); err != nil {
		errs = append(errs, fmt.Errorf("streak: %w", err))
	} else {
		a.Streak.Set(env.Data)
		a.Progress.SetStreak(env.Data.CurrentStreak)
	}

	if env, err := a.Services.Users.Me(ctx); err != nil {
		errs = append(errs, fmt.Errorf("profile: %w", err))
	} else {
		a.Session.SetUser(env.Data.User)
		if env.Data.LanguageProfile != nil {
			a.Session.SetLanguageProfile(*env.Data.LanguageProfile)
			a.Progress.Update(func(p progress.State) progress.State {
				p.XP = env.Data.LanguageProfile.XP
				if env.Data.LanguageProfile.UserLevel > 0 {
					p.UserLevel = env.Data.LanguageProfile.UserLevel
				}
				return p
			})
		}
	}

	// Subscription status only refines the premium flag the hearts
	// payload already carries.
	if _, err := a.RefreshSubscription(ctx); err != nil {
		a.Logger.Warn("subscription status unavailable", zap.Error(err))
	}

	return errors.Join(errs...)
}

// RefreshSubscription reloads the subscription and applies its premium
// flag to the hearts store.
func (a *App) RefreshSubscription(ctx context.Context) (service.SubscriptionInfo, error) {
	env, err := a.Services.Subscription.Get(ctx)
	if err != nil {
		return service.SubscriptionInfo{}, fmt.Errorf("subscription: %w", err)
	}
	a.Hearts.SetPremium(env.Data.IsPremium)
	return env.Data, nil
}

// RefreshCoins reloads the coin balance.
func (a *App) RefreshCoins(ctx context.Context) error {
	env, err := a.Services.Coins.Get(ctx)
	if err != nil {
		return fmt.Errorf("coins: %w", err)
	}
	if v, ok := env.Data.Value(); ok {
		a.Progress.SetCoins(v)
	}
	return nil
}
