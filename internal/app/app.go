// Package app builds the client's stores and services once per process
// and hands them to the TUI and CLI commands.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/config"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/logging"
	"github.com/abhisek/levo/internal/practice"
	"github.com/abhisek/levo/internal/progress"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/session"
	"github.com/abhisek/levo/internal/shop"
	"github.com/abhisek/levo/internal/store"
	"github.com/abhisek/levo/internal/streak"
)

// App holds every long-lived component. Nothing here is a package-level
// singleton; tests build as many Apps as they like.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry

	Session  *session.Store
	Hearts   *hearts.Store
	Progress *progress.Store
	Streak   *streak.Tracker

	Client   *api.Client
	Services *service.Services
	Grader   *practice.Grader
	Shop     *shop.Shop

	db *store.Store
}

type options struct {
	httpClient *http.Client
	kv         session.KV
}

// Option customizes New.
type Option func(*options)

// WithHTTPClient overrides the transport used for API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithKV replaces the encrypted SQLite store with kv.
func WithKV(kv session.KV) Option {
	return func(o *options) { o.kv = kv }
}

// New opens the local store, restores any saved session and wires the
// API client, services, grader and shop.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.OrNop(logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Hearts:   hearts.NewStore(cfg.MaxHearts),
		Progress: progress.NewStore(),
		Streak:   streak.NewTracker(),
	}

	kv := o.kv
	if kv == nil {
		db, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		kv = db
	}
	a.Session = session.NewStore(kv, logger)

	clientOpts := []api.Option{
		api.WithLogger(logger),
		api.WithMetrics(api.NewCollector(a.Registry)),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	a.Client = api.NewClient(api.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
	}, a.Session, clientOpts...)
	a.Services = service.New(a.Client)

	a.Grader = practice.NewGrader(a.Hearts, a.Progress, cfg.AnswerFallback, logger)
	a.Shop = shop.New(shop.Deps{
		Coins:    a.Services.Coins,
		Hearts:   a.Services.Hearts,
		Streak:   a.Services.Streak,
		Ledger:   a.Hearts,
		Progress: a.Progress,
		Tracker:  a.Streak,
		Logger:   logger,
	})

	if a.Session.RestoreSession(ctx) {
		a.seed(a.Session.State())
		logger.Debug("session restored")
	}
	return a, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}

	secret := []byte(cfg.StoreSecret)
	if len(secret) == 0 {
		s, err := store.LoadOrCreateSecret(store.SecretPath(path))
		if err != nil {
			return nil, fmt.Errorf("load store key: %w", err)
		}
		secret = s
	}

	db, err := store.Open(path, secret)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

// Close releases the local store.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Authenticated reports whether a session is active.
func (a *App) Authenticated() bool {
	return a.Session.IsAuthenticated()
}

// SessionLost reports whether err ended the session, i.e. a token refresh
// failed and the session store was cleared.
func (a *App) SessionLost(err error) bool {
	return api.IsUnauthorized(err) && !a.Session.IsAuthenticated()
}

// seed copies the counters carried by the user and profile into the
// local stores.
func (a *App) seed(st session.State) {
	if st.User != nil {
		a.Progress.SetCoins(st.User.Coins)
		a.Hearts.SetPremium(st.User.IsPremium)
	}
	if st.Profile != nil {
		a.Progress.Update(func(p progress.State) progress.State {
			p.XP = st.Profile.XP
			if st.Profile.UserLevel > 0 {
				p.UserLevel = st.Profile.UserLevel
			}
			return p
		})
		// Zero also means "not reported"; Sync fetches the real ledger.
		if st.Profile.Hearts > 0 {
			a.Hearts.SetHearts(st.Profile.Hearts, nil)
		}
	}
}
