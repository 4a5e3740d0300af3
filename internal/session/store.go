package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/logging"
)

// Persisted keys in the secure store.
const (
	TokenKey   = "levo_tokens"
	UserKey    = "levo_user"
	ProfileKey = "levo_profile"
)

// KV is the secure key/value storage the session persists into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store holds the authenticated session. Storage failures are logged and
// swallowed: the store falls back to logged-out rather than a partial
// session.
type Store struct {
	kv     KV
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewStore creates an unauthenticated Store in the loading state.
func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{
		kv:        kv,
		logger:    logging.OrNop(logger).Named("session"),
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
	}
}

// RestoreSession loads the persisted session. It returns true only when
// both tokens and user were found and decoded.
func (s *Store) RestoreSession(ctx context.Context) bool {
	restored, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to restore session", zap.Error(err))
	}

	s.mu.Lock()
	if restored != nil {
		s.state = *restored
	} else {
		s.state = State{}
	}
	s.mu.Unlock()

	s.notify()
	return restored != nil
}

func (s *Store) load(ctx context.Context) (*State, error) {
	tokensJSON, okTokens, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return nil, err
	}
	userJSON, okUser, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, err
	}
	profileJSON, okProfile, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		return nil, err
	}
	if !okTokens || !okUser {
		return nil, nil
	}

	var tokens Tokens
	if err := json.Unmarshal(tokensJSON, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, err
	}

	st := &State{User: &user, Tokens: &tokens}
	if okProfile {
		var profile LanguageProfile
		if err := json.Unmarshal(profileJSON, &profile); err != nil {
			return nil, err
		}
		st.Profile = &profile
	}
	return st, nil
}

// SetAuthenticated persists and activates a session. A nil profile
// removes any previously persisted profile.
func (s *Store) SetAuthenticated(ctx context.Context, user User, tokens Tokens, profile *LanguageProfile) {
	if err := s.persist(ctx, &user, &tokens, profile); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}

	st := State{User: &user, Tokens: &tokens}
	if profile != nil {
		p := *profile
		st.Profile = &p
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.notify()
}

func (s *Store) persist(ctx context.Context, user *User, tokens *Tokens, profile *LanguageProfile) error {
	if tokens != nil {
		if err := s.setJSON(ctx, TokenKey, tokens); err != nil {
			return err
		}
	}
	if user != nil {
		if err := s.setJSON(ctx, UserKey, user); err != nil {
			return err
		}
	}
	if profile != nil {
		return s.setJSON(ctx, ProfileKey, profile)
	}
	return s.kv.Delete(ctx, ProfileKey)
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, b)
}

// UpdateAccessToken swaps in a refreshed access token, keeping the
// refresh token, and re-persists the tokens.
func (s *Store) UpdateAccessToken(ctx context.Context, accessToken string, expiresIn int) {
	s.mu.Lock()
	if s.state.Tokens == nil {
		s.mu.Unlock()
		return
	}
	tokens := *s.state.Tokens
	tokens.AccessToken = accessToken
	if expiresIn > 0 {
		tokens.ExpiresIn = expiresIn
	}
	s.state.Tokens = &tokens
	s.mu.Unlock()

	if err := s.setJSON(ctx, TokenKey, tokens); err != nil {
		s.logger.Warn("failed to persist refreshed token", zap.Error(err))
	}
	s.notify()
}

// Logout clears the persisted and in-memory session.
func (s *Store) Logout(ctx context.Context) {
	if err := s.kv.Delete(ctx, TokenKey, UserKey, ProfileKey); err != nil {
		s.logger.Warn("failed to clear session", zap.Error(err))
	}

	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	s.notify()
}

// SetUser replaces the in-memory user without persisting.
func (s *Store) SetUser(user User) {
	s.mu.Lock()
	s.state.User = &user
	s.mu.Unlock()
	s.notify()
}

// SetLanguageProfile replaces the in-memory profile without persisting.
func (s *Store) SetLanguageProfile(profile LanguageProfile) {
	s.mu.Lock()
	s.state.Profile = &profile
	s.mu.Unlock()
	s.notify()
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Tokens returns a copy of the held tokens, or nil.
func (s *Store) Tokens() *Tokens {
	return s.State().Tokens
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *User {
	return s.State().User
}

// Profile returns a copy of the active language profile, or nil.
func (s *Store) Profile() *LanguageProfile {
	return s.State().Profile
}

// Loading reports whether the first restore has not completed yet.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// IsAuthenticated reports whether an access token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated()
}

// AccessToken returns the current access token, or "".
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Tokens == nil {
		return ""
	}
	return s.state.Tokens.AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Tokens == nil {
		return ""
	}
	return s.state.Tokens.RefreshToken
}

// Subscribe registers fn to receive a copy of the state after every change.
// The returned func removes the listener.
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
