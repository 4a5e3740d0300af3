// Package apptest builds an app.App against an in-process fake backend.
package apptest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/config"
	"github.com/abhisek/levo/internal/session"
)

// Backend is a fake Levo API. Routes are keyed by "METHOD /path";
// unknown routes answer 404 with a failure envelope.
type Backend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	bodies map[string][]json.RawMessage
}

// NewBackend starts a Backend that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
		bodies: make(map[string][]json.RawMessage),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	var body json.RawMessage
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	b.mu.Lock()
	b.calls[key]++
	if body != nil {
		b.bodies[key] = append(b.bodies[key], body)
	}
	h, ok := b.routes[key]
	b.mu.Unlock()

	if !ok {
		WriteEnvelope(w, http.StatusNotFound, false, nil, "not found: "+key)
		return
	}
	h(w, r)
}

// Handle registers h for method and path.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// OK answers method and path with a success envelope carrying data.
func (b *Backend) OK(method, path string, data any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, http.StatusOK, true, data, "")
	})
}

// Fail answers method and path with a failure envelope.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, status, false, nil, message)
	})
}

// Calls returns how often method and path were hit.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// Bodies returns the JSON bodies received on method and path.
func (b *Backend) Bodies(method, path string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]json.RawMessage(nil), b.bodies[method+" "+path]...)
}

// Config returns a valid config pointing at the backend.
func (b *Backend) Config() config.Config {
	cfg := config.DefaultConfig()
	cfg.APIURL = b.URL
	return cfg
}

// WriteEnvelope writes a response envelope.
func WriteEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	env := map[string]any{"success": success}
	if data != nil {
		env["data"] = data
	}
	if message != "" {
		env["message"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// New builds an App on b with an in-memory KV.
func New(t testing.TB, b *Backend, opts ...app.Option) *app.App {
	t.Helper()
	opts = append([]app.Option{app.WithKV(NewMemKV())}, opts...)
	a, err := app.New(context.Background(), b.Config(), nil, opts...)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// SignIn activates a session without a login round trip.
func SignIn(a *app.App) {
	a.Session.SetAuthenticated(context.Background(),
		session.User{ID: "u1", Email: "mina@example.com", Name: "Mina"},
		session.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 900},
		&session.LanguageProfile{TargetLanguage: "en", Level: "beginner", UserLevel: 1},
	)
}

// MemKV is an in-memory session.KV.
type MemKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemKV returns an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string][]byte)}
}

func (kv *MemKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = append([]byte(nil), value...)
	return nil
}

func (kv *MemKV) Delete(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, k := range keys {
		delete(kv.m, k)
	}
	return nil
}
