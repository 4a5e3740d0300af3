// Package fetch wraps an envelope-returning call into an observable
// resource with data, loading and error state.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/abhisek/levo/internal/api"
)

// Fallback error texts.
const (
	ErrRequestFailed = "request failed"
	ErrNetwork       = "network error"
)

// Fetcher performs the call behind a Resource.
type Fetcher[T any] func(ctx context.Context) (*api.Envelope[T], error)

// State is a snapshot of a Resource.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     string
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	immediate bool
}

// Immediate makes Start issue the first fetch.
func Immediate() Option {
	return func(o *options) { o.immediate = true }
}

// Resource holds the latest result of a Fetcher. Only the response to the
// most recently issued call is applied; older ones are dropped.
type Resource[T any] struct {
	fetcher Fetcher[T]
	opts    options

	mu        sync.Mutex
	seq       uint64
	state     State[T]
	listeners map[int]func(State[T])
	nextID    int
}

// New creates a Resource for fetcher.
func New[T any](fetcher Fetcher[T], opts ...Option) *Resource[T] {
	r := &Resource[T]{
		fetcher:   fetcher,
		listeners: make(map[int]func(State[T])),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	if r.opts.immediate {
		r.state.Loading = true
	}
	return r
}

// Start runs the first fetch when the Resource was created Immediate.
func (r *Resource[T]) Start(ctx context.Context) State[T] {
	if !r.opts.immediate {
		return r.State()
	}
	return r.Refetch(ctx)
}

// Refetch calls the fetcher and replaces the state with its outcome. It
// returns the state after the call; when a newer call was issued in the
// meantime that newer call's state is left untouched.
func (r *Resource[T]) Refetch(ctx context.Context) State[T] {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.state.Loading = true
	r.state.Err = ""
	r.mu.Unlock()
	r.notify()

	env, err := r.fetcher(ctx)
	next := resolve(env, err)

	r.mu.Lock()
	if seq != r.seq {
		st := r.state
		r.mu.Unlock()
		return st
	}
	r.state = next
	r.mu.Unlock()
	r.notify()
	return next
}

func resolve[T any](env *api.Envelope[T], err error) State[T] {
	switch {
	case env != nil && !env.Success:
		msg := env.Message
		if msg == "" {
			msg = ErrRequestFailed
		}
		return State[T]{Err: msg}
	case err != nil:
		msg := api.Message(err)
		if msg == "" {
			msg = fallbackMessage(err)
		}
		return State[T]{Err: msg}
	case env == nil:
		return State[T]{Err: ErrRequestFailed}
	default:
		data := env.Data
		return State[T]{Data: &data}
	}
}

// fallbackMessage names an error that carried no text. Only a request
// that never got a response is a network error.
func fallbackMessage(err error) string {
	var transportErr *api.ErrTransport
	if errors.As(err, &transportErr) {
		return ErrNetwork
	}
	var apiErr *api.ErrAPI
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		if text := http.StatusText(apiErr.Status); text != "" {
			return text
		}
	}
	return ErrRequestFailed
}

// State returns the current snapshot.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for state changes and returns a func that
// removes it.
func (r *Resource[T]) Subscribe(fn func(State[T])) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Resource[T]) notify() {
	r.mu.Lock()
	st := r.state
	fns := make([]func(State[T]), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
