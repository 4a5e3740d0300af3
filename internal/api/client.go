// Package api is the HTTP client for the Levo backend. It injects the
// session's bearer token and recovers from an expired access token with a
// single refresh-and-replay.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhisek/levo/internal/logging"
)

// RefreshPath is the token refresh endpoint, relative to the base URL.
const RefreshPath = "/auth/refresh"

// DefaultTimeout bounds every request when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Session is the part of the session store the client needs.
type Session interface {
	AccessToken() string
	RefreshToken() string
	UpdateAccessToken(ctx context.Context, accessToken string, expiresIn int)
	Logout(ctx context.Context)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit caps requests per second. 0 disables limiting.
	RateLimit float64
}

// Client talks to the backend. It is safe for concurrent use. Concurrent
// 401s each run their own refresh; refreshes are not coordinated.
type Client struct {
	baseURL string
	http    *http.Client
	bare    *http.Client
	session Session
	limiter *rate.Limiter
	metrics Recorder
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l).Named("api") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithHTTPClient replaces the HTTP client used for authenticated requests.
// The refresh call always uses a separate bare client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg Config, session Session, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		bare:    &http.Client{Timeout: timeout},
		session: session,
		metrics: nopRecorder{},
		logger:  zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do performs req and returns the validated raw envelope. A success:false
// envelope is returned together with an *ErrAPI.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope[json.RawMessage], error) {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = b
	}

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
	)

	status, raw, err := c.send(ctx, req, body, c.session.AccessToken(), requestID)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, err
	}

	if status == http.StatusUnauthorized {
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			return nil, &ErrUnauthorized{Err: apiError(status, raw)}
		}

		log.Info("access token rejected, refreshing")
		token, expiresIn, rerr := c.refresh(ctx, refreshToken)

		// Session changes must reach the store even when the caller has
		// given up on the request.
		sessionCtx := context.WithoutCancel(ctx)
		if rerr != nil {
			c.metrics.RecordRefresh(RefreshFailed)
			log.Warn("token refresh failed, logging out", zap.Error(rerr))
			c.session.Logout(sessionCtx)
			return nil, &ErrUnauthorized{LoggedOut: true, Err: rerr}
		}
		c.metrics.RecordRefresh(RefreshOK)
		c.session.UpdateAccessToken(sessionCtx, token, expiresIn)

		status, raw, err = c.send(ctx, req, body, token, requestID)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, &ErrUnauthorized{Err: apiError(status, raw)}
		}
	}

	return c.finish(status, raw)
}

// finish turns a status and body into an envelope or a typed error.
func (c *Client) finish(status int, raw []byte) (*Envelope[json.RawMessage], error) {
	if status < 200 || status > 299 {
		return nil, apiError(status, raw)
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return env, &ErrAPI{Status: status, Message: env.Message}
	}
	return env, nil
}

// apiError builds an *ErrAPI, taking the message from the body when it is
// an envelope.
func apiError(status int, raw []byte) *ErrAPI {
	e := &ErrAPI{Status: status}
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &env) == nil {
		e.Message = env.Message
	}
	return e
}

func (c *Client) send(ctx context.Context, req Request, body []byte, token, requestID string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &ErrTransport{Method: req.Method, Path: req.Path, Err: err}
		}
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	c.metrics.RecordLatency(time.Since(start))
	if err != nil {
		c.metrics.RecordTransportError(req.Method)
		return 0, nil, &ErrTransport{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordTransportError(req.Method)
		return 0, nil, &ErrTransport{Method: req.Method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
	}
	c.metrics.RecordRequest(req.Method, resp.StatusCode)
	return resp.StatusCode, raw, nil
}

// refresh exchanges refreshToken for a new access token on the bare
// client: no bearer header and no recursion into the 401 handling.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, int, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		return "", 0, &ErrTransport{Method: http.MethodPost, Path: RefreshPath, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &ErrTransport{Method: http.MethodPost, Path: RefreshPath, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, apiError(resp.StatusCode, raw)
	}

	var env Envelope[struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}]
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", 0, &ErrInvalidEnvelope{Body: raw, Err: err}
	}
	if !env.Success {
		return "", 0, &ErrAPI{Status: resp.StatusCode, Message: env.Message}
	}
	if env.Data.AccessToken == "" {
		return "", 0, errors.New("refresh response carried no access token")
	}
	return env.Data.AccessToken, env.Data.ExpiresIn, nil
}

// Get performs a GET and decodes the envelope's data into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (*Envelope[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST with an optional JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH with a JSON body.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func call[T any](ctx context.Context, c *Client, req Request) (*Envelope[T], error) {
	raw, err := c.Do(ctx, req)
	if raw == nil {
		return nil, err
	}
	env, decErr := decodeEnvelope[T](raw)
	if decErr != nil {
		if err != nil {
			// success:false with undecodable data: keep the envelope head.
			return &Envelope[T]{Success: raw.Success, Message: raw.Message}, err
		}
		return nil, decErr
	}
	return env, err
}
