// Package scoreapi is a client for the scoreboard backend's REST contract.
package scoreapi

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

	"github.com/google/go-querystring/query"
	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/pkg/logger"
	"github.com/okian/scoreview/pkg/metrics"
	"go.uber.org/ratelimit"
)

// Endpoint names, also used as metric labels.
const (
	EndpointContests = "contests"
	EndpointConfig   = "config"
	EndpointRank     = "rank"
	EndpointRun      = "run"
	EndpointStat     = "stat"
	EndpointExport   = "export"
	EndpointTrend    = "team-trend"
)

// Client talks to one scoreboard backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	cache   cache.Cache
	log     logger.Logger
	limiter ratelimit.Limiter
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrTransport, baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{},
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Contests lists contests, optionally filtered by name.
func (c *Client) Contests(ctx context.Context, q ContestsQuery) ([]model.Contest, error) {
	return get[[]model.Contest](ctx, c, EndpointContests, "", q)
}

// Config returns the contest configuration, optionally as of t.
func (c *Client) Config(ctx context.Context, path string, t *int64) (model.ContestConfig, error) {
	if err := checkPath(path); err != nil {
		return model.ContestConfig{}, err
	}
	return get[model.ContestConfig](ctx, c, EndpointConfig, path, ConfigQuery{T: t})
}

// Rank returns the ranking snapshot.
func (c *Client) Rank(ctx context.Context, path string, q RankQuery) (model.Rank, error) {
	if err := checkPath(path); err != nil {
		return model.Rank{}, err
	}
	if q.Group == "" {
		q.Group = "all"
	}
	return get[model.Rank](ctx, c, EndpointRank, path, q)
}

// Runs returns one page of submissions.
func (c *Client) Runs(ctx context.Context, path string, q RunQuery) (model.RunPage, error) {
	if err := checkPath(path); err != nil {
		return model.RunPage{}, err
	}
	q.Group = OptionalGroup(q.Group)
	return get[model.RunPage](ctx, c, EndpointRun, path, q)
}

// Stats returns the aggregate statistics.
func (c *Client) Stats(ctx context.Context, path string, q StatQuery) (model.Stat, error) {
	if err := checkPath(path); err != nil {
		return model.Stat{}, err
	}
	q.Group = OptionalGroup(q.Group)
	return get[model.Stat](ctx, c, EndpointStat, path, q)
}

// TeamTrend returns a team's place over time.
func (c *Client) TeamTrend(ctx context.Context, path, teamID string) ([]model.TrendPoint, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return get[[]model.TrendPoint](ctx, c, EndpointTrend, path, TrendQuery{TeamID: teamID})
}

// Uncached returns a client sharing c's transport and rate limit but
// bypassing its response cache.
func (c *Client) Uncached() *Client {
	u := *c
	u.cache = nil
	return &u
}

func checkPath(path string) error {
	if strings.Trim(path, "/") == "" {
		return ErrInvalidPath
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, endpoint, path string, params any) (T, error) {
	var zero T

	u, err := c.url(endpoint, path, params)
	if err != nil {
		return zero, err
	}
	key := endpoint + " " + u
	if c.cache != nil {
		if v, ok := c.cache.Get(ctx, key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}

	body, elapsed, err := c.do(ctx, endpoint, u)
	if err != nil {
		return zero, err
	}

	data, err := unwrap(body)
	if err != nil {
		metrics.RecordAPIRequest(endpoint, outcomeOf(err), elapsed)
		return zero, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		metrics.RecordAPIRequest(endpoint, metrics.OutcomeMalformed, elapsed)
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformed, endpoint, err)
	}
	metrics.RecordAPIRequest(endpoint, metrics.OutcomeOK, elapsed)
	if c.cache != nil {
		c.cache.Set(ctx, key, out)
	}
	return out, nil
}

func (c *Client) url(endpoint, path string, params any) (string, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + endpoint
	if p := strings.Trim(path, "/"); p != "" {
		u.Path += "/" + p
	}
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return "", fmt.Errorf("encode %s query: %w", endpoint, err)
		}
		u.RawQuery = v.Encode()
	}
	return u.String(), nil
}

// open issues a GET and returns the response once its status is known to be 2xx.
// Failures are counted here; callers count the outcome of a successful open.
func (c *Client) open(ctx context.Context, endpoint, u string) (*http.Response, context.CancelFunc, float64, error) {
	if c.limiter != nil {
		c.limiter.Take()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, nil, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		cancel()
		metrics.RecordAPIRequest(endpoint, metrics.OutcomeError, elapsed)
		c.log.Warn(ctx, "backend request failed", logger.String("url", u), logger.Error(err))
		return nil, nil, elapsed, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		cancel()
		metrics.RecordAPIRequest(endpoint, metrics.OutcomeError, elapsed)
		if msg := errorMessage(body); msg != "" {
			return nil, nil, elapsed, fmt.Errorf("%w: %s: %d: %s", ErrStatus, endpoint, resp.StatusCode, msg)
		}
		return nil, nil, elapsed, fmt.Errorf("%w: %s: %d", ErrStatus, endpoint, resp.StatusCode)
	}
	c.log.Debug(ctx, "backend request",
		logger.String("url", u),
		logger.Int("status", resp.StatusCode),
		logger.Float64("ms", elapsed))
	return resp, cancel, elapsed, nil
}

func (c *Client) do(ctx context.Context, endpoint, u string) ([]byte, float64, error) {
	resp, cancel, elapsed, err := c.open(ctx, endpoint, u)
	if err != nil {
		return nil, elapsed, err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPIRequest(endpoint, metrics.OutcomeError, elapsed)
		return nil, elapsed, fmt.Errorf("%w: read %s: %w", ErrTransport, endpoint, err)
	}
	return body, elapsed, nil
}

const maxErrorBody = 4096

type envelope struct {
	Code    *int            `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
}

func (e envelope) message() string {
	for _, m := range []string{e.Error, e.Message, e.Msg} {
		if m != "" {
			return m
		}
	}
	return ""
}

// errorMessage extracts the backend's reason from a failed response body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return ""
	}
	return env.message()
}

// unwrap accepts {code, data} envelopes and bare payloads.
func unwrap(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if body[0] != '{' {
		return body, nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Code == nil {
		return body, nil
	}
	if *env.Code != 0 && *env.Code != 200 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrAPI, *env.Code, env.message())
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: missing data", ErrMalformed)
	}
	return env.Data, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	}
	return metrics.OutcomeError
}
