// Package client talks to the API from Go programs: a thin fasthttp transport, cached
// collections per resource, and a Store that keeps them in step with the signed-in
// session. Payloads are validated with the same rules the server applies, so most
// mistakes never leave the process.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/trentd187/golf-match-tracker/internal/session"
)

// DefaultTimeout applies to requests whose context carries no deadline.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the {error, details} envelope.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fasthttp.StatusNotFound
}

// Client sends authenticated requests to one API base URL, e.g.
// "http://localhost:8080/api/v1".
type Client struct {
	baseURL string
	http    *fasthttp.Client
	session *session.Watcher
	timeout time.Duration
}

// New creates a Client. The bearer token is read from watcher on every request, so a
// sign-in or sign-out takes effect immediately. A nil watcher sends no token.
func New(baseURL string, watcher *session.Watcher) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         DefaultTimeout,
			WriteTimeout:        DefaultTimeout,
			MaxIdleConnDuration: time.Minute,
		},
		session: watcher,
		timeout: DefaultTimeout,
	}
}

type envelope[T any] struct {
	Data    T        `json:"data"`
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// do sends one request and decodes the {data} envelope into T. A 204 yields T's zero
// value.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
		}
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return zero, fmt.Errorf("client: %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusNoContent {
		return zero, nil
	}

	var env envelope[T]
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil && status < 300 {
			return zero, fmt.Errorf("client: decode %s %s: %w", method, path, err)
		}
	}
	if status < 200 || status >= 300 {
		msg := env.Error
		if msg == "" {
			msg = fasthttp.StatusMessage(status)
		}
		return zero, &APIError{Status: status, Message: msg, Details: env.Details}
	}
	return env.Data, nil
}
