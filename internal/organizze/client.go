// Package organizze is the HTTP client for the Organizze REST API v2, the
// external system of record for accounts, transactions, categories, credit
// cards, budgets and invoices.
//
// The client converts the API's loosely-typed cents payloads into the typed
// entities of internal/domain at this boundary. Every call goes through a
// circuit breaker so a flapping ledger trips fast instead of piling up
// timeouts; retries are deliberately not implemented here.
package organizze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	defaultBaseURL = "https://api.organizze.com.br/rest/v2"
	userAgent      = "finance-assistant/1.0 (bot@dvloznov.dev)"

	categoryCacheKey = "categories"
	categoryCacheTTL = 5 * time.Minute
)

// ErrAuth indicates the ledger rejected the configured credentials.
var ErrAuth = errors.New("organizze: invalid credentials")

// ValidationError carries per-field messages from a 422 response.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("organizze: validation failed: %v", e.Errors)
}

// Config holds the client credentials and tuning knobs.
type Config struct {
	BaseURL string // defaults to the public API endpoint
	Email   string
	Token   string
	Timeout time.Duration // per-request timeout, defaults to 30s
}

// Client is a typed Organizze API client. Safe for concurrent use.
type Client struct {
	baseURL string
	email   string
	token   string
	httpc   *http.Client
	cb      *gobreaker.CircuitBreaker
	cache   *gocache.Cache
	log     zerolog.Logger
}

// New creates a new client. The category list is cached briefly because it
// changes rarely and is fetched on every inbound message.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Email == "" || cfg.Token == "" {
		return nil, fmt.Errorf("organizze: email and API token are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "organizze",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Ledger circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: baseURL,
		email:   cfg.Email,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		cb:      cb,
		cache:   gocache.New(categoryCacheTTL, 10*time.Minute),
		log:     log,
	}, nil
}

// do performs one API request through the circuit breaker and decodes the
// response into out (which may be nil for requests without a body of
// interest). A 401 maps to ErrAuth and a 422 to *ValidationError; auth and
// validation failures do not count against the breaker.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) error {
	// Auth and validation failures ride through as result values so they do
	// not count against the breaker: they are caller problems, not outages.
	res, err := c.cb.Execute(func() (interface{}, error) {
		err := c.doOnce(ctx, method, endpoint, query, body, out)
		if errors.Is(err, ErrAuth) {
			return err, nil
		}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return err, nil
		}
		return nil, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("organizze: circuit open for %s %s: %w", method, endpoint, err)
		}
		return err
	}
	if softErr, ok := res.(error); ok {
		return softErr
	}
	return nil
}

// doOnce performs the raw HTTP exchange.
func (c *Client) doOnce(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) error {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("organizze: encoding %s %s body: %w", method, endpoint, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("organizze: building request %s %s: %w", method, endpoint, err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("organizze: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("Ledger request")

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("organizze: decoding %s %s response: %w", method, endpoint, err)
		}
		return nil

	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuth

	case resp.StatusCode == http.StatusUnprocessableEntity:
		var payload struct {
			Errors map[string][]string `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &ValidationError{Errors: payload.Errors}

	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("organizze: %s %s returned status %d: %s", method, endpoint, resp.StatusCode, raw)
	}
}
