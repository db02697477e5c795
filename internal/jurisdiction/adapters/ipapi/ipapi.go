// Package ipapi resolves client addresses through an HTTP IP-geolocation
// service. Calls go through a circuit breaker so an unhealthy provider is
// skipped instead of costing every visitor the full lookup timeout.
package ipapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"compliance-panel/internal/jurisdiction/models"
)

// Placeholder is substituted with the escaped client address in the URL template.
const Placeholder = "{ip}"

const maxBodyBytes = 4 << 10

// countryResponse accepts the field names used by common providers
// (ipapi.co, ip-api.com, ipinfo.io).
type countryResponse struct {
	CountryCode      string `json:"country_code"`
	CountryCodeCamel string `json:"countryCode"`
	Country          string `json:"country"`
}

func (r countryResponse) code() string {
	for _, c := range []string{r.CountryCode, r.CountryCodeCamel, r.Country} {
		if c != "" {
			return c
		}
	}
	return ""
}

// Client is a NetworkLocator backed by an HTTP API.
type Client struct {
	urlTemplate string
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger

	consecutiveFailures uint32
	openTimeout         time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open before a trial request.
func WithBreaker(consecutiveFailures uint32, openTimeout time.Duration) Option {
	return func(cl *Client) {
		if consecutiveFailures > 0 {
			cl.consecutiveFailures = consecutiveFailures
		}
		if openTimeout > 0 {
			cl.openTimeout = openTimeout
		}
	}
}

// New builds a client for urlTemplate, which must contain Placeholder,
// e.g. "https://ipapi.co/{ip}/json/".
func New(urlTemplate string, opts ...Option) (*Client, error) {
	if !strings.Contains(urlTemplate, Placeholder) {
		return nil, fmt.Errorf("geoip api url %q must contain %s", urlTemplate, Placeholder)
	}
	if _, err := url.Parse(strings.ReplaceAll(urlTemplate, Placeholder, "127.0.0.1")); err != nil {
		return nil, fmt.Errorf("parse geoip api url: %w", err)
	}
	c := &Client{
		urlTemplate:         urlTemplate,
		http:                &http.Client{Timeout: 5 * time.Second},
		logger:              slog.Default(),
		consecutiveFailures: 5,
		openTimeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geoip-api",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.consecutiveFailures
		},
		// A visitor without a known country says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrCountryNotFound) || errors.Is(err, models.ErrInvalidAddress)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c, nil
}

// CountryForIP asks the provider for the country of ip.
func (c *Client) CountryForIP(ctx context.Context, ip string) (models.CountryCode, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return models.Unknown, fmt.Errorf("%w: %q", models.ErrInvalidAddress, ip)
	}
	if parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsUnspecified() {
		return models.Unknown, models.ErrCountryNotFound
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, parsed.String())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return models.Unknown, fmt.Errorf("%w: %w", models.ErrLocatorUnavailable, err)
		}
		return models.Unknown, err
	}
	return result.(models.CountryCode), nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func (c *Client) fetch(ctx context.Context, ip string) (models.CountryCode, error) {
	endpoint := strings.ReplaceAll(c.urlTemplate, Placeholder, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Unknown, fmt.Errorf("build geoip request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Unknown, fmt.Errorf("geoip request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Unknown, fmt.Errorf("read geoip response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Unknown, models.ErrCountryNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return models.Unknown, fmt.Errorf("%w: geoip api status %d", models.ErrLocatorUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return models.Unknown, fmt.Errorf("geoip api status %d", resp.StatusCode)
	}

	country := models.NormalizeCountry(parseCountry(body))
	if country.IsUnknown() {
		return models.Unknown, models.ErrCountryNotFound
	}
	return country, nil
}

// parseCountry reads either a JSON object or a bare country code body.
func parseCountry(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var r countryResponse
		if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
			return ""
		}
		return r.code()
	}
	return trimmed
}
