// Package models holds the rate limiting value types shared by stores and middleware.
package models

import (
	"strings"
	"time"
)

// EndpointClass groups public endpoints that share a budget.
type EndpointClass string

const (
	// ClassResolve covers /public/jurisdiction/*.
	ClassResolve EndpointClass = "resolve"
	// ClassEmbed covers /embed/widgets/*, which customer sites call on every page view.
	ClassEmbed EndpointClass = "embed"
)

// Limit is a request budget over a sliding window.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewIPKey builds the bucket key for an IP within a class.
func NewIPKey(ip string, class EndpointClass) string {
	return "rl:ip:" + SanitizeKeySegment(ip) + ":" + string(class)
}

// SanitizeKeySegment escapes ':' so a crafted identifier cannot address a neighbouring bucket.
// IPv6 addresses contain colons, so they are rewritten too.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
