// Package ratelimit provides per-tool rate limiting for MCP tools.
package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a tool is called faster than its limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// ToolLimiters maps tool names to their token-bucket limiters.
type ToolLimiters map[string]*rate.Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
// Simulations are CPU-bound so they get a tight budget; arrival lookups are
// cheap.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"dda_simulate": rate.NewLimiter(rate.Every(6*time.Second), 3), // 10/minute, burst 3
		"dda_arrivals": rate.NewLimiter(rate.Limit(1), 10),            // 60/minute, burst 10
	}
}

// CheckLimit checks the rate limit for a given tool name.
// Returns nil if allowed, or an error wrapping ErrRateLimited.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	return checkAt(limiters, toolName, time.Now())
}

func checkAt(limiters ToolLimiters, toolName string, now time.Time) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	if !limiter.AllowN(now, 1) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}
	return nil
}
