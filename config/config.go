// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogama/stampede/backoff"
	"github.com/gogama/stampede/retry"
)

// A Config describes how failed requests are retried.
//
// A Config is a plain value. Once a client has been constructed from
// it, changing the original has no effect on the client.
type Config struct {
	// RetryEnabled turns retrying on. When it is false every request
	// gets exactly one attempt and RetryPolicy is ignored.
	RetryEnabled bool
	// RetryPolicy decides whether a failed attempt is retried.
	RetryPolicy retry.Policy
	// BackoffEnabled turns the pause between attempts on. When it is
	// false retries follow each other immediately and BackoffPolicy is
	// ignored.
	BackoffEnabled bool
	// BackoffPolicy computes the pause before each retry.
	BackoffPolicy backoff.Policy
}

var (
	errNoRetryPolicy   = errors.New("stampede/config: retry enabled without a retry policy")
	errNoBackoffPolicy = errors.New("stampede/config: backoff enabled without a backoff policy")
)

// Default returns the built-in configuration: up to 5 attempts per
// request with a pause of one second before each retry.
func Default() Config {
	return Config{
		RetryEnabled:   true,
		RetryPolicy:    retry.Fixed(5),
		BackoffEnabled: true,
		BackoffPolicy:  backoff.Fixed(time.Second),
	}
}

// Relaxed returns a configuration that favors the health of the remote
// service: up to 5 attempts per request, with pauses following the
// Fibonacci sequence from zero up to 144 seconds.
func Relaxed() Config {
	return Config{
		RetryEnabled:   true,
		RetryPolicy:    retry.Fixed(5),
		BackoffEnabled: true,
		BackoffPolicy:  backoff.NewFibonacci(0, 144*time.Second),
	}
}

// Aggressive returns a configuration that retries every failure
// forever, pausing 5 seconds between attempts.
//
// Against a remote service that never recovers, a request made under
// this configuration only ends when its context does. Prefer Default
// or Relaxed unless every caller bounds its requests with a deadline.
func Aggressive() Config {
	return Config{
		RetryEnabled:   true,
		RetryPolicy:    retry.Infinite,
		BackoffEnabled: true,
		BackoffPolicy:  backoff.Fixed(5 * time.Second),
	}
}

// Validate reports whether c can drive a client. An enabled half of
// the configuration must have a policy.
func (c Config) Validate() error {
	if c.RetryEnabled && c.RetryPolicy == nil {
		return errNoRetryPolicy
	}
	if c.BackoffEnabled && c.BackoffPolicy == nil {
		return errNoBackoffPolicy
	}
	return nil
}

// MaxAttempts returns the largest number of attempts a request may
// get under c, or zero if the number is unbounded.
func (c Config) MaxAttempts() int {
	if !c.RetryEnabled {
		return 1
	}
	return c.RetryPolicy.MaxAttempts()
}

// String describes the configuration for diagnostics.
func (c Config) String() string {
	return fmt.Sprintf("retry_enabled=%t retry_policy=%v backoff_enabled=%t backoff_policy=%v",
		c.RetryEnabled, c.RetryPolicy, c.BackoffEnabled, c.BackoffPolicy)
}
