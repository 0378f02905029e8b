// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"github.com/gogama/stampede/config"
	"github.com/gogama/stampede/retry"
	"github.com/gogama/stampede/timeout"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// An Option customizes a RetryRequest or RetrySession at construction.
type Option func(*options)

type options struct {
	config      *config.Config
	searchRoot  string
	resolver    *config.Resolver
	doer        HTTPDoer
	doerFactory func() HTTPDoer
	decider     retry.Decider
	timeout     timeout.Policy
	handlers    *HandlerGroup
	logger      *zerolog.Logger
}

// WithConfig sets the retry configuration explicitly. The file system
// is then never searched for a configuration file.
func WithConfig(c config.Config) Option {
	return func(o *options) {
		o.config = &c
	}
}

// WithSearchRoot sets the directory where the search for a
// configuration file starts. The default is the working directory.
func WithSearchRoot(dir string) Option {
	return func(o *options) {
		o.searchRoot = dir
	}
}

// WithResolver sets the resolver that finds the configuration when
// WithConfig is not given.
func WithResolver(r *config.Resolver) Option {
	if r == nil {
		panic("stampede: nil resolver")
	}
	return func(o *options) {
		o.resolver = r
	}
}

// WithDoer sets the HTTPDoer that performs each attempt. A RetrySession
// uses it for its whole life. A RetryRequest uses it for every call
// and closes its idle connections after each one.
func WithDoer(d HTTPDoer) Option {
	if d == nil {
		panic("stampede: nil HTTPDoer")
	}
	return func(o *options) {
		o.doer = d
	}
}

// WithDoerFactory sets the function a RetryRequest calls to obtain a
// fresh HTTPDoer for each call. It takes precedence over WithDoer. A
// RetrySession ignores it.
func WithDoerFactory(f func() HTTPDoer) Option {
	if f == nil {
		panic("stampede: nil HTTPDoer factory")
	}
	return func(o *options) {
		o.doerFactory = f
	}
}

// WithDecider sets the classifier that decides which attempts are
// retriable failures. The default is retry.DefaultDecider.
func WithDecider(d retry.Decider) Option {
	if d == nil {
		panic("stampede: nil decider")
	}
	return func(o *options) {
		o.decider = d
	}
}

// WithTimeoutPolicy sets the per-attempt timeout policy. The default
// is timeout.DefaultPolicy, which sets no attempt timeout.
func WithTimeoutPolicy(p timeout.Policy) Option {
	if p == nil {
		panic("stampede: nil timeout policy")
	}
	return func(o *options) {
		o.timeout = p
	}
}

// WithHandlers installs event handlers run at each Event of every
// execution.
func WithHandlers(g *HandlerGroup) Option {
	return func(o *options) {
		o.handlers = g
	}
}

// WithLogger sets the logger that receives the diagnostics of every
// execution. The default is the global logger of
// github.com/rs/zerolog/log.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// newEngine resolves the configuration exactly once and builds the
// engine shared by every call of a facade.
func newEngine(o *options) (*engine, error) {
	r := o.resolver
	if r == nil {
		r = &config.Resolver{}
	}
	c, err := r.Resolve(o.config, o.searchRoot)
	if err != nil {
		return nil, err
	}

	en := &engine{
		config:   c,
		decider:  o.decider,
		timeout:  o.timeout,
		handlers: o.handlers,
		sleep:    sleep,
	}
	if en.decider == nil {
		en.decider = retry.DefaultDecider
	}
	if en.timeout == nil {
		en.timeout = timeout.DefaultPolicy
	}
	if en.handlers == nil {
		en.handlers = &emptyHandlers
	}
	if o.logger != nil {
		en.logger = *o.logger
	} else {
		en.logger = log.Logger
	}

	en.logger.Debug().Str("config", c.String()).Msg("Retry configuration resolved")
	return en, nil
}
