// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/stampede/backoff"
	"github.com/gogama/stampede/config"
	"github.com/gogama/stampede/request"
	"github.com/gogama/stampede/retry"
	"github.com/gogama/stampede/timeout"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client. It performs exactly one HTTP request
// attempt.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on
	// http.Client.Do.
	Do(r *http.Request) (*http.Response, error)
}

var emptyHandlers = HandlerGroup{}

// engine runs the attempt loop of one logical request. It is immutable
// once built and shared by every call made through a facade.
type engine struct {
	config   config.Config
	decider  retry.Decider
	timeout  timeout.Policy
	handlers *HandlerGroup
	logger   zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// execute drives plan p through the attempt loop using doer for each
// attempt.
//
// The returned Execution is never nil. The returned error is nil on
// success, an *ExhaustedError when the retry policy gave up, a
// *FatalError for a non-retriable transport error, and a *url.Error
// wrapping the context error when the plan context ended the execution.
func (en *engine) execute(p *request.Plan, doer HTTPDoer) (*request.Execution, error) {
	if p == nil {
		panic("stampede: nil plan")
	}
	e := request.Execution{
		Plan: p,
		ID:   uuid.NewString(),
	}
	log := en.logger.With().
		Str("execution_id", e.ID).
		Str("method", p.Method).
		Str("url", p.URL.Redacted()).
		Logger()
	var s backoff.State

	en.handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

	var err error
	for {
		en.attempt(p, &e, doer)
		// An expired plan deadline is not an attempt timeout.
		if e.Timeout() && p.Context().Err() == nil {
			e.AttemptTimeouts++
			en.handlers.run(AfterAttemptTimeout, &e)
		}
		e.Outcome = en.classify(&e)
		en.handlers.run(AfterAttempt, &e)
		log.Debug().
			Int("attempt", e.Attempt).
			Int("status", e.StatusCode()).
			Stringer("outcome", e.Outcome).
			AnErr("attempt_error", e.Err).
			Msg("Attempt finished")

		if e.Outcome == request.Success {
			break
		}

		if err = en.planDone(p, &e); err != nil {
			log.Warn().Int("attempts", e.Attempts()).Err(err).Msg("Execution stopped by context")
			break
		}

		if e.Outcome == request.Fatal {
			err = &FatalError{Attempts: e.Attempts(), Err: e.Err}
			log.Error().Int("attempts", e.Attempts()).Err(e.Err).Msg("Non-retriable failure")
			break
		}

		if !en.config.RetryEnabled || !en.config.RetryPolicy.ShouldRetry(e.Attempts(), e.Outcome) {
			err = &ExhaustedError{Attempts: e.Attempts(), Err: lastFailure(&e)}
			log.Warn().Int("attempts", e.Attempts()).Err(err).Msg("Retries exhausted")
			break
		}

		if en.config.BackoffEnabled {
			e.Backoff = en.config.BackoffPolicy.Delay(e.Attempt, &s)
		}
		en.handlers.run(BeforeBackoff, &e)
		log.Info().
			Int("attempt", e.Attempt).
			Int("status", e.StatusCode()).
			Dur("delay", e.Backoff).
			Msg("Retrying")
		if en.config.BackoffEnabled {
			if sleepErr := en.sleep(p.Context(), e.Backoff); sleepErr != nil {
				err = en.stopped(p, &e, sleepErr)
				log.Warn().Int("attempts", e.Attempts()).Err(err).Msg("Execution stopped by context")
				break
			}
		}

		e.Attempt++
	}

	e.End = time.Now()
	en.handlers.run(AfterExecutionEnd, &e)
	return &e, err
}

// attempt makes one HTTP request attempt, leaving the response or
// error on e.
func (en *engine) attempt(p *request.Plan, e *request.Execution, doer HTTPDoer) {
	// The timeout policy looks at the previous attempt, so it goes
	// first.
	d := en.timeout.Timeout(e)
	e.Outcome = request.Pending
	e.Backoff = 0
	e.Response = nil
	e.Err = nil
	e.Body = nil

	ctx := p.Context()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	e.Request = p.ToRequest(ctx)
	en.handlers.run(BeforeAttempt, e)

	var err error
	e.Response, err = doer.Do(e.Request)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
		return
	}
	readBody(p, e, en.handlers)
}

func readBody(p *request.Plan, e *request.Execution, handlers *HandlerGroup) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
	}
}

// classify turns the result of the latest attempt into its outcome.
// Whatever the decider accepts is a retriable failure. A transport
// error the decider rejects is fatal. Anything else, including a 404,
// is a success.
func (en *engine) classify(e *request.Execution) request.Outcome {
	switch {
	case en.decider.Decide(e):
		return request.Failure
	case e.Err != nil:
		return request.Fatal
	default:
		return request.Success
	}
}

// planDone returns a non-nil error if the plan context is done.
func (en *engine) planDone(p *request.Plan, e *request.Execution) error {
	ctxErr := p.Context().Err()
	if ctxErr == nil {
		return nil
	}
	return en.stopped(p, e, ctxErr)
}

func (en *engine) stopped(p *request.Plan, e *request.Execution, ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		en.handlers.run(AfterPlanTimeout, e)
	}
	return urlErrorWrap(p, ctxErr)
}

// lastFailure returns the error describing a retriable failure.
func lastFailure(e *request.Execution) error {
	if e.Err != nil {
		return e.Err
	}
	return &StatusError{
		StatusCode: e.StatusCode(),
		Status:     e.Response.Status,
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp matches the Op net/http puts in its own *url.Error values.
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
