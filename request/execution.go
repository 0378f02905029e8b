// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/stampede/transient"
)

// An Execution represents the state of a single Plan execution.
//
// The Execution is updated as the execution progresses and is returned
// to the caller when it ends. Event handlers may read it and may store
// their own data on it with SetValue, but should otherwise treat the
// exported fields as read-only, with the limited exception of making
// reasonable changes to the http.Request before it is sent.
type Execution struct {
	// Plan specifies the HTTP request plan being executed. It is never
	// nil.
	Plan *Plan

	// ID uniquely identifies the execution in logs.
	ID string

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution. It is the zero value until
	// the execution ends.
	End time.Time

	// Attempt is the zero-based number of the current attempt: zero on
	// the initial attempt, one on the first retry, and so on. Once the
	// execution ends, Attempt+1 is the number of attempts made.
	Attempt int

	// AttemptTimeouts counts the attempts that timed out.
	AttemptTimeouts int

	// Outcome is the outcome of the most recent attempt. It is Pending
	// while an attempt is underway.
	Outcome Outcome

	// Backoff is the delay computed before the next attempt. It is set
	// just before the BeforeBackoff event and reset to zero when the
	// next attempt starts. It stays zero when backoff is disabled.
	Backoff time.Duration

	// Request is the HTTP request made, or about to be made, in the
	// current attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent attempt.
	// It is nil if the attempt ended in an error or is underway.
	Response *http.Response

	// Err is the error from the most recent attempt, or nil. While the
	// execution is in flight, Err fluctuates between nil and non-nil
	// values; whenever it is non-nil it has the type *url.Error.
	Err error

	// Body is the complete response body of the most recent attempt.
	// Treat it as invalid unless Err is nil.
	Body []byte

	data context.Context
}

// StatusCode returns the status code of the most recent HTTP response,
// or 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the headers of the most recent HTTP response, or a
// nil header (safe for reads) if there is none.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}

	return e.Response.Header
}

// Attempts returns the number of attempts started so far.
func (e *Execution) Attempts() int {
	if !e.Started() {
		return 0
	}

	return e.Attempt + 1
}

// Duration returns the duration of the execution: zero before it
// starts, the time elapsed since Start while it runs, and End minus
// Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently contains a timeout error,
// either from an attempt timeout or from the plan context deadline.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution. The key follows the rules of context.WithValue: it must be
// comparable, and should be of an unexported type to avoid collisions.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}

	return e.data.Value(key)
}
