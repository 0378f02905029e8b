// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/stampede/request"
	"github.com/gogama/stampede/transient"
)

// A Decider decides whether the most recent attempt in an execution is
// a retriable failure.
//
// The retrying client uses the decision to classify each attempt. An
// attempt the Decider accepts is a request.Failure. An attempt it does
// not accept is a request.Success if it produced a response, and a
// request.Fatal if it ended in a transport error: a transport error
// nobody considers retriable is not worth repeating.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It also provides the logical composition
// methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultStatusCodes are the status codes DefaultDecider retries: 429
// (Too Many Requests), 502 (Bad Gateway), 503 (Service Unavailable) and
// 504 (Gateway Timeout). Other 5XX codes usually mean the request
// itself broke the server, and repeating it would only add load.
var DefaultStatusCodes = []int{429, 502, 503, 504}

// DefaultDecider retries transient transport errors (TransientErr) and
// responses with one of the DefaultStatusCodes.
var DefaultDecider = StatusCode(DefaultStatusCodes...).Or(TransientErr)

// TransientErr is a decider that accepts the current error if it is
// transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it always returns false if a
// valid HTTP response was received.
var TransientErr DeciderFunc = transientErr

// Non2XX is a decider that accepts any HTTP response whose status code
// is outside the 2XX range. It never accepts a transport error; compose
// it with TransientErr to opt into retrying every unsuccessful status.
var Non2XX DeciderFunc = non2XX

// Decide returns true if the most recent attempt is a retriable failure.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into one that returns true if both do.
// Short-circuit logic is used, so g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into one that returns true if either does.
// Short-circuit logic is used, so g is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// StatusCode constructs a decider that accepts an attempt which
// received a valid HTTP response whose status code is one of ss.
func StatusCode(ss ...int) DeciderFunc {
	set := make(map[int]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return func(e *request.Execution) bool {
		if e.Response == nil {
			return false
		}
		_, ok := set[e.StatusCode()]
		return ok
	}
}

// StatusClass constructs a decider that accepts an attempt which
// received a valid HTTP response whose status code is in the class
// c (for example 5 for 5XX).
func StatusClass(c int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Response != nil && e.StatusCode()/100 == c
	}
}

func transientErr(e *request.Execution) bool {
	return transient.Is(e.Err)
}

func non2XX(e *request.Execution) bool {
	return e.Response != nil && e.StatusCode()/100 != 2
}
