// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

// An Event identifies a point in a request execution where installed
// handlers run. Install handlers with WithHandlers to extend a
// RetryRequest or RetrySession with custom functionality.
type Event int

const (
	// BeforeExecutionStart occurs before the first attempt. Only the
	// execution's Plan and ID are set.
	BeforeExecutionStart Event = iota
	// BeforeAttempt occurs before each attempt, once the execution's
	// Request holds the http.Request about to be sent.
	//
	// Handlers may change the request. Clone its URL and Header before
	// changing them, since they reference the plan's own values.
	BeforeAttempt
	// BeforeReadBody occurs when an attempt received a response, before
	// the body is read into the execution's Body. It never occurs for
	// an attempt that ended in a transport error.
	BeforeReadBody
	// AfterAttemptTimeout occurs after an attempt timed out. The
	// execution's Err holds the timeout error and AttemptTimeouts has
	// been incremented.
	AfterAttemptTimeout
	// AfterAttempt occurs after every attempt, once its Outcome is
	// known and before the retry policy is consulted.
	AfterAttempt
	// BeforeBackoff occurs once a retry has been decided, before the
	// pause that precedes it. The execution's Backoff holds the pause,
	// which is zero if backoff is disabled.
	BeforeBackoff
	// AfterPlanTimeout occurs when the deadline of the plan context
	// ends the execution, either during an attempt or during a pause.
	// It always follows the AfterAttempt of the last attempt.
	AfterPlanTimeout
	// AfterExecutionEnd occurs after the execution ended, once its End
	// time is set.
	AfterExecutionEnd

	eventSentinel

	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeBackoff",
	"AfterPlanTimeout",
	"AfterExecutionEnd",
}

// Events returns every event, in the order in which they can occur
// within an execution.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttemptTimeout,
		AfterAttempt,
		BeforeBackoff,
		AfterPlanTimeout,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
