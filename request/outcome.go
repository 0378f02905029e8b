// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// An Outcome classifies how a single request attempt ended.
type Outcome int

const (
	// Pending is the outcome of an attempt that has not ended yet.
	Pending Outcome = iota
	// Success means the attempt produced a response that the retry
	// classifier does not consider a failure. Note that a response
	// with a status code such as 404 may still be a Success.
	Success
	// Failure means the attempt ended in a retriable failure: either a
	// transient transport error or a response whose status code the
	// retry classifier asks to retry.
	Failure
	// Fatal means the attempt ended in a transport error that retrying
	// cannot fix, for example a malformed request.
	Fatal
)

var outcomeNames = []string{
	"Pending",
	"Success",
	"Failure",
	"Fatal",
}

// String returns the name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "Unknown"
	}
	return outcomeNames[o]
}
